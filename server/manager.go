package server

import (
	"context"
	"sync"
)

// BattleManager 管理多个战斗的生命周期，各战斗之间无共享可变状态
type BattleManager struct {
	mu        sync.RWMutex
	battles   map[string]*Battle
	opts      BattleOptions
	autoStart bool

	ctx    context.Context
	cancel context.CancelFunc
}

var (
	defaultManager *BattleManager
	once           sync.Once
)

// NewBattleManager 创建管理器，新建的战斗使用 opts；autoStart 时创建即进入 InBattle
func NewBattleManager(opts BattleOptions, autoStart bool) *BattleManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &BattleManager{
		battles:   make(map[string]*Battle),
		opts:      opts,
		autoStart: autoStart,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// InitBattleManager 用给定参数初始化单例，只有第一次调用生效
func InitBattleManager(opts BattleOptions, autoStart bool) *BattleManager {
	once.Do(func() {
		defaultManager = NewBattleManager(opts, autoStart)
	})
	return defaultManager
}

// GetBattleManager 单例战斗管理器
func GetBattleManager() *BattleManager {
	return InitBattleManager(BattleOptions{}, false)
}

// GetOrCreateBattle 获取或创建战斗，并确保开始 Tick
func (m *BattleManager) GetOrCreateBattle(id string) *Battle {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.battles[id]
	if !ok {
		b = NewBattle(id, m.opts)
		if m.autoStart {
			_ = b.Start()
		}
		m.battles[id] = b
		b.StartTicker(m.ctx)
	}
	return b
}

// GetBattle 仅查询，不创建
func (m *BattleManager) GetBattle(id string) (*Battle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.battles[id]
	return b, ok
}

// Shutdown 停止所有战斗的 Tick 循环
func (m *BattleManager) Shutdown() {
	m.cancel()
}
