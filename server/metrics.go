package server

import (
	"sync/atomic"
)

// BattleMetrics 记录战斗运行期的关键指标（用于监控与调试）
type BattleMetrics struct {
	TickCount     int64 // 统计的 Tick 次数
	TotalTickNs   int64 // Tick 累计耗时（纳秒）
	Spawned       int64 // 加入集合的子弹数
	Hits          int64 // 命中玩家的子弹数
	WallBlocked   int64 // 被墙挡住的次数（按帧计）
	Expired       int64 // 寿命耗尽的子弹数
	Faults        int64 // 单项处理中的意外故障
	LaserShots    int64 // 成功结算的激光数
	FireRejected  int64 // 被拒绝的开火请求
	InputsDropped int64 // 因通道满被丢弃的输入数
	OldSeqIgnored int64 // 因旧序列被忽略的输入数
}

func (m *BattleMetrics) IncSpawned()       { atomic.AddInt64(&m.Spawned, 1) }
func (m *BattleMetrics) IncHits()          { atomic.AddInt64(&m.Hits, 1) }
func (m *BattleMetrics) IncWallBlocked()   { atomic.AddInt64(&m.WallBlocked, 1) }
func (m *BattleMetrics) IncExpired()       { atomic.AddInt64(&m.Expired, 1) }
func (m *BattleMetrics) IncFaults()        { atomic.AddInt64(&m.Faults, 1) }
func (m *BattleMetrics) IncLaserShots()    { atomic.AddInt64(&m.LaserShots, 1) }
func (m *BattleMetrics) IncFireRejected()  { atomic.AddInt64(&m.FireRejected, 1) }
func (m *BattleMetrics) IncInputsDropped() { atomic.AddInt64(&m.InputsDropped, 1) }
func (m *BattleMetrics) IncOldSeqIgnored() { atomic.AddInt64(&m.OldSeqIgnored, 1) }
func (m *BattleMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *BattleMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"avg_tick_ms":     avgMs,
		"spawned":         atomic.LoadInt64(&m.Spawned),
		"hits":            atomic.LoadInt64(&m.Hits),
		"wall_blocked":    atomic.LoadInt64(&m.WallBlocked),
		"expired":         atomic.LoadInt64(&m.Expired),
		"faults":          atomic.LoadInt64(&m.Faults),
		"laser_shots":     atomic.LoadInt64(&m.LaserShots),
		"fire_rejected":   atomic.LoadInt64(&m.FireRejected),
		"inputs_dropped":  atomic.LoadInt64(&m.InputsDropped),
		"old_seq_ignored": atomic.LoadInt64(&m.OldSeqIgnored),
	}
}
