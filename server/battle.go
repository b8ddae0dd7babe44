package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"arenasim/geometry"
)

var (
	// ErrInvalidStage 当前阶段不允许该操作
	ErrInvalidStage = errors.New("invalid battle stage")
	// ErrUnknownPlayer 玩家不在本场战斗中
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrDuplicatePlayer 同名玩家已加入
	ErrDuplicatePlayer = errors.New("player already joined")
)

// WallMap 地图墙体查询：沿位移射线的最近交点，无交点 ok=false
type WallMap interface {
	NearestIntersection(start geometry.Position, d geometry.Vec) (geometry.Position, bool)
}

// BattleOptions 创建战斗的参数
type BattleOptions struct {
	Walls    WallMap
	Width    float64
	Height   float64
	TickRate int
}

func (o BattleOptions) withDefaults() BattleOptions {
	if o.Width <= 0 {
		o.Width = 100
	}
	if o.Height <= 0 {
		o.Height = 100
	}
	if o.TickRate <= 0 {
		o.TickRate = TicksPerSecond
	}
	return o
}

// Battle 一场对局：权威状态维护在内存，子弹、玩家与阶段都由 mu 保护。
// Tick 与外部动作（开火、激光、移动、加入/离开）全部在 mu 上串行
type Battle struct {
	ID string

	mu          sync.Mutex
	stage       Stage
	players     []Combatant // 加入顺序即扫描顺序
	projectiles []*Projectile
	nextID      uint64
	tickSeq     uint64

	walls     WallMap
	width     float64
	height    float64
	tickRate  int
	inputChan chan Input
	leaveChan chan PlayerID
	lastSeq   map[PlayerID]int64 // 每个玩家已处理的最大输入序列号

	tickerStarted bool
	log           *zap.SugaredLogger
	metrics       *BattleMetrics
}

// NewBattle 创建未开始的战斗
func NewBattle(id string, opts BattleOptions) *Battle {
	opts = opts.withDefaults()
	return &Battle{
		ID:        id,
		stage:     StageNotStarted,
		walls:     opts.Walls,
		width:     opts.Width,
		height:    opts.Height,
		tickRate:  opts.TickRate,
		inputChan: make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveChan: make(chan PlayerID, 64),
		lastSeq:   make(map[PlayerID]int64),
		log:       Log.With("battle", id),
		metrics:   &BattleMetrics{},
	}
}

// Metrics 运行指标
func (b *Battle) Metrics() *BattleMetrics { return b.metrics }

// Stage 当前阶段
func (b *Battle) Stage() Stage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stage
}

// Start NotStarted → InBattle
func (b *Battle) Start() error {
	return b.transition(StageNotStarted, StageInBattle)
}

// End InBattle → Ended，剩余子弹随战斗一起冻结
func (b *Battle) End() error {
	return b.transition(StageInBattle, StageEnded)
}

func (b *Battle) transition(from, to Stage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stage != from {
		b.log.Errorw("Cannot change stage", "from", b.stage.String(), "to", to.String())
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidStage, b.stage, to)
	}
	b.stage = to
	b.log.Infow("Stage changed", "stage", to.String())
	return nil
}

// AddCombatant 将玩家加入战斗；扫描顺序即加入顺序
func (b *Battle) AddCombatant(c Combatant) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addCombatantLocked(c)
}

func (b *Battle) addCombatantLocked(c Combatant) error {
	if b.findPlayerLocked(c.ID()) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, c.ID())
	}
	b.players = append(b.players, c)
	return nil
}

// JoinPlayer 创建玩家并放到出生点
func (b *Battle) JoinPlayer(id PlayerID, conn *ClientConn) (*Player, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	spawn := b.spawnPointLocked()
	p := NewPlayer(id, spawn, conn)
	if err := b.addCombatantLocked(p); err != nil {
		return nil, err
	}
	b.log.Infow("Player joined", "player", id, "x", spawn.X, "y", spawn.Y)
	return p, nil
}

// spawnPointLocked 以场地中心为圆心按加入顺序排布出生点，朝向圆心
func (b *Battle) spawnPointLocked() geometry.Position {
	n := len(b.players)
	cx, cy := b.width/2, b.height/2
	r := math.Min(b.width, b.height) / 4
	a := float64(n) * math.Pi / 3
	return geometry.Position{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a), Angle: a + math.Pi}
}

// LeavePlayer 将玩家移出战斗
func (b *Battle) LeavePlayer(id PlayerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leavePlayerLocked(id)
}

func (b *Battle) leavePlayerLocked(id PlayerID) {
	for i, c := range b.players {
		if c.ID() != id {
			continue
		}
		if p, ok := c.(*Player); ok && p.Conn != nil {
			p.Conn.Close()
		}
		b.players = append(b.players[:i], b.players[i+1:]...)
		delete(b.lastSeq, id)
		b.log.Infow("Player left", "player", id)
		return
	}
}

// RequestLeave 请求在 Tick 线程中移除玩家
func (b *Battle) RequestLeave(pid PlayerID) {
	// 为保证移除一定生效，这里采用阻塞式写入（通道有容量，避免死锁）
	b.leaveChan <- pid
}

// Players 玩家快照
func (b *Battle) Players() []PlayerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playerStatesLocked()
}

func (b *Battle) playerStatesLocked() []PlayerState {
	out := make([]PlayerState, 0, len(b.players))
	for _, c := range b.players {
		if p, ok := c.(*Player); ok {
			out = append(out, p.state())
			continue
		}
		out = append(out, PlayerState{ID: string(c.ID()), Pos: c.Position(), Alive: c.IsAlive(), Armor: c.Armor()})
	}
	return out
}

func (b *Battle) findPlayerLocked(id PlayerID) Combatant {
	for _, c := range b.players {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

// OnInput 入站输入（不立即改变位置），仅记录意图，等下一次 Tick 处理
func (b *Battle) OnInput(in Input) {
	// 不阻塞：输入拥塞时丢弃，保证 Tick 准时
	select {
	case b.inputChan <- in:
	default:
		b.metrics.IncInputsDropped()
	}
}

// processInputsLocked 处理当前帧的所有输入意图（非阻塞 drain）
func (b *Battle) processInputsLocked() {
	for {
		select {
		case pid := <-b.leaveChan:
			b.leavePlayerLocked(pid)
		case in := <-b.inputChan:
			if b.stage != StageInBattle {
				continue
			}
			// Seq 为 0 表示客户端未编号，始终处理；否则丢弃重复或乱序的旧输入
			if in.Seq > 0 {
				if in.Seq <= b.lastSeq[in.PlayerID] {
					b.metrics.IncOldSeqIgnored()
					continue
				}
				b.lastSeq[in.PlayerID] = in.Seq
			}
			if p, ok := b.findPlayerLocked(in.PlayerID).(*Player); ok && p.IsAlive() {
				b.applyMove(p, in.Command)
			}
		default:
			return
		}
	}
}

// wallClearance 玩家被墙挡住时停在墙前的距离。子弹停在墙上，玩家不能，
// 否则之后任何方向的射线都从墙上出发（t=0），玩家再也无法离开
const wallClearance = 1e-4

// applyMove 执行一次移动/转向，移动被墙体与场地边界裁剪
func (b *Battle) applyMove(p *Player, dir Direction) {
	switch dir {
	case DirForward, DirBackward:
		step := MoveSpeed
		if dir == DirBackward {
			step = -step
		}
		p.pos = b.walkLocked(p.pos, geometry.Displacement(step, p.pos.Angle))
	case DirTurnLeft:
		p.pos = p.pos.WithAngle(p.pos.Angle + TurnSpeed)
	case DirTurnRight:
		p.pos = p.pos.WithAngle(p.pos.Angle - TurnSpeed)
	default:
		// no-op
	}
	x := math.Min(math.Max(p.pos.X, 0), b.width)
	y := math.Min(math.Max(p.pos.Y, 0), b.height)
	p.pos = geometry.Position{X: x, Y: y, Angle: p.pos.Angle}
}

// walkLocked 玩家位移：被墙截断时停在交点前 wallClearance 处
func (b *Battle) walkLocked(start geometry.Position, d geometry.Vec) geometry.Position {
	final, inter, blocked := b.resolveMove(start, d)
	if !blocked {
		return final
	}
	length := math.Hypot(d.X, d.Y)
	keep := math.Max(geometry.PointDistance(start, inter)-wallClearance, 0)
	return start.Add(geometry.Vec{X: d.X / length * keep, Y: d.Y / length * keep})
}

// snapshotLocked 当前世界状态的 JSON 快照
func (b *Battle) snapshotLocked() []byte {
	projectiles := make([]ProjectileState, 0, len(b.projectiles))
	for _, p := range b.projectiles {
		projectiles = append(projectiles, p.state())
	}
	payload := struct {
		Type        string            `json:"type"`
		Tick        uint64            `json:"tick"`
		Stage       string            `json:"stage"`
		Players     []PlayerState     `json:"players"`
		Projectiles []ProjectileState `json:"projectiles"`
	}{
		Type:        "state",
		Tick:        b.tickSeq,
		Stage:       b.stage.String(),
		Players:     b.playerStatesLocked(),
		Projectiles: projectiles,
	}
	data, _ := json.Marshal(payload)
	return data
}

// broadcastLocked 将快照推给所有在线玩家
func (b *Battle) broadcastLocked() {
	data := b.snapshotLocked()
	for _, c := range b.players {
		if p, ok := c.(*Player); ok && p.Conn != nil {
			p.Conn.Enqueue(data)
		}
	}
}
