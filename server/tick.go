package server

import (
	"context"
	"fmt"
	"time"

	"arenasim/geometry"
)

const (
	// TicksPerSecond 默认世界推进频率（20 TPS）
	TicksPerSecond = 20
)

// outcome 单颗子弹在一个 Tick 内的结局
type outcome int

const (
	outcomeAdvance outcome = iota
	outcomeHit
	outcomeExpired
	outcomeFaulted
)

// decision 扫描阶段的暂存结果，扫描结束后统一提交，扫描中不修改子弹集合
type decision struct {
	p         *Projectile
	outcome   outcome
	next      geometry.Position
	remaining int
}

// StartTicker 启动战斗的 Tick 循环（单线程推进世界），ctx 取消后退出
func (b *Battle) StartTicker(ctx context.Context) {
	b.mu.Lock()
	if b.tickerStarted {
		b.mu.Unlock()
		return
	}
	b.tickerStarted = true
	interval := time.Second / time.Duration(b.tickRate)
	b.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.Step()
			}
		}
	}()
}

// Step 一帧：处理输入 → 推进子弹 → 广播结果
func (b *Battle) Step() {
	start := time.Now()
	b.mu.Lock()
	b.tickSeq++
	b.processInputsLocked()
	if b.stage == StageInBattle {
		_ = b.updateProjectilesLocked()
	}
	b.broadcastLocked()
	b.mu.Unlock()
	b.metrics.AddTick(time.Since(start).Nanoseconds())
}

// Tick 推进所有子弹一次；非 InBattle 阶段返回 ErrInvalidStage 且不做任何修改
func (b *Battle) Tick() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updateProjectilesLocked()
}

func (b *Battle) updateProjectilesLocked() error {
	if b.stage != StageInBattle {
		b.log.Errorw("Projectiles cannot be updated at this stage", "stage", b.stage.String())
		return fmt.Errorf("%w: update projectiles at stage %s", ErrInvalidStage, b.stage)
	}

	decisions := make([]decision, 0, len(b.projectiles))
	for _, p := range b.projectiles {
		var d decision
		err := b.safely("update projectile", func() error {
			d = b.decideLocked(p)
			return nil
		})
		if err != nil {
			// 故障子弹可能已结算过伤害，直接退役，继续处理其余子弹
			b.log.Errorw("Projectile failed to be updated", append(p.logFields(), "error", err)...)
			d = decision{p: p, outcome: outcomeFaulted}
		}
		decisions = append(decisions, d)
	}

	for _, d := range decisions {
		switch d.outcome {
		case outcomeHit, outcomeFaulted:
			b.removeProjectileLocked(d.p.ID)
		case outcomeExpired:
			b.metrics.IncExpired()
			b.removeProjectileLocked(d.p.ID)
		default:
			d.p.Position = d.next
			d.p.RemainingTicks = d.remaining
		}
	}
	b.log.Debugw("Projectiles updated", "tick", b.tickSeq, "live", len(b.projectiles))
	return nil
}

// decideLocked 计算单颗子弹本帧的结局：引力场 → 墙体裁剪 → 命中判定。
// 命中时立即结算伤害，集合的修改留给提交阶段
func (b *Battle) decideLocked(p *Projectile) decision {
	speed := b.effectiveSpeedLocked(p)
	start := p.Position
	final, inter, blocked := b.resolveMove(start, geometry.Displacement(speed, start.Angle))

	var hit Combatant
	if blocked {
		if hit = b.findHitPlayerLocked(start, inter, PlayerRadius); hit == nil {
			hit = b.findHitPlayerLocked(inter, final, PlayerRadius)
		}
	} else {
		hit = b.findHitPlayerLocked(start, final, PlayerRadius)
	}

	if hit != nil {
		b.applyHitLocked(p, hit)
		return decision{p: p, outcome: outcomeHit}
	}

	if blocked {
		// 被墙挡住的子弹停在交点处，直到寿命耗尽
		b.metrics.IncWallBlocked()
		b.log.Debugw("Projectile blocked by wall", "projectile", p.ID, "x", final.X, "y", final.Y)
	}
	remaining := p.RemainingTicks - 1
	if remaining <= 0 {
		b.log.Debugw("Projectile expired", "projectile", p.ID)
		return decision{p: p, outcome: outcomeExpired}
	}
	return decision{p: p, outcome: outcomeAdvance, next: final, remaining: remaining}
}

func (b *Battle) applyHitLocked(p *Projectile, hit Combatant) {
	b.metrics.IncHits()
	applied, err := hit.ApplyDamage(p.Damage, p.AntiArmor)
	if err != nil {
		b.log.Debugw("Damage not applied", "projectile", p.ID, "player", hit.ID(), "error", err)
		return
	}
	b.log.Debugw("Projectile hit player", "projectile", p.ID, "player", hit.ID(),
		"damage", p.Damage, "applied", applied, "antiArmor", p.AntiArmor, "alive", hit.IsAlive())
}
