package server

import (
	"errors"
	"fmt"

	"arenasim/geometry"
)

var (
	// ErrInstantWeapon 激光不是飞行子弹，走 ApplyLaser
	ErrInstantWeapon = errors.New("instant-hit weapon cannot be added as projectile")
	// ErrDuplicateProjectile 子弹已在集合中
	ErrDuplicateProjectile = errors.New("projectile already in battle")
	// ErrInternal 处理过程中出现意外故障（已记录日志）
	ErrInternal = errors.New("internal failure")
	// ErrMuzzleBlocked 射手与枪口之间有墙
	ErrMuzzleBlocked = errors.New("muzzle blocked by wall")
)

// AddProjectile 在 InBattle 阶段将子弹的副本加入集合，之后调用方对 p 的修改
// 不影响战斗。ID 为 0 时自动分配并回写到 p.ID，RemainingTicks 为 0 时取
// BulletRemainingTick。失败时集合不变
func (b *Battle) AddProjectile(p *Projectile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addProjectileLocked(p)
}

func (b *Battle) addProjectileLocked(p *Projectile) error {
	if b.stage != StageInBattle {
		b.log.Errorw("Cannot add projectile: the battle hasn't started or has ended", "stage", b.stage.String())
		return fmt.Errorf("%w: add projectile at stage %s", ErrInvalidStage, b.stage)
	}
	if p == nil {
		return fmt.Errorf("%w: nil projectile", ErrInternal)
	}
	if p.Kind == WeaponLaser {
		b.log.Errorw("Cannot add projectile: laser resolves instantly", p.logFields()...)
		return ErrInstantWeapon
	}

	return b.safely("add projectile", func() error {
		cp := *p
		if cp.ID == 0 {
			b.nextID++
			cp.ID = b.nextID
		} else if b.indexOfLocked(cp.ID) >= 0 {
			return fmt.Errorf("%w: id %d", ErrDuplicateProjectile, cp.ID)
		}
		if cp.ID > b.nextID {
			b.nextID = cp.ID
		}
		if cp.RemainingTicks <= 0 {
			cp.RemainingTicks = BulletRemainingTick
		}
		b.projectiles = append(b.projectiles, &cp)
		p.ID = cp.ID
		b.metrics.IncSpawned()

		b.log.Debugw("A projectile has been added", "projectile", cp.ID, "x", cp.Position.X, "y", cp.Position.Y, "angle", cp.Position.Angle)
		verbose(b.log, "Projectile details", cp.logFields()...)
		return nil
	})
}

// RemoveProjectile 移除子弹；不存在时只记录低级别日志，不返回错误
func (b *Battle) RemoveProjectile(p *Projectile) {
	if p == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeProjectileLocked(p.ID)
}

func (b *Battle) removeProjectileLocked(id uint64) {
	i := b.indexOfLocked(id)
	if i < 0 {
		b.log.Debugw("Projectile to remove is not in battle", "projectile", id)
		return
	}
	p := b.projectiles[i]
	b.projectiles = append(b.projectiles[:i], b.projectiles[i+1:]...)
	b.log.Debugw("A projectile has been removed", "projectile", id, "x", p.Position.X, "y", p.Position.Y)
}

func (b *Battle) indexOfLocked(id uint64) int {
	for i, p := range b.projectiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Projectile 按 ID 取子弹副本
func (b *Battle) Projectile(id uint64) (Projectile, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOfLocked(id); i >= 0 {
		return *b.projectiles[i], true
	}
	return Projectile{}, false
}

// Projectiles 子弹快照（副本）
func (b *Battle) Projectiles() []Projectile {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Projectile, 0, len(b.projectiles))
	for _, p := range b.projectiles {
		out = append(out, *p)
	}
	return out
}

// Fire 玩家开火：在枪口前方 BulletGenerateDistance 处生成子弹，返回子弹 ID。
// 枪口被墙挡住时拒绝开火。激光请用 FireLaser
func (b *Battle) Fire(pid PlayerID, kind WeaponKind, antiArmor bool) (uint64, error) {
	if kind == WeaponLaser {
		return 0, ErrInstantWeapon
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	shooter := b.findPlayerLocked(pid)
	if shooter == nil || !shooter.IsAlive() {
		b.metrics.IncFireRejected()
		return 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, pid)
	}
	origin, err := b.muzzleLocked(shooter)
	if err != nil {
		b.metrics.IncFireRejected()
		return 0, err
	}
	p := &Projectile{
		Owner:     pid,
		Position:  origin,
		Speed:     InitialBulletSpeed,
		Damage:    InitialDamage,
		Kind:      kind,
		AntiArmor: antiArmor,
	}
	if err := b.addProjectileLocked(p); err != nil {
		b.metrics.IncFireRejected()
		return 0, err
	}
	return p.ID, nil
}

// muzzleLocked 枪口位置：沿朝向前移 BulletGenerateDistance，避免命中射手自身。
// 射手到枪口之间有墙时返回 ErrMuzzleBlocked，子弹和激光都不能从墙后生成
func (b *Battle) muzzleLocked(shooter Combatant) (geometry.Position, error) {
	pos := shooter.Position()
	final, _, blocked := b.resolveMove(pos, geometry.Displacement(BulletGenerateDistance, pos.Angle))
	if blocked {
		b.log.Debugw("Shot rejected: muzzle is behind a wall", "player", shooter.ID(), "x", pos.X, "y", pos.Y, "angle", pos.Angle)
		return geometry.Position{}, fmt.Errorf("%w: %s", ErrMuzzleBlocked, shooter.ID())
	}
	return final, nil
}

// safely 执行 fn，将意外 panic 转换为 ErrInternal 并记录，保证单项故障不外溢
func (b *Battle) safely(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw("Unexpected failure", "op", op, "panic", r)
			b.metrics.IncFaults()
			err = fmt.Errorf("%w: %s: %v", ErrInternal, op, r)
		}
	}()
	return fn()
}
