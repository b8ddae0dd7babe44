package server

import (
	"fmt"

	"arenasim/geometry"
)

// ApplyLaser 即时结算一次激光：光束从 Origin 沿朝向射出，被最近的墙截断，
// 命中光束上离起点最近的一名玩家（判定半径加上半个光束宽度）。不生成子弹
func (b *Battle) ApplyLaser(shot LaserShot) (LaserResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applyLaserLocked(shot)
}

func (b *Battle) applyLaserLocked(shot LaserShot) (LaserResult, error) {
	if b.stage != StageInBattle {
		b.log.Errorw("Laser cannot be applied at this stage", "stage", b.stage.String())
		return LaserResult{}, fmt.Errorf("%w: laser at stage %s", ErrInvalidStage, b.stage)
	}
	length := shot.Length
	if length <= 0 {
		length = LaserLength
	}

	var res LaserResult
	err := b.safely("apply laser", func() error {
		end, _, blocked := b.resolveMove(shot.Origin, geometry.Displacement(length, shot.Origin.Angle))
		res.End, res.Blocked = end, blocked

		hit := b.findHitPlayerLocked(shot.Origin, end, PlayerRadius+LaserWidth/2)
		if hit == nil {
			return nil
		}
		res.Hit = hit.ID()
		applied, err := hit.ApplyDamage(shot.Damage, shot.AntiArmor)
		if err != nil {
			b.log.Debugw("Laser damage not applied", "player", hit.ID(), "error", err)
			return nil
		}
		res.Applied = applied
		return nil
	})
	if err != nil {
		b.log.Errorw("Laser failed to take damage", "owner", shot.Owner, "error", err)
		return LaserResult{}, err
	}

	b.metrics.IncLaserShots()
	b.log.Debugw("Laser applied", "owner", shot.Owner, "x", shot.Origin.X, "y", shot.Origin.Y,
		"angle", shot.Origin.Angle, "damage", shot.Damage, "antiArmor", shot.AntiArmor,
		"hit", res.Hit, "applied", res.Applied, "blocked", res.Blocked)
	return res, nil
}

// FireLaser 玩家发射激光，起点为枪口位置；枪口被墙挡住时拒绝
func (b *Battle) FireLaser(pid PlayerID, antiArmor bool) (LaserResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	shooter := b.findPlayerLocked(pid)
	if shooter == nil || !shooter.IsAlive() {
		b.metrics.IncFireRejected()
		return LaserResult{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, pid)
	}
	origin, err := b.muzzleLocked(shooter)
	if err != nil {
		b.metrics.IncFireRejected()
		return LaserResult{}, err
	}
	return b.applyLaserLocked(LaserShot{
		Owner:     pid,
		Origin:    origin,
		Damage:    InitialDamage,
		AntiArmor: antiArmor,
	})
}
