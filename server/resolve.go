package server

import (
	"math"

	"arenasim/geometry"
)

// effectiveSpeedLocked 引力场减速：遇到第一个存活、开启引力场且在半径内的玩家即生效，
// 多个引力场重叠也只生效一次
func (b *Battle) effectiveSpeedLocked(p *Projectile) float64 {
	speed := p.Speed
	for _, c := range b.players {
		if c.IsAlive() && c.Armor().GravityField &&
			geometry.PointDistance(c.Position(), p.Position) < GravityFieldRadius {
			speed *= GravityFieldStrength
			break
		}
	}
	return speed
}

// resolveMove 位移被最近的墙截断：有交点时 final 即交点，inter 同值且 blocked=true
func (b *Battle) resolveMove(start geometry.Position, d geometry.Vec) (final, inter geometry.Position, blocked bool) {
	if b.walls != nil {
		if hit, ok := b.walls.NearestIntersection(start, d); ok {
			hit = hit.WithAngle(start.Angle)
			return hit, hit, true
		}
	}
	return start.Add(d), geometry.Position{}, false
}

// FindHitPlayer 线段 start→end 命中的最近玩家，没有则返回 nil
func (b *Battle) FindHitPlayer(start, end geometry.Position) Combatant {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findHitPlayerLocked(start, end, PlayerRadius)
}

// findHitPlayerLocked 候选为到直线垂距小于 radius 的玩家；投影落在 (-radius, 线段长] 内才有效，
// 取投影最小者，相同投影保留扫描顺序中的第一个
func (b *Battle) findHitPlayerLocked(start, end geometry.Position, radius float64) Combatant {
	line := start
	length := geometry.PointDistance(start, end)
	if length > 1e-12 {
		line = start.WithAngle(math.Atan2(end.Y-start.Y, end.X-start.X))
	}

	candidates := make([]Combatant, 0, len(b.players))
	for _, c := range b.players {
		if geometry.LineDistance(line, c.Position()) < radius {
			candidates = append(candidates, c)
		}
	}

	var hit Combatant
	minProj := math.MaxFloat64
	for _, c := range candidates {
		proj := geometry.ProjectLength(c.Position(), line)
		if proj > -radius && proj <= length && proj < minProj {
			minProj = proj
			hit = c
		}
	}
	return hit
}
