package server

import (
	"fmt"

	"arenasim/geometry"
)

// Stage 战斗阶段，唯一决定能否修改子弹集合
type Stage int

const (
	StageNotStarted Stage = iota
	StageInBattle
	StageEnded
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "NotStarted"
	case StageInBattle:
		return "InBattle"
	case StageEnded:
		return "Ended"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// WeaponKind 武器种类（封闭集合）。Standard/Missile 生成飞行子弹，Laser 即时结算
type WeaponKind int

const (
	WeaponStandard WeaponKind = iota
	WeaponMissile
	WeaponLaser
)

func (k WeaponKind) String() string {
	switch k {
	case WeaponStandard:
		return "standard"
	case WeaponMissile:
		return "missile"
	case WeaponLaser:
		return "laser"
	default:
		return fmt.Sprintf("WeaponKind(%d)", int(k))
	}
}

// ParseWeaponKind 解析客户端上送的武器名
func ParseWeaponKind(s string) (WeaponKind, bool) {
	switch s {
	case "", "standard", "bullet":
		return WeaponStandard, true
	case "missile":
		return WeaponMissile, true
	case "laser":
		return WeaponLaser, true
	}
	return 0, false
}

// Projectile 飞行中的子弹，仅归属一个 Battle 的子弹集合
type Projectile struct {
	ID             uint64
	Owner          PlayerID
	Position       geometry.Position // Angle 即飞行方向（弧度）
	Speed          float64           // 每 Tick 位移
	Damage         int
	Kind           WeaponKind
	AntiArmor      bool
	RemainingTicks int
}

// ProjectileState 广播用快照
type ProjectileState struct {
	ID        uint64            `json:"id"`
	Pos       geometry.Position `json:"pos"`
	Kind      string            `json:"kind"`
	AntiArmor bool              `json:"antiArmor,omitempty"`
}

func (p *Projectile) state() ProjectileState {
	return ProjectileState{ID: p.ID, Pos: p.Position, Kind: p.Kind.String(), AntiArmor: p.AntiArmor}
}

// logFields 诊断记录的公共字段
func (p *Projectile) logFields() []any {
	return []any{
		"projectile", p.ID,
		"x", p.Position.X,
		"y", p.Position.Y,
		"angle", p.Position.Angle,
		"kind", p.Kind.String(),
		"speed", p.Speed,
		"damage", p.Damage,
		"antiArmor", p.AntiArmor,
	}
}

// LaserShot 激光一次即时命中，不携带飞行状态
type LaserShot struct {
	Owner     PlayerID
	Origin    geometry.Position
	Damage    int
	AntiArmor bool
	Length    float64 // <=0 时取 LaserLength
}

// LaserResult 激光结算结果
type LaserResult struct {
	End     geometry.Position
	Blocked bool     // 光束被墙截断
	Hit     PlayerID // 未命中为空
	Applied int
}
