package server

import (
	"errors"
	"math/rand"

	"arenasim/geometry"
)

// ErrPlayerDead 对已阵亡玩家结算伤害
var ErrPlayerDead = errors.New("player is dead")

// PlayerID 表示玩家唯一标识
type PlayerID string

// Direction 移动意图（服务端权威解释客户端“意图”）
type Direction int

const (
	DirNone Direction = iota
	DirForward
	DirBackward
	DirTurnLeft
	DirTurnRight
)

// Armor 护甲状态
type Armor struct {
	Value           int  `json:"armor"`
	DodgePercentage int  `json:"dodge"`
	GravityField    bool `json:"gravityField"`
}

// Combatant 战斗核心对玩家的全部依赖：只读位置与状态，并通过 ApplyDamage 结算伤害。
// 核心从不创建或销毁玩家
type Combatant interface {
	ID() PlayerID
	Position() geometry.Position
	IsAlive() bool
	Armor() Armor
	// ApplyDamage 返回实际扣除的生命值
	ApplyDamage(amount int, antiArmor bool) (int, error)
}

// PlayerState 为广播给客户端的轻量状态
type PlayerState struct {
	ID     string            `json:"id"`
	Pos    geometry.Position `json:"pos"`
	Health int               `json:"health"`
	Alive  bool              `json:"alive"`
	Armor  Armor             `json:"armor"`
}

// Player 房间内的玩家实体（服务端权威状态），只在所属 Battle 的锁内读写
type Player struct {
	id     PlayerID
	pos    geometry.Position
	health int
	armor  Armor

	// dodgeRoll 返回 [0,100) 的闪避判定值
	dodgeRoll func() int

	Conn *ClientConn // 网络连接的发送端（写协程）
}

// NewPlayer 创建满血玩家
func NewPlayer(id PlayerID, pos geometry.Position, conn *ClientConn) *Player {
	return &Player{
		id:     id,
		pos:    pos,
		health: InitialHealthValue,
		armor: Armor{
			Value:           InitialArmorValue,
			DodgePercentage: InitialDodgePercentage,
		},
		dodgeRoll: func() int { return rand.Intn(100) },
		Conn:      conn,
	}
}

func (p *Player) ID() PlayerID                { return p.id }
func (p *Player) Position() geometry.Position { return p.pos }
func (p *Player) IsAlive() bool               { return p.health > 0 }
func (p *Player) Armor() Armor                { return p.armor }
func (p *Player) Health() int                 { return p.health }

// SetArmor 由道具/拾取逻辑调用
func (p *Player) SetArmor(a Armor) { p.armor = a }

// ApplyDamage 结算一次命中：
// 闪避成功不扣血；穿甲伤害按 AntiArmorFactor 倍削减护甲且全额扣血；
// 普通伤害先由护甲吸收，剩余部分扣血
func (p *Player) ApplyDamage(amount int, antiArmor bool) (int, error) {
	if !p.IsAlive() {
		return 0, ErrPlayerDead
	}
	if amount <= 0 {
		return 0, nil
	}
	if p.armor.DodgePercentage > 0 && p.dodgeRoll() < p.armor.DodgePercentage {
		return 0, nil
	}

	dmg := amount
	if antiArmor {
		p.armor.Value -= amount * AntiArmorFactor
		if p.armor.Value < 0 {
			p.armor.Value = 0
		}
	} else {
		absorbed := min(p.armor.Value, amount)
		p.armor.Value -= absorbed
		dmg -= absorbed
	}

	p.health -= dmg
	if p.health < 0 {
		p.health = 0
	}
	return dmg, nil
}

func (p *Player) state() PlayerState {
	return PlayerState{
		ID:     string(p.id),
		Pos:    p.pos,
		Health: p.health,
		Alive:  p.IsAlive(),
		Armor:  p.armor,
	}
}
