package server

import "math"

// 玩家与护甲
const (
	InitialHealthValue     = 3
	InitialArmorValue      = 0
	InitialDodgePercentage = 0 // 0%

	GravityFieldRadius   = 10.0
	GravityFieldStrength = 0.5

	PlayerRadius           = 0.5
	MoveSpeed              = 0.1
	TurnSpeed              = math.Pi / 60
	BulletGenerateDistance = 0.8
)

// 武器与子弹
const (
	InitialBulletSpeed  = 2.0
	InitialDamage       = 1
	AntiArmorFactor     = 2
	BulletRemainingTick = 100

	LaserWidth = 0.1
	// 激光长度按子弹飞行 Tick 数折算
	LaserLengthEquivalentTicks = 20
	LaserLength                = InitialBulletSpeed * LaserLengthEquivalentTicks
)
