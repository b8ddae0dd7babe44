package server

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"arenasim/geometry"
)

type damageCall struct {
	amount    int
	antiArmor bool
}

// fakeCombatant 记录 ApplyDamage 调用的测试玩家
type fakeCombatant struct {
	id      PlayerID
	pos     geometry.Position
	health  int
	armor   Armor
	calls   []damageCall
	explode bool
	// explodeAfterHit 先记录伤害再 panic
	explodeAfterHit bool
}

func newFake(id string, x, y float64) *fakeCombatant {
	return &fakeCombatant{id: PlayerID(id), pos: geometry.Position{X: x, Y: y}, health: InitialHealthValue}
}

func (f *fakeCombatant) ID() PlayerID                { return f.id }
func (f *fakeCombatant) Position() geometry.Position { return f.pos }
func (f *fakeCombatant) IsAlive() bool               { return f.health > 0 }
func (f *fakeCombatant) Armor() Armor                { return f.armor }

func (f *fakeCombatant) ApplyDamage(amount int, antiArmor bool) (int, error) {
	if f.explode {
		panic("damage pipeline exploded")
	}
	f.calls = append(f.calls, damageCall{amount: amount, antiArmor: antiArmor})
	f.health -= amount
	if f.explodeAfterHit {
		panic("damage bookkeeping exploded")
	}
	return amount, nil
}

// observeLogs 将全局 Log 替换为可断言的观察者，测试结束后恢复
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Log
	Log = zap.New(core).Sugar()
	t.Cleanup(func() { Log = prev })
	return logs
}

// newBattle 创建战斗并加入玩家；inBattle 时直接开战
func newBattle(t *testing.T, walls WallMap, inBattle bool, players ...Combatant) *Battle {
	t.Helper()
	b := NewBattle("test", BattleOptions{Walls: walls})
	for _, p := range players {
		require.NoError(t, b.AddCombatant(p))
	}
	if inBattle {
		require.NoError(t, b.Start())
	}
	return b
}

func straightProjectile(x, y, angle, speed float64) *Projectile {
	return &Projectile{
		Position: geometry.Position{X: x, Y: y, Angle: angle},
		Speed:    speed,
		Damage:   InitialDamage,
		Kind:     WeaponStandard,
	}
}
