package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arenasim/geometry"
)

func TestPlayerApplyDamage(t *testing.T) {
	tests := []struct {
		name       string
		armor      Armor
		amount     int
		antiArmor  bool
		roll       int
		applied    int
		health     int
		armorAfter int
	}{
		{name: "no armor", amount: 1, applied: 1, health: 2},
		{name: "armor absorbs all", armor: Armor{Value: 2}, amount: 1, applied: 0, health: 3, armorAfter: 1},
		{name: "armor absorbs part", armor: Armor{Value: 1}, amount: 2, applied: 1, health: 2, armorAfter: 0},
		{name: "anti-armor strips armor", armor: Armor{Value: 3}, amount: 1, antiArmor: true, applied: 1, health: 2, armorAfter: 1},
		{name: "anti-armor floor at zero", armor: Armor{Value: 1}, amount: 1, antiArmor: true, applied: 1, health: 2, armorAfter: 0},
		{name: "dodged", armor: Armor{DodgePercentage: 25}, amount: 1, roll: 10, applied: 0, health: 3},
		{name: "dodge missed", armor: Armor{DodgePercentage: 25}, amount: 1, roll: 25, applied: 1, health: 2},
		{name: "overkill clamps", amount: 5, applied: 5, health: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer("p", geometry.Position{}, nil)
			p.SetArmor(tt.armor)
			p.dodgeRoll = func() int { return tt.roll }

			applied, err := p.ApplyDamage(tt.amount, tt.antiArmor)
			require.NoError(t, err)
			assert.Equal(t, tt.applied, applied)
			assert.Equal(t, tt.health, p.Health())
			assert.Equal(t, tt.armorAfter, p.Armor().Value)
		})
	}
}

func TestPlayerApplyDamage_Dead(t *testing.T) {
	p := NewPlayer("p", geometry.Position{}, nil)
	_, err := p.ApplyDamage(InitialHealthValue, false)
	require.NoError(t, err)
	assert.False(t, p.IsAlive())

	applied, err := p.ApplyDamage(1, false)
	assert.ErrorIs(t, err, ErrPlayerDead)
	assert.Zero(t, applied)
}

func TestJoinPlayer(t *testing.T) {
	b := newBattle(t, nil, false)

	a, err := b.JoinPlayer("alice", nil)
	require.NoError(t, err)
	c, err := b.JoinPlayer("carol", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Position(), c.Position())

	_, err = b.JoinPlayer("alice", nil)
	assert.ErrorIs(t, err, ErrDuplicatePlayer)
	assert.Len(t, b.Players(), 2)

	b.LeavePlayer("alice")
	players := b.Players()
	require.Len(t, players, 1)
	assert.Equal(t, "carol", players[0].ID)
}

func TestStageTransitions(t *testing.T) {
	b := newBattle(t, nil, false)
	assert.Equal(t, StageNotStarted, b.Stage())

	assert.ErrorIs(t, b.End(), ErrInvalidStage)
	require.NoError(t, b.Start())
	assert.Equal(t, StageInBattle, b.Stage())
	assert.ErrorIs(t, b.Start(), ErrInvalidStage)
	require.NoError(t, b.End())
	assert.Equal(t, StageEnded, b.Stage())
	assert.Equal(t, "Ended", b.Stage().String())
}

func TestParseWeaponKind(t *testing.T) {
	k, ok := ParseWeaponKind("missile")
	assert.True(t, ok)
	assert.Equal(t, WeaponMissile, k)

	k, ok = ParseWeaponKind("")
	assert.True(t, ok)
	assert.Equal(t, WeaponStandard, k)

	_, ok = ParseWeaponKind("railgun")
	assert.False(t, ok)
}
