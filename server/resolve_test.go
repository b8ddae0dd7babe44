package server

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arenasim/arena"
	"arenasim/geometry"
)

func TestFindHitPlayer_PicksPlayerOnSegment(t *testing.T) {
	near := newFake("near", 5, 0)
	far := newFake("far", 5, 5)
	b := newBattle(t, nil, true, far, near)

	hit := b.FindHitPlayer(geometry.Position{X: 0, Y: 0}, geometry.Position{X: 10, Y: 0})
	require.NotNil(t, hit)
	assert.Equal(t, PlayerID("near"), hit.ID())
}

func TestFindHitPlayer_ClosestToStartWins(t *testing.T) {
	a := newFake("a", 8, 0.2)
	c := newFake("c", 2, -0.3)
	b := newBattle(t, nil, true, a, c)

	hit := b.FindHitPlayer(geometry.Position{}, geometry.Position{X: 10})
	require.NotNil(t, hit)
	assert.Equal(t, PlayerID("c"), hit.ID())
}

func TestFindHitPlayer_TieBreakKeepsFirstInScanOrder(t *testing.T) {
	first := newFake("first", 5, 0.1)
	second := newFake("second", 5, -0.1)
	b := newBattle(t, nil, true, first, second)

	hit := b.FindHitPlayer(geometry.Position{}, geometry.Position{X: 10})
	require.NotNil(t, hit)
	assert.Equal(t, PlayerID("first"), hit.ID())

	b2 := newBattle(t, nil, true, second, first)
	hit = b2.FindHitPlayer(geometry.Position{}, geometry.Position{X: 10})
	require.NotNil(t, hit)
	assert.Equal(t, PlayerID("second"), hit.ID())
}

func TestFindHitPlayer_ProjectionWindow(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		hit  bool
	}{
		{name: "just behind start", x: -0.4, hit: true},
		{name: "radius behind start", x: -PlayerRadius, hit: false},
		{name: "at end", x: 10, hit: true},
		{name: "past end", x: 10.01, hit: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBattle(t, nil, true, newFake("p", tt.x, 0))
			hit := b.FindHitPlayer(geometry.Position{}, geometry.Position{X: 10})
			assert.Equal(t, tt.hit, hit != nil)
		})
	}
}

func TestFindHitPlayer_UsesSegmentDirection(t *testing.T) {
	p := newFake("p", 3, 3)
	b := newBattle(t, nil, true, p)

	// 起点朝向与线段方向不一致时以线段方向为准
	hit := b.FindHitPlayer(geometry.Position{Angle: math.Pi}, geometry.Position{X: 5, Y: 5})
	require.NotNil(t, hit)
	assert.Equal(t, PlayerID("p"), hit.ID())
}

func TestEffectiveSpeed_GravityField(t *testing.T) {
	active := newFake("active", 2, 0)
	active.armor.GravityField = true
	inactive := newFake("inactive", 1, 0)
	active2 := newFake("active2", 3, 0)
	active2.armor.GravityField = true
	dead := newFake("dead", 0, 1)
	dead.armor.GravityField = true
	dead.health = 0
	distant := newFake("distant", 50, 50)
	distant.armor.GravityField = true

	tests := []struct {
		name    string
		players []Combatant
		want    float64
	}{
		{name: "no field", players: []Combatant{inactive}, want: 2},
		{name: "one active one inactive", players: []Combatant{inactive, active}, want: 2 * GravityFieldStrength},
		{name: "overlapping fields apply once", players: []Combatant{active, active2}, want: 2 * GravityFieldStrength},
		{name: "dead emitter ignored", players: []Combatant{dead}, want: 2},
		{name: "out of radius", players: []Combatant{distant}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBattle(t, nil, true, tt.players...)
			got := b.effectiveSpeedLocked(straightProjectile(0, 0, 0, 2))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestResolveMove(t *testing.T) {
	walls := arena.NewMap(geometry.Segment{A: geometry.Vec{X: 3, Y: -1}, B: geometry.Vec{X: 3, Y: 1}})
	b := newBattle(t, walls, true)

	final, inter, blocked := b.resolveMove(geometry.Position{X: 2}, geometry.Vec{X: 5})
	require.True(t, blocked)
	assert.InDelta(t, 3.0, final.X, 1e-9)
	assert.Equal(t, final, inter)

	final, _, blocked = b.resolveMove(geometry.Position{X: 0, Y: 5}, geometry.Vec{X: 5})
	assert.False(t, blocked)
	assert.InDelta(t, 5.0, final.X, 1e-9)
}
