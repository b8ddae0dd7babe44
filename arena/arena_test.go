package arena

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arenasim/geometry"
)

func TestNearestIntersection_PicksClosestWall(t *testing.T) {
	m := NewMap(
		geometry.Segment{A: geometry.Vec{X: 6, Y: -1}, B: geometry.Vec{X: 6, Y: 1}},
		geometry.Segment{A: geometry.Vec{X: 3, Y: -1}, B: geometry.Vec{X: 3, Y: 1}},
	)

	p, ok := m.NearestIntersection(geometry.Position{}, geometry.Vec{X: 10})
	require.True(t, ok)
	assert.InDelta(t, 3.0, p.X, 1e-9)
	assert.InDelta(t, 0.0, p.Y, 1e-9)
}

func TestNearestIntersection_None(t *testing.T) {
	m := NewMap(geometry.Segment{A: geometry.Vec{X: 3, Y: -1}, B: geometry.Vec{X: 3, Y: 1}})

	_, ok := m.NearestIntersection(geometry.Position{}, geometry.Vec{X: 1})
	assert.False(t, ok)

	var empty *Map
	_, ok = empty.NearestIntersection(geometry.Position{}, geometry.Vec{X: 100})
	assert.False(t, ok)
}

func TestBounded_ClipsAtBorder(t *testing.T) {
	m := Bounded(10, 10)
	assert.Len(t, m.Walls(), 4)

	p, ok := m.NearestIntersection(geometry.Position{X: 9, Y: 5}, geometry.Vec{X: 3})
	require.True(t, ok)
	assert.InDelta(t, 10.0, p.X, 1e-9)
}

func TestParseWKT(t *testing.T) {
	segs, err := ParseWKT("MULTILINESTRING((3 -1,3 1),(0 5,10 5,10 8))")
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, geometry.Segment{A: geometry.Vec{X: 3, Y: -1}, B: geometry.Vec{X: 3, Y: 1}}, segs[0])
	assert.Equal(t, geometry.Vec{X: 10, Y: 8}, segs[2].B)

	segs, err = ParseWKT("LINESTRING(0 0,1 1)")
	require.NoError(t, err)
	assert.Len(t, segs, 1)
}

func TestParseWKT_Errors(t *testing.T) {
	_, err := ParseWKT("not wkt")
	assert.Error(t, err)

	_, err = ParseWKT("POINT(1 2)")
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.wkt")
	require.NoError(t, os.WriteFile(path, []byte("LINESTRING(3 -1,3 1)"), 0644))

	m, err := LoadFile(path, 20, 20)
	require.NoError(t, err)
	assert.Len(t, m.Walls(), 5)

	_, err = LoadFile(filepath.Join(dir, "missing.wkt"), 20, 20)
	assert.Error(t, err)
}
