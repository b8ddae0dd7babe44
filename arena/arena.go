package arena

import (
	"errors"
	"fmt"
	"math"
	"os"

	geom "github.com/peterstace/simplefeatures/geom"

	"arenasim/geometry"
)

// ErrUnsupportedGeometry 地图 WKT 只接受 LINESTRING / MULTILINESTRING / GEOMETRYCOLLECTION
var ErrUnsupportedGeometry = errors.New("unsupported wall geometry")

// Map 只读墙体几何，供子弹与玩家移动做射线裁剪。构造后不再修改，可在多个战斗间共享
type Map struct {
	walls []geometry.Segment
}

// NewMap 由墙体线段构造地图
func NewMap(walls ...geometry.Segment) *Map {
	cp := make([]geometry.Segment, len(walls))
	copy(cp, walls)
	return &Map{walls: cp}
}

// Bounded 为 width×height 的矩形场地加上四面边界墙
func Bounded(width, height float64, walls ...geometry.Segment) *Map {
	border := []geometry.Segment{
		{A: geometry.Vec{X: 0, Y: 0}, B: geometry.Vec{X: width, Y: 0}},
		{A: geometry.Vec{X: width, Y: 0}, B: geometry.Vec{X: width, Y: height}},
		{A: geometry.Vec{X: width, Y: height}, B: geometry.Vec{X: 0, Y: height}},
		{A: geometry.Vec{X: 0, Y: height}, B: geometry.Vec{X: 0, Y: 0}},
	}
	return NewMap(append(border, walls...)...)
}

// Walls 返回墙体副本
func (m *Map) Walls() []geometry.Segment {
	if m == nil {
		return nil
	}
	cp := make([]geometry.Segment, len(m.walls))
	copy(cp, m.walls)
	return cp
}

// NearestIntersection 沿位移射线查找最近的墙体交点；位移内无墙时 ok=false。
// 起点正好在墙上时交点即起点
func (m *Map) NearestIntersection(start geometry.Position, d geometry.Vec) (geometry.Position, bool) {
	if m == nil {
		return geometry.Position{}, false
	}
	best := math.Inf(1)
	for _, w := range m.walls {
		if t, ok := geometry.RayIntersection(start, d, w); ok && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return geometry.Position{}, false
	}
	return geometry.Position{X: start.X + best*d.X, Y: start.Y + best*d.Y, Angle: start.Angle}, true
}

// ParseWKT 解析 WKT 描述的墙体，例如
// MULTILINESTRING((3 -1,3 1),(0 5,10 5))
// 折线的每一段都视为一面独立的墙
func ParseWKT(wkt string) ([]geometry.Segment, error) {
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("parse wall wkt: %w", err)
	}
	return segmentsOf(g)
}

// LoadFile 读取 WKT 地图文件并加上场地边界
func LoadFile(path string, width, height float64) (*Map, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	walls, err := ParseWKT(string(b))
	if err != nil {
		return nil, err
	}
	return Bounded(width, height, walls...), nil
}

func segmentsOf(g geom.Geometry) ([]geometry.Segment, error) {
	if ls, ok := g.AsLineString(); ok {
		return lineStringSegments(ls), nil
	}
	if mls, ok := g.AsMultiLineString(); ok {
		var out []geometry.Segment
		for i := 0; i < mls.NumLineStrings(); i++ {
			out = append(out, lineStringSegments(mls.LineStringN(i))...)
		}
		return out, nil
	}
	if gc, ok := g.AsGeometryCollection(); ok {
		var out []geometry.Segment
		for i := 0; i < gc.NumGeometries(); i++ {
			segs, err := segmentsOf(gc.GeometryN(i))
			if err != nil {
				return nil, err
			}
			out = append(out, segs...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.Type())
}

func lineStringSegments(ls geom.LineString) []geometry.Segment {
	seq := ls.Coordinates()
	if seq.Length() < 2 {
		return nil
	}
	out := make([]geometry.Segment, 0, seq.Length()-1)
	for i := 1; i < seq.Length(); i++ {
		a := seq.GetXY(i - 1)
		b := seq.GetXY(i)
		out = append(out, geometry.Segment{
			A: geometry.Vec{X: a.X, Y: a.Y},
			B: geometry.Vec{X: b.X, Y: b.Y},
		})
	}
	return out
}
