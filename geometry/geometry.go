package geometry

import "math"

// Position 平面坐标与朝向。Angle 统一使用弧度，0 指向 +X，逆时针为正
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// Vec 位移向量
type Vec struct {
	X float64
	Y float64
}

// Add 返回沿位移平移后的新位置（朝向保持不变）
func (p Position) Add(d Vec) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y, Angle: p.Angle}
}

// WithAngle 返回替换朝向后的新位置
func (p Position) WithAngle(angle float64) Position {
	return Position{X: p.X, Y: p.Y, Angle: angle}
}

// Direction 朝向对应的单位向量
func Direction(angle float64) Vec {
	return Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Displacement 按速度与朝向计算单 Tick 位移
func Displacement(speed, angle float64) Vec {
	d := Direction(angle)
	return Vec{X: speed * d.X, Y: speed * d.Y}
}

// PointDistance 两点欧氏距离（忽略朝向）
func PointDistance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// LineDistance 点到有向直线的垂直距离。直线经过 line 且方向为 line.Angle
func LineDistance(line, point Position) float64 {
	d := Direction(line.Angle)
	dx := point.X - line.X
	dy := point.Y - line.Y
	return math.Abs(dx*d.Y - dy*d.X)
}

// ProjectLength 点在有向直线上的标量投影，以 line 为原点，负值表示在起点之后
func ProjectLength(point, line Position) float64 {
	d := Direction(line.Angle)
	return (point.X-line.X)*d.X + (point.Y-line.Y)*d.Y
}

// Segment 平面线段
type Segment struct {
	A Vec
	B Vec
}

// RayIntersection 射线 start+t*d (t∈[0,1]) 与线段 seg 的交点参数 t。
// 平行或无交点时 ok=false
func RayIntersection(start Position, d Vec, seg Segment) (t float64, ok bool) {
	ex := seg.B.X - seg.A.X
	ey := seg.B.Y - seg.A.Y
	denom := cross(d.X, d.Y, ex, ey)
	if math.Abs(denom) < epsilon {
		return 0, false
	}
	wx := seg.A.X - start.X
	wy := seg.A.Y - start.Y
	t = cross(wx, wy, ex, ey) / denom
	u := cross(wx, wy, d.X, d.Y) / denom
	if t < -epsilon || t > 1+epsilon || u < -epsilon || u > 1+epsilon {
		return 0, false
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t, true
}

const epsilon = 1e-9

func cross(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}
