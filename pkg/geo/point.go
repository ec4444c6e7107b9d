// Package geo provides the planar coordinate primitives shared by the
// kd-tree and quadmap spatial indices: points, axis-aligned regions,
// and the region-relative normalization used to derive Morton codes.
package geo

import "math"

// Point is a pair of ordered reals in a planar metric frame. NaN is not
// a legal coordinate; callers that may produce NaN must filter it out
// before constructing a Point used by the spatial indices.
type Point struct {
	X, Y float64
}

// NewPoint constructs a Point, panicking if either coordinate is NaN.
// Both fields are otherwise stored verbatim: Points are not clamped or
// validated against any bound.
func NewPoint(x, y float64) Point {
	if math.IsNaN(x) || math.IsNaN(y) {
		panic("geo: NaN coordinate in Point")
	}
	return Point{X: x, Y: y}
}

// SquaredDistance returns the squared Euclidean distance between p and
// other. All internal comparisons in the spatial indices use squared
// distance to avoid a square root on the hot path; callers that need an
// actual distance should take math.Sqrt of this value themselves.
func (p Point) SquaredDistance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// Distance returns the Euclidean distance between p and other.
func (p Point) Distance(other Point) float64 {
	return math.Sqrt(p.SquaredDistance(other))
}

// Axis selects one of the two coordinates of a Point by alternating
// k-d tree split axis: AxisX at even depths, AxisY at odd depths.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Next returns the axis used one tree level deeper.
func (a Axis) Next() Axis {
	if a == AxisX {
		return AxisY
	}
	return AxisX
}

// Coordinate returns the value of p along axis a.
func (p Point) Coordinate(a Axis) float64 {
	if a == AxisX {
		return p.X
	}
	return p.Y
}

// Less reports whether p is strictly less than other along axis a.
func (p Point) Less(other Point, a Axis) bool {
	return p.Coordinate(a) < other.Coordinate(a)
}
