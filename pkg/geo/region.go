package geo

import "math"

// Region is an axis-aligned rectangle in planar coordinates. The zero
// value is not a valid Region: East must be strictly greater than West
// and North strictly greater than South for a Region to be usable by
// QuadMap.
type Region struct {
	East, West   float64
	North, South float64
}

// NewRegion constructs a Region from its four bounds.
func NewRegion(east, west, north, south float64) Region {
	return Region{East: east, West: west, North: north, South: south}
}

// Valid reports whether the region is non-degenerate: East must be
// strictly greater than West, and North strictly greater than South.
// A degenerate region is rejected as invalid input to QuadMap.
func (r Region) Valid() bool {
	return r.East > r.West && r.North > r.South
}

// Contains reports whether p lies within the closed rectangle r.
func (r Region) Contains(p Point) bool {
	return p.X >= r.West && p.X <= r.East && p.Y >= r.South && p.Y <= r.North
}

// Intersects reports whether r and other overlap on an open interval on
// both axes (touching edges do not count as intersecting).
func (r Region) Intersects(other Region) bool {
	return r.West < other.East && r.East > other.West &&
		r.South < other.North && r.North > other.South
}

// Center returns the arithmetic midpoint of the region.
func (r Region) Center() Point {
	return Point{
		X: (r.East + r.West) / 2,
		Y: (r.North + r.South) / 2,
	}
}

// Southwest, Southeast, Northwest, and Northeast return the four
// corners of the region.
func (r Region) Southwest() Point { return Point{X: r.West, Y: r.South} }
func (r Region) Southeast() Point { return Point{X: r.East, Y: r.South} }
func (r Region) Northwest() Point { return Point{X: r.West, Y: r.North} }
func (r Region) Northeast() Point { return Point{X: r.East, Y: r.North} }

// ExpandToPoint returns the smallest region containing both r and p.
func (r Region) ExpandToPoint(p Point) Region {
	if p.X < r.West {
		r.West = p.X
	}
	if p.X > r.East {
		r.East = p.X
	}
	if p.Y > r.North {
		r.North = p.Y
	}
	if p.Y < r.South {
		r.South = p.Y
	}
	return r
}

// ExpandToRegion returns the smallest region containing both r and other.
func (r Region) ExpandToRegion(other Region) Region {
	if other.West < r.West {
		r.West = other.West
	}
	if other.East > r.East {
		r.East = other.East
	}
	if other.South < r.South {
		r.South = other.South
	}
	if other.North > r.North {
		r.North = other.North
	}
	return r
}

// EmptyRegion returns the identity element for ExpandToPoint/
// ExpandToRegion folds: a region that grows to enclose the first point
// or region folded into it.
func EmptyRegion() Region {
	return Region{
		East:  math.Inf(-1),
		West:  math.Inf(1),
		North: math.Inf(-1),
		South: math.Inf(1),
	}
}
