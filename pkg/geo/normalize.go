package geo

import "github.com/urbantraffic/agentmap/pkg/fixedunit"

// NormalizedPoint is the pair of FixedUnit coordinates produced by
// rescaling a Point into [0, 1] relative to an enclosing Region.
type NormalizedPoint struct {
	X, Y fixedunit.FixedUnit
}

// Normalize rescales p into [0, 1] relative to region, where (0, 0)
// represents the region's southwest corner and (1, 1) its northeast
// corner. It reports false if p lies outside region.
func Normalize(p Point, region Region) (NormalizedPoint, bool) {
	x := (p.X - region.West) / (region.East - region.West)
	y := (p.Y - region.South) / (region.North - region.South)

	if x < 0.0 || x > 1.0 || y < 0.0 || y > 1.0 {
		return NormalizedPoint{}, false
	}

	return NormalizedPoint{
		X: fixedunit.FromFloat64(x),
		Y: fixedunit.FromFloat64(y),
	}, true
}
