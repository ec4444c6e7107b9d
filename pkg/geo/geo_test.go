package geo

import (
	"math"
	"testing"
)

func TestRegionValid(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		want   bool
	}{
		{"normal", NewRegion(10, 0, 10, 0), true},
		{"degenerate east-west", NewRegion(0, 0, 10, 0), false},
		{"degenerate north-south", NewRegion(10, 0, 0, 0), false},
		{"inverted", NewRegion(0, 10, 0, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.region.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegionContains(t *testing.T) {
	r := NewRegion(10, 0, 10, 0)

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{5, 5}, true},
		{"corner", Point{0, 0}, true},
		{"on edge", Point{10, 5}, true},
		{"outside east", Point{11, 5}, false},
		{"outside south", Point{5, -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRegionIntersects(t *testing.T) {
	a := NewRegion(10, 0, 10, 0)

	tests := []struct {
		name  string
		other Region
		want  bool
	}{
		{"overlapping", NewRegion(15, 5, 15, 5), true},
		{"contained", NewRegion(8, 2, 8, 2), true},
		{"touching edge only", NewRegion(20, 10, 10, 0), false},
		{"disjoint", NewRegion(30, 20, 10, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}

func TestRegionCenter(t *testing.T) {
	r := NewRegion(10, 0, 20, 0)
	c := r.Center()
	if c.X != 5 || c.Y != 10 {
		t.Errorf("Center() = %v, want {5 10}", c)
	}
}

func TestExpandToPointAndRegion(t *testing.T) {
	r := EmptyRegion()
	r = r.ExpandToPoint(Point{1, 2})
	r = r.ExpandToPoint(Point{-3, 4})
	r = r.ExpandToRegion(NewRegion(10, 5, 10, -5))

	if r.West != -3 || r.East != 10 || r.South != -5 || r.North != 10 {
		t.Errorf("unexpected folded region: %+v", r)
	}
}

func TestNormalize(t *testing.T) {
	region := NewRegion(10, 0, 10, 0)

	np, ok := Normalize(Point{5, 5}, region)
	if !ok {
		t.Fatal("expected point within region to normalize")
	}
	if math.Abs(np.X.Float64()-0.5) > 1e-6 || math.Abs(np.Y.Float64()-0.5) > 1e-6 {
		t.Errorf("normalize center = %+v, want ~(0.5, 0.5)", np)
	}

	if _, ok := Normalize(Point{11, 5}, region); ok {
		t.Error("expected point outside region to fail normalization")
	}
}

func TestPointSquaredDistance(t *testing.T) {
	p1 := Point{0, 0}
	p2 := Point{3, 4}

	if d := p1.SquaredDistance(p2); d != 25 {
		t.Errorf("SquaredDistance = %v, want 25", d)
	}
	if d := p1.Distance(p2); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestNewPointPanicsOnNaN(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on NaN coordinate")
		}
	}()
	NewPoint(math.NaN(), 0)
}

func TestAxisNext(t *testing.T) {
	if AxisX.Next() != AxisY {
		t.Error("AxisX.Next() should be AxisY")
	}
	if AxisY.Next() != AxisX {
		t.Error("AxisY.Next() should be AxisX")
	}
}
