package fixedunit

import (
	"math"
	"math/rand"
	"testing"
)

func TestFromFloat64Saturation(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected FixedUnit
	}{
		{"zero", 0.0, 0},
		{"negative zero", math.Copysign(0, -1), 0},
		{"negative", -1.5, 0},
		{"negative infinity", math.Inf(-1), 0},
		{"one", 1.0, math.MaxUint32},
		{"above one", 1.5, math.MaxUint32},
		{"positive infinity", math.Inf(1), math.MaxUint32},
		{"midpoint", 0.5, math.MaxUint32 / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromFloat64(tt.in)
			if got != tt.expected {
				t.Errorf("FromFloat64(%v) = %v, want %v", tt.in, got, tt.expected)
			}
		})
	}
}

func TestFromFloat64PanicsOnNaN(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on NaN input")
		}
	}()
	FromFloat64(math.NaN())
}

func TestFromFloat64Monotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		a := rng.Float64()*4 - 2
		b := rng.Float64()*4 - 2

		if a >= b {
			continue
		}

		if FromFloat64(a) > FromFloat64(b) {
			t.Fatalf("monotonicity violated: a=%v b=%v encode(a)=%v encode(b)=%v",
				a, b, FromFloat64(a), FromFloat64(b))
		}
	}
}

func TestFloat64RoundTripOrder(t *testing.T) {
	// Round-tripping through FixedUnit must not reorder values that
	// were already distinct under FromFloat64.
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 10000; i++ {
		a := rng.Float64()
		b := rng.Float64()

		ea, eb := FromFloat64(a), FromFloat64(b)
		if ea == eb {
			continue
		}

		ra, rb := ea.Float64(), eb.Float64()
		if (ea < eb) != (ra < rb) {
			t.Fatalf("round-trip reordered values: a=%v b=%v", a, b)
		}
	}
}
