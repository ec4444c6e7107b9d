package zorder

import (
	"math"
	"math/rand"
	"testing"
)

// TestEncodeKnownValues mirrors scenario D: full-axis codes and the
// smallest non-trivial interleave.
func TestEncodeKnownValues(t *testing.T) {
	tests := []struct {
		name string
		x, y uint32
		want Code
	}{
		{"all X bits set", 0xFFFF_FFFF, 0, 0x5555_5555_5555_5555},
		{"all Y bits set", 0, 0xFFFF_FFFF, 0xAAAA_AAAA_AAAA_AAAA},
		{"unit interleave", 1, 1, 3},
		{"origin", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.x, tt.y); got != tt.want {
				t.Errorf("Encode(%#x, %#x) = %#x, want %#x", tt.x, tt.y, uint64(got), uint64(tt.want))
			}
		})
	}
}

func TestAxisBitsRoundTrip(t *testing.T) {
	c := Encode(0xDEADBEEF, 0xCAFEBABE)
	if c.XBits()|c.YBits() != c.Uint64() {
		t.Error("XBits and YBits do not partition the full code")
	}
	if c.XBits()&c.YBits() != 0 {
		t.Error("XBits and YBits overlap")
	}
}

// TestAxisAgreement is the property from spec §8 item 2: per-axis
// comparisons on the code must agree with plain integer comparison on
// the original coordinates.
func TestAxisAgreement(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20000; i++ {
		x1, y1 := rng.Uint32(), rng.Uint32()
		x2, y2 := rng.Uint32(), rng.Uint32()

		z1 := Encode(x1, y1)
		z2 := Encode(x2, y2)

		wantX := compareUint32(x1, x2)
		if got := z1.CompareX(z2); got != wantX {
			t.Fatalf("CompareX mismatch: x1=%d x2=%d got=%d want=%d", x1, x2, got, wantX)
		}

		wantY := compareUint32(y1, y2)
		if got := z1.CompareY(z2); got != wantY {
			t.Fatalf("CompareY mismatch: y1=%d y2=%d got=%d want=%d", y1, y2, got, wantY)
		}
	}
}

// TestDiscriminatorProperty is spec §8 item 3: full-code order agrees
// with coordinate order along whichever axis has the higher
// MSB-of-XOR between the two points' coordinates.
func TestDiscriminatorProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 20000; i++ {
		x1, y1 := rng.Uint32(), rng.Uint32()
		x2, y2 := rng.Uint32(), rng.Uint32()

		z1 := Encode(x1, y1)
		z2 := Encode(x2, y2)

		m1 := x1 ^ x2
		m2 := y1 ^ y2

		var want int
		if leadingZeros32(m1) < leadingZeros32(m2) {
			want = compareUint32(x1, x2)
		} else {
			want = compareUint32(y1, y2)
		}

		got := compareUint64(z1.Uint64(), z2.Uint64())
		if got != want {
			t.Fatalf("discriminator mismatch: (%d,%d) vs (%d,%d): got=%d want=%d",
				x1, y1, x2, y2, got, want)
		}
	}
}

func compareUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func leadingZeros32(x uint32) int {
	if x == 0 {
		return 32
	}
	n := 0
	for x&0x8000_0000 == 0 {
		x <<= 1
		n++
	}
	return n
}

func TestLeadingZeros32Sanity(t *testing.T) {
	if leadingZeros32(0) != 32 {
		t.Error("leadingZeros32(0) should be 32")
	}
	if leadingZeros32(1) != 31 {
		t.Error("leadingZeros32(1) should be 31")
	}
	if leadingZeros32(math.MaxUint32) != 0 {
		t.Error("leadingZeros32(max) should be 0")
	}
}
