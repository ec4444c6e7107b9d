package kdtree

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/urbantraffic/agentmap/pkg/geo"
)

type recordPoint struct {
	p      geo.Point
	label  string
	offset float64
}

func (r *recordPoint) Point() geo.Point { return r.p }

func TestPartitionInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 500; trial++ {
		n := 1 + rng.Intn(30)
		refs := make([]*recordPoint, n)
		for i := range refs {
			refs[i] = &recordPoint{p: geo.Point{X: float64(rng.Intn(1000)), Y: float64(rng.Intn(1000))}}
		}

		left, pivot, right := partitionMedianOfThree(refs, geo.AxisX)

		for _, r := range left {
			if r.p.X >= pivot.p.X {
				t.Fatalf("left element %v not < pivot %v", r.p, pivot.p)
			}
		}
		for _, r := range right {
			if r.p.X < pivot.p.X {
				t.Fatalf("right element %v < pivot %v", r.p, pivot.p)
			}
		}
		if len(left)+len(right)+1 != n {
			t.Fatalf("partition lost elements: %d + %d + 1 != %d", len(left), len(right), n)
		}
	}
}

func TestBuildAndSizeTrivial(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"empty", 0},
		{"single", 1},
		{"pair", 2},
		{"small", 7},
		{"parallel threshold crossing", parallelBuildMinSize + 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]*recordPoint, tt.n)
			for i := range records {
				records[i] = &recordPoint{p: geo.Point{X: float64(i), Y: float64(-i)}}
			}

			tree := Build(records)
			if tree.Size() != tt.n {
				t.Fatalf("Size() = %d, want %d", tree.Size(), tt.n)
			}
		})
	}
}

func bruteForceNearest(query geo.Point, records []*recordPoint, k int, maxDist float64) []float64 {
	maxSq := maxDist * maxDist

	type pair struct {
		d float64
	}
	var all []pair
	for _, r := range records {
		d := r.p.SquaredDistance(query)
		if d < maxSq {
			all = append(all, pair{d})
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].d < all[j].d })

	if len(all) > k {
		all = all[:k]
	}

	out := make([]float64, len(all))
	for i, p := range all {
		out[i] = p.d
	}
	return out
}

// TestNearestNeighborCorrectness mirrors the original quickcheck
// property: points are generated at strictly increasing distance from
// the query along random headings, so the expected ranking is known
// ahead of time.
func TestNearestNeighborCorrectness(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 200; trial++ {
		query := geo.Point{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}

		n := 1 + rng.Intn(40)
		records := make([]*recordPoint, n)
		cur := 0.0
		for i := 0; i < n; i++ {
			d := rng.Float64()*5 + 0.01
			cur += d
			theta := rng.Float64() * 2 * math.Pi
			records[i] = &recordPoint{
				p: geo.Point{
					X: query.X + math.Cos(theta)*cur,
					Y: query.Y + math.Sin(theta)*cur,
				},
			}
		}

		k := 1 + rng.Intn(n)
		maxDist := rng.Float64()*50 + 1

		tree := Build(records)
		got := tree.CollectNearest(query, k, maxDist)
		want := bruteForceNearest(query, records, k, maxDist)

		if len(got) != len(want) {
			t.Fatalf("trial %d: got %d neighbors, want %d", trial, len(got), len(want))
		}

		for i := range got {
			if math.Abs(got[i].SquaredDistance-want[i]) > 1e-6 {
				t.Fatalf("trial %d: neighbor %d distance = %v, want %v", trial, i, got[i].SquaredDistance, want[i])
			}
			if i > 0 && got[i].SquaredDistance < got[i-1].SquaredDistance {
				t.Fatalf("trial %d: neighbors not sorted by distance", trial)
			}
			if !got[i].Found {
				t.Fatalf("trial %d: neighbor %d not marked Found", trial, i)
			}
		}
	}
}

func TestNearestEmptyTree(t *testing.T) {
	tree := Build([]*recordPoint(nil))
	out := make([]Result[*recordPoint], 3)
	tree.Nearest(geo.Point{X: 0, Y: 0}, out, 100)

	for i, r := range out {
		if r.Found {
			t.Fatalf("slot %d unexpectedly found on empty tree", i)
		}
		if !math.IsInf(r.SquaredDistance, 1) {
			t.Fatalf("slot %d squared distance = %v, want +Inf", i, r.SquaredDistance)
		}
	}
}

func TestNearestZeroK(t *testing.T) {
	records := []*recordPoint{{p: geo.Point{X: 1, Y: 1}}}
	tree := Build(records)
	got := tree.CollectNearest(geo.Point{X: 0, Y: 0}, 0, 100)
	if len(got) != 0 {
		t.Fatalf("CollectNearest with k=0 returned %d results", len(got))
	}
}

func TestNearestRespectsMaxDist(t *testing.T) {
	records := []*recordPoint{
		{p: geo.Point{X: 0, Y: 0}},
		{p: geo.Point{X: 100, Y: 100}},
	}
	tree := Build(records)

	got := tree.CollectNearest(geo.Point{X: 0, Y: 0}, 2, 1.0)
	if len(got) != 1 {
		t.Fatalf("expected 1 neighbor within maxDist, got %d", len(got))
	}
}
