package kdtree

import (
	"math"
	"sort"

	"github.com/urbantraffic/agentmap/pkg/geo"
)

// Result is one slot of a bounded nearest-neighbor query. An unfilled
// slot has Found false, a zero Record, and SquaredDistance of +Inf.
type Result[T Located] struct {
	Record          T
	Found           bool
	SquaredDistance float64
}

// Nearest fills out with the k = len(out) nearest records to query, in
// order of increasing squared distance, discarding any at or beyond
// maxDist. Every slot is first reset, so slots left unfilled (fewer
// than k records fall within maxDist) hold Found false and a
// SquaredDistance of +Inf. The out slice is written in place, so
// callers can avoid reallocating it across repeated queries. It
// returns the number of tree nodes visited during the search, for
// callers that report query cost.
func (t *Tree[T]) Nearest(query geo.Point, out []Result[T], maxDist float64) int {
	for i := range out {
		out[i] = Result[T]{SquaredDistance: math.Inf(1)}
	}

	if len(out) == 0 || t.root == nil {
		return 0
	}

	visited := 0
	t.root.nearest(query, out, geo.AxisX, maxDist*maxDist, &visited)
	return visited
}

// CollectNearest runs Nearest and returns only the filled slots.
func (t *Tree[T]) CollectNearest(query geo.Point, k int, maxDist float64) []Result[T] {
	out := make([]Result[T], k)
	t.Nearest(query, out, maxDist)

	filtered := out[:0]
	for _, r := range out {
		if r.Found {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func (n *node[T]) nearest(query geo.Point, best []Result[T], axis geo.Axis, maxSq float64, visited *int) {
	*visited++
	pivot := n.data.Point()
	left := query.Less(pivot, axis)

	if left {
		if n.left != nil {
			n.left.nearest(query, best, axis.Next(), maxSq, visited)
		}
	} else {
		if n.right != nil {
			n.right.nearest(query, best, axis.Next(), maxSq, visited)
		}
	}

	d := pivot.SquaredDistance(query)
	if d < maxSq {
		insertResult(best, n.data, d)
	}

	var otherExists bool
	if left {
		otherExists = n.right != nil
	} else {
		otherExists = n.left != nil
	}

	if otherExists {
		var sepDist float64
		if axis == geo.AxisY {
			dy := query.Y - pivot.Y
			sepDist = dy * dy
		} else {
			dx := query.X - pivot.X
			sepDist = dx * dx
		}

		worst := best[len(best)-1].SquaredDistance

		if sepDist < maxSq && sepDist <= worst {
			if left {
				n.right.nearest(query, best, axis.Next(), maxSq, visited)
			} else {
				n.left.nearest(query, best, axis.Next(), maxSq, visited)
			}
		}
	}
}

// insertResult inserts (record, d) into the sorted best slice,
// shifting the tail down and dropping the current worst slot. Ties
// are inserted after existing entries with the same distance.
func insertResult[T Located](best []Result[T], record T, d float64) {
	idx := sort.Search(len(best), func(i int) bool {
		return best[i].SquaredDistance > d
	})

	if idx >= len(best) {
		return
	}

	copy(best[idx+1:], best[idx:len(best)-1])
	best[idx] = Result[T]{Record: record, Found: true, SquaredDistance: d}
}
