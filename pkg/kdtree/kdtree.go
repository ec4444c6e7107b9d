// Package kdtree implements a static, parallel-built, alternating-axis
// 2-d k-d tree with bounded k-nearest-neighbor queries.
package kdtree

import (
	"sync"

	"github.com/urbantraffic/agentmap/pkg/geo"
)

// parallelBuildMinSize bounds fork-join fan-out: a split's two halves
// are only handed to new goroutines when the slice being split holds at
// least this many records. Below this size, construction continues
// sequentially in the calling goroutine.
const parallelBuildMinSize = 1024

// Tree is an immutable 2-d k-d tree over records of type T. The zero
// value is not usable; construct one with Build.
type Tree[T Located] struct {
	root *node[T]
	size int
}

// Build constructs a tree over records, splitting on the X axis at the
// root and alternating axes by depth. Build copies records into
// internal scratch space before partitioning, so the caller's slice is
// never reordered.
func Build[T Located](records []T) *Tree[T] {
	refs := make([]T, len(records))
	copy(refs, records)
	return &Tree[T]{
		root: buildNode(refs, geo.AxisX),
		size: len(records),
	}
}

// Size returns the number of records indexed by the tree.
func (t *Tree[T]) Size() int {
	return t.size
}

func buildNode[T Located](refs []T, axis geo.Axis) *node[T] {
	switch len(refs) {
	case 0:
		return nil
	case 1:
		return &node[T]{data: refs[0]}
	case 2:
		parent := &node[T]{data: refs[0]}
		child := &node[T]{data: refs[1]}

		if child.data.Point().Less(parent.data.Point(), axis) {
			parent.left = child
		} else {
			parent.right = child
		}

		return parent
	default:
		left, pivot, right := partitionMedianOfThree(refs, axis)
		nextAxis := axis.Next()

		if len(refs) < parallelBuildMinSize {
			return &node[T]{
				data:  pivot,
				left:  buildNode(left, nextAxis),
				right: buildNode(right, nextAxis),
			}
		}

		var leftNode, rightNode *node[T]
		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			leftNode = buildNode(left, nextAxis)
		}()
		go func() {
			defer wg.Done()
			rightNode = buildNode(right, nextAxis)
		}()

		wg.Wait()

		return &node[T]{data: pivot, left: leftNode, right: rightNode}
	}
}
