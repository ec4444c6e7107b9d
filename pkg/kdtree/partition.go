package kdtree

import "github.com/urbantraffic/agentmap/pkg/geo"

// partitionMedianOfThree reorders refs in place and splits it into
// (left, pivot, right), where every record in left compares less than
// pivot on axis and every record in right compares greater-or-equal.
// The pivot is chosen as the median of the first, middle, and last
// elements, which keeps the split close to balanced on already-sorted
// or reverse-sorted input without the cost of a full median-of-medians
// selection.
func partitionMedianOfThree[T Located](refs []T, axis geo.Axis) (left []T, pivot T, right []T) {
	n := len(refs)

	switch {
	case n == 0:
		panic("kdtree: cannot partition an empty slice")
	case n == 1:
		return refs[:0], refs[0], refs[0:0]
	case n == 2:
		if axisCompare(refs[0], refs[1], axis) > 0 {
			refs[0], refs[1] = refs[1], refs[0]
		}
		if axisCompare(refs[0], refs[1], axis) == 0 {
			return refs[:0], refs[0], refs[1:2]
		}
		return refs[0:1], refs[1], refs[1:1]
	}

	hi := n - 1
	mid := n >> 1

	if axisCompare(refs[mid], refs[0], axis) < 0 {
		refs[mid], refs[0] = refs[0], refs[mid]
	}
	if axisCompare(refs[hi], refs[0], axis) < 0 {
		refs[hi], refs[0] = refs[0], refs[hi]
	}
	if axisCompare(refs[mid], refs[hi], axis) < 0 {
		refs[hi], refs[mid] = refs[mid], refs[hi]
	}

	pivotVal := refs[hi]
	elems := refs[:hi]
	i, j := 0, len(elems)

	for {
		for axisCompare(elems[i], pivotVal, axis) < 0 {
			i++
		}
		for {
			j--
			if axisCompare(elems[j], pivotVal, axis) <= 0 {
				break
			}
		}
		if i >= j {
			return elems[:i], pivotVal, elems[i:]
		}
		elems[i], elems[j] = elems[j], elems[i]
	}
}

func axisCompare[T Located](a, b T, axis geo.Axis) int {
	pa := a.Point().Coordinate(axis)
	pb := b.Point().Coordinate(axis)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}
