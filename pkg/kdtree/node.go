package kdtree

import "github.com/urbantraffic/agentmap/pkg/geo"

// Located is implemented by any record type indexed by a Tree. T is
// typically a pointer or other reference type, so that the Tree never
// copies record storage — it only reorders references during
// construction and holds them at nodes afterward.
type Located interface {
	Point() geo.Point
}

// node owns one pivot record and up to two children. Once built, a
// node's fields never change: the tree is immutable after construction
// and safe to query concurrently without synchronization.
type node[T Located] struct {
	data  T
	left  *node[T]
	right *node[T]
}
