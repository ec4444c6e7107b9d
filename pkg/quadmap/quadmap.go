// Package quadmap implements the Morton-order quadtree co-partition:
// given a set of moving "agent" points and a set of bounded "building"
// footprints, it recursively splits their shared bounding region into
// quadrants until each quadrant holds few enough of both to resolve
// directly, then resolves each agent to one nearby building via a
// caller-supplied mapper function.
package quadmap

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/urbantraffic/agentmap/pkg/geo"
	"github.com/urbantraffic/agentmap/pkg/zorder"
)

// parallelSplitMinSize bounds fork-join fan-out during recursive
// quadrant splitting: a split only forks new goroutines per quadrant
// when the region's agent count makes the goroutine overhead worth it. Below this size, the four quadrants recurse sequentially
// in the calling goroutine, mirroring kdtree's parallelBuildMinSize gate.
const parallelSplitMinSize = 1024

// Positioned is implemented by agent records.
type Positioned interface {
	Position() geo.Point
}

// Bounded is implemented by building records.
type Bounded interface {
	BBox() geo.Region
}

// Mapper resolves one agent to a single building, chosen out of
// candidates — all buildings whose bounding box reaches past the
// centre lines into the agent's leaf quadrant at every split on the way
// down. It is called once per agent in each leaf quadrant, possibly
// concurrently from multiple goroutines, and must not share mutable
// state across calls without its own synchronization.
type Mapper[A Positioned, B Bounded] func(agent A, candidates []B) B

// Mapping pairs a resolved agent with its assigned building.
type Mapping[A Positioned, B Bounded] struct {
	Agent    A
	Building B
}

type agentEntry[A Positioned, B Bounded] struct {
	agent A
	code  zorder.Code
	slot  slot[B]
}

// Map assigns each agent to a building using mapper, recursively
// splitting the region spanned by agents and buildings into quadrants
// until a quadrant holds fewer than splitThreshold of either agents or
// buildings, at which point mapper is invoked directly over the
// quadrant's candidate buildings. It also returns the number of leaf
// quadrants resolved directly by mapper.
//
// The returned mappings omit any agent whose quadrant held no
// buildings at all; every other agent appears exactly once.
func Map[A Positioned, B Bounded](splitThreshold int, agents []A, buildings []B, mapper Mapper[A, B]) ([]Mapping[A, B], int) {
	if splitThreshold <= 0 {
		panic("quadmap: split threshold must be positive")
	}

	region := computeBounds(agents, buildings)
	if !region.Valid() {
		panic("quadmap: invalid region spanned by agents and buildings")
	}

	entries := make([]*agentEntry[A, B], len(agents))
	for i, a := range agents {
		np, ok := geo.Normalize(a.Position(), region)
		if !ok {
			panic("quadmap: could not normalize agent position")
		}
		entries[i] = &agentEntry[A, B]{
			agent: a,
			code:  zorder.Encode(np.X.Uint32(), np.Y.Uint32()),
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].code.Uint64() < entries[j].code.Uint64()
	})

	bldgs := make([]B, len(buildings))
	copy(bldgs, buildings)

	var leaves int64
	processRegion(splitThreshold, zorder.FromRaw(0), 0, region, entries, bldgs, mapper, &leaves)

	result := make([]Mapping[A, B], 0, len(entries))
	for _, e := range entries {
		if e.slot.isSet() {
			result = append(result, Mapping[A, B]{Agent: e.agent, Building: e.slot.get()})
		}
	}
	return result, int(atomic.LoadInt64(&leaves))
}

func computeBounds[A Positioned, B Bounded](agents []A, buildings []B) geo.Region {
	region := geo.EmptyRegion()
	for _, b := range buildings {
		region = region.ExpandToRegion(b.BBox())
	}
	for _, a := range agents {
		region = region.ExpandToPoint(a.Position())
	}
	return region
}

func processRegion[A Positioned, B Bounded](
	splitThreshold int,
	prefix zorder.Code,
	depth uint,
	region geo.Region,
	agents []*agentEntry[A, B],
	buildings []B,
	mapper Mapper[A, B],
	leaves *int64,
) {
	if len(agents) == 0 || len(buildings) == 0 {
		return
	}

	if len(agents) < splitThreshold || len(buildings) < splitThreshold {
		atomic.AddInt64(leaves, 1)
		for _, entry := range agents {
			entry.slot.set(mapper(entry.agent, buildings))
		}
		return
	}

	xBit := uint64(0x4000_0000_0000_0000) >> (2 * depth)
	yBit := uint64(0x8000_0000_0000_0000) >> (2 * depth)
	p := prefix.Uint64()

	nwPrefix := zorder.FromRaw(p | yBit)
	sePrefix := zorder.FromRaw(p | xBit)
	nePrefix := zorder.FromRaw(p | yBit | xBit)

	agentsS, agentsN := splitSlice(agents, findSplit(agents, nwPrefix))
	agentsNW, agentsNE := splitSlice(agentsN, findSplit(agentsN, nePrefix))
	agentsSW, agentsSE := splitSlice(agentsS, findSplit(agentsS, sePrefix))

	center := region.Center()

	ne := geo.NewRegion(region.East, center.X, region.North, center.Y)
	nw := geo.NewRegion(center.X, region.West, region.North, center.Y)
	se := geo.NewRegion(region.East, center.X, center.Y, region.South)
	sw := geo.NewRegion(center.X, region.West, center.Y, region.South)

	var bldgsNE, bldgsNW, bldgsSE, bldgsSW []B

	for _, b := range buildings {
		bbox := b.BBox()
		north := bbox.North > center.Y
		south := bbox.South < center.Y
		west := bbox.West < center.X
		east := bbox.East > center.X

		if north && east {
			bldgsNE = append(bldgsNE, b)
		}
		if north && west {
			bldgsNW = append(bldgsNW, b)
		}
		if south && east {
			bldgsSE = append(bldgsSE, b)
		}
		if south && west {
			bldgsSW = append(bldgsSW, b)
		}
	}

	if len(agents) < parallelSplitMinSize {
		processRegion(splitThreshold, nwPrefix, depth+1, nw, agentsNW, bldgsNW, mapper, leaves)
		processRegion(splitThreshold, nePrefix, depth+1, ne, agentsNE, bldgsNE, mapper, leaves)
		processRegion(splitThreshold, prefix, depth+1, sw, agentsSW, bldgsSW, mapper, leaves)
		processRegion(splitThreshold, sePrefix, depth+1, se, agentsSE, bldgsSE, mapper, leaves)
		return
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		processRegion(splitThreshold, nwPrefix, depth+1, nw, agentsNW, bldgsNW, mapper, leaves)
	}()
	go func() {
		defer wg.Done()
		processRegion(splitThreshold, nePrefix, depth+1, ne, agentsNE, bldgsNE, mapper, leaves)
	}()
	go func() {
		defer wg.Done()
		processRegion(splitThreshold, prefix, depth+1, sw, agentsSW, bldgsSW, mapper, leaves)
	}()
	go func() {
		defer wg.Done()
		processRegion(splitThreshold, sePrefix, depth+1, se, agentsSE, bldgsSE, mapper, leaves)
	}()

	wg.Wait()
}

// findSplit returns the leftmost index in arr (sorted ascending by Z
// code) whose code is >= query — the boundary between the quadrant
// below query's prefix and the quadrant at or above it.
func findSplit[A Positioned, B Bounded](arr []*agentEntry[A, B], query zorder.Code) int {
	return sort.Search(len(arr), func(i int) bool {
		return arr[i].code.Uint64() >= query.Uint64()
	})
}

func splitSlice[T any](s []T, idx int) ([]T, []T) {
	return s[:idx], s[idx:]
}
