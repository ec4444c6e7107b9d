package ingestion

import (
	"math"
	"sync"
	"time"

	"github.com/urbantraffic/agentmap/pkg/kdtree"
	"github.com/urbantraffic/agentmap/pkg/observability"
)

// Mapping pairs one agent with the building its position was mapped
// to, and the distance between them.
type Mapping struct {
	Agent    Agent
	Building Building
	Distance float64
}

// ComputeMappings maps every agent to its nearest building in tree,
// using a fixed worker pool over a channel of indices. Agents with no
// building within range (an empty tree) are silently dropped, mirroring
// compute_mappings's filter_map over a failed nearest-neighbor lookup.
// metrics may be nil, in which case per-query observations are skipped.
func ComputeMappings(agents []Agent, tree *kdtree.Tree[Building], numWorkers int, metrics *observability.Metrics) []Mapping {
	if len(agents) == 0 {
		return nil
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	results := make([]*Mapping, len(agents))
	jobs := make(chan int, len(agents))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var nn [1]kdtree.Result[Building]
			for i := range jobs {
				start := time.Now()
				visited := tree.Nearest(agents[i].Pos, nn[:], math.Inf(1))
				if metrics != nil {
					metrics.RecordKNNQuery(time.Since(start), visited)
				}
				if nn[0].Found {
					results[i] = &Mapping{
						Agent:    agents[i],
						Building: nn[0].Record,
						Distance: math.Sqrt(nn[0].SquaredDistance),
					}
				}
			}
		}()
	}

	for i := range agents {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := make([]Mapping, 0, len(agents))
	for _, m := range results {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}
