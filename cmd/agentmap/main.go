// Command agentmap buckets agent snapshot CSVs by hour, maps each
// hour's agents to their nearest building, and writes per-hour mapping
// and count CSVs. It is the batch equivalent of pkg/api/rest's
// POST /v1/jobs endpoint, runnable without a server.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/urbantraffic/agentmap/internal/ingestion"
	"github.com/urbantraffic/agentmap/pkg/config"
	"github.com/urbantraffic/agentmap/pkg/kdtree"
	"github.com/urbantraffic/agentmap/pkg/observability"
	"github.com/urbantraffic/agentmap/pkg/quadmap"
)

func main() {
	var (
		buildingsPath   = flag.String("buildings", "", "path to building CSV file (required)")
		mapOut          = flag.String("map-out", "", "directory to write NN_mappings.csv files (required)")
		countOut        = flag.String("count-out", "", "directory to write NN_counts.csv files (required)")
		filterOutliers  = flag.Bool("filter-outliers", false, "drop distance outliers via a Tukey fence")
		useQuadmap      = flag.Bool("quadmap", false, "map agents via the quadtree co-partition instead of kd-tree queries")
		splitThreshold  = flag.Int("split-threshold", 0, "quadmap split threshold (required with -quadmap)")
		workers         = flag.Int("workers", 0, "worker pool size for kd-tree mapping (default: config)")
	)
	flag.Parse()

	snapshotPaths := flag.Args()

	if *buildingsPath == "" || *mapOut == "" || *countOut == "" {
		fmt.Fprintln(os.Stderr, "usage: agentmap -buildings FILE -map-out DIR -count-out DIR [options] SNAPSHOT...")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if len(snapshotPaths) == 0 {
		fmt.Fprintln(os.Stderr, "at least one snapshot CSV path is required")
		os.Exit(1)
	}
	if *useQuadmap && *splitThreshold <= 0 {
		fmt.Fprintln(os.Stderr, "-split-threshold must be positive when -quadmap is set")
		os.Exit(1)
	}

	cfg := config.LoadFromEnv()
	if *workers <= 0 {
		*workers = cfg.Index.WorkerPoolSize
	}

	logger := observability.NewDefaultLogger()

	buildings, err := ingestion.LoadBuildings(*buildingsPath)
	if err != nil {
		logger.Fatal("could not load buildings", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("loaded buildings", map[string]interface{}{"count": len(buildings)})

	tree := kdtree.Build(buildings)

	groups, err := ingestion.GroupByHour(snapshotPaths)
	if err != nil {
		logger.Fatal("could not load agent snapshots", map[string]interface{}{"error": err.Error()})
	}

	hours := make([]uint8, 0, len(groups))
	for hour := range groups {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i] < hours[j] })

	for _, hour := range hours {
		agents := groups[hour]

		var mappings []ingestion.Mapping
		if *useQuadmap {
			mappings = mapWithQuadmap(agents, buildings, *splitThreshold)
		} else {
			mappings = ingestion.ComputeMappings(agents, tree, *workers, nil)
		}

		if *filterOutliers {
			mappings = ingestion.TukeyFence(mappings, cfg.Ingestion.TukeyFenceK, func(m ingestion.Mapping) float64 {
				return m.Distance
			})
		}

		counts := ingestion.CountByBuilding(mappings, func(m ingestion.Mapping) uint32 {
			return m.Building.ID
		})

		if err := ingestion.WriteMappings(hour, mappings, counts, *mapOut); err != nil {
			logger.Fatal("could not write mappings", map[string]interface{}{"hour": hour, "error": err.Error()})
		}
		if err := ingestion.WriteCounts(hour, buildings, counts, *countOut); err != nil {
			logger.Fatal("could not write counts", map[string]interface{}{"hour": hour, "error": err.Error()})
		}

		logger.Info("processed hour", map[string]interface{}{
			"hour":     hour,
			"agents":   len(agents),
			"mappings": len(mappings),
		})
	}
}

// mapWithQuadmap exercises quadmap.Map as an alternative to repeated
// kd-tree queries: each quadrant resolves its agents by brute-force
// nearest-building search over only the buildings candidate in that
// quadrant.
func mapWithQuadmap(agents []ingestion.Agent, buildings []ingestion.Building, splitThreshold int) []ingestion.Mapping {
	if len(agents) == 0 || len(buildings) == 0 {
		return nil
	}

	raw, _ := quadmap.Map(splitThreshold, agents, buildings, nearestBuilding)

	mappings := make([]ingestion.Mapping, len(raw))
	for i, m := range raw {
		mappings[i] = ingestion.Mapping{
			Agent:    m.Agent,
			Building: m.Building,
			Distance: m.Agent.Pos.Distance(m.Building.Centroid),
		}
	}
	return mappings
}

func nearestBuilding(agent ingestion.Agent, candidates []ingestion.Building) ingestion.Building {
	best := candidates[0]
	bestDist := agent.Pos.SquaredDistance(best.Centroid)

	for _, c := range candidates[1:] {
		d := agent.Pos.SquaredDistance(c.Centroid)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}
