package ingestion

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var mappingHeader = []string{
	"VEHICLE", "LINK", "X_COORD", "Y_COORD",
	"BUILDING", "BUILDING_X", "BUILDING_Y", "DISTANCE", "MAPPED_VEHICLE_COUNT",
}

var countHeader = []string{
	"BUILDING", "BUILDING_X", "BUILDING_Y", "BUILDING_AREA",
	"BUILDING_EAST", "BUILDING_WEST", "BUILDING_NORTH", "BUILDING_SOUTH",
	"MAPPED_VEHICLE_COUNT",
}

// WriteMappings writes one "HH_mappings.csv" file under outDir for
// hour, with one row per mapping, the building's mapped-agent count
// appended as the last column, grounded on group_by_time.rs's
// write_group.
func WriteMappings(hour uint8, mappings []Mapping, counts map[uint32]uint64, outDir string) error {
	path := filepath.Join(outDir, fmt.Sprintf("%02d_mappings.csv", hour))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ingestion: could not create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(mappingHeader); err != nil {
		return fmt.Errorf("ingestion: could not write mapping header: %w", err)
	}

	for _, m := range mappings {
		count := counts[m.Building.ID]
		row := []string{
			m.Agent.VehicleID,
			m.Agent.Link,
			strconv.FormatFloat(m.Agent.Pos.X, 'g', -1, 64),
			strconv.FormatFloat(m.Agent.Pos.Y, 'g', -1, 64),
			strconv.FormatUint(uint64(m.Building.ID), 10),
			strconv.FormatFloat(m.Building.Centroid.X, 'g', -1, 64),
			strconv.FormatFloat(m.Building.Centroid.Y, 'g', -1, 64),
			strconv.FormatFloat(m.Distance, 'g', -1, 64),
			strconv.FormatUint(count, 10),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("ingestion: could not write mapping row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteCounts writes one "HH_counts.csv" file under outDir for hour,
// one row per building that received at least one mapped agent,
// grounded on group_by_time.rs's write_buildings.
func WriteCounts(hour uint8, buildings []Building, counts map[uint32]uint64, outDir string) error {
	path := filepath.Join(outDir, fmt.Sprintf("%02d_counts.csv", hour))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ingestion: could not create %s: %w", path, err)
	}
	defer f.Close()

	byID := make(map[uint32]Building, len(buildings))
	for _, b := range buildings {
		byID[b.ID] = b
	}

	w := csv.NewWriter(f)
	if err := w.Write(countHeader); err != nil {
		return fmt.Errorf("ingestion: could not write count header: %w", err)
	}

	for id, count := range counts {
		b, ok := byID[id]
		if !ok {
			continue
		}
		row := []string{
			strconv.FormatUint(uint64(b.ID), 10),
			strconv.FormatFloat(b.Centroid.X, 'g', -1, 64),
			strconv.FormatFloat(b.Centroid.Y, 'g', -1, 64),
			strconv.FormatFloat(b.Area, 'g', -1, 64),
			strconv.FormatFloat(b.Bounds.East, 'g', -1, 64),
			strconv.FormatFloat(b.Bounds.West, 'g', -1, 64),
			strconv.FormatFloat(b.Bounds.North, 'g', -1, 64),
			strconv.FormatFloat(b.Bounds.South, 'g', -1, 64),
			strconv.FormatUint(count, 10),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("ingestion: could not write count row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
