// Package ingestion loads agent snapshot and building CSV data, buckets
// agent rows by hour, and writes per-hour mapping and count CSVs. It is
// the glue between the spatial indices in pkg/kdtree and pkg/quadmap
// and the CSV files the upstream simulation tooling actually produces.
package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urbantraffic/agentmap/pkg/geo"
)

// Building is a simplified footprint record: an ID, area, centroid,
// and bounding box. It implements kdtree.Located (via Point, the
// centroid) and quadmap.Bounded (via BBox).
type Building struct {
	ID       uint32
	Area     float64
	Centroid geo.Point
	Bounds   geo.Region
}

// Point returns the building's centroid, used as its kd-tree key.
func (b Building) Point() geo.Point { return b.Centroid }

// BBox returns the building's bounding box, used by QuadMap's
// quadrant-candidacy test.
func (b Building) BBox() geo.Region { return b.Bounds }

// buildingColumns names the CSV header fields a building file must
// carry; parseBuildingRecord looks each one up by name.
var buildingColumns = []string{
	"id", "center_x", "center_y", "area",
	"bbox_east", "bbox_west", "bbox_north", "bbox_south",
}

// LoadBuildings reads a building CSV file with a header row naming the
// columns in buildingColumns (in any order) and returns one Building
// per data row.
func LoadBuildings(path string) ([]Building, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion: could not open building file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("ingestion: could not read building header: %w", err)
	}

	idx, err := columnIndex(header, buildingColumns)
	if err != nil {
		return nil, err
	}

	var buildings []Building
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingestion: could not read building record: %w", err)
		}

		b, err := parseBuildingRecord(record, idx)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}

	return buildings, nil
}

func parseBuildingRecord(record []string, idx map[string]int) (Building, error) {
	id, err := strconv.ParseUint(record[idx["id"]], 10, 32)
	if err != nil {
		return Building{}, fmt.Errorf("ingestion: invalid building id %q: %w", record[idx["id"]], err)
	}

	floats := make(map[string]float64, 7)
	for _, col := range buildingColumns[1:] {
		v, err := strconv.ParseFloat(record[idx[col]], 64)
		if err != nil {
			return Building{}, fmt.Errorf("ingestion: invalid %s %q: %w", col, record[idx[col]], err)
		}
		floats[col] = v
	}

	return Building{
		ID:       uint32(id),
		Area:     floats["area"],
		Centroid: geo.NewPoint(floats["center_x"], floats["center_y"]),
		Bounds: geo.NewRegion(
			floats["bbox_east"], floats["bbox_west"],
			floats["bbox_north"], floats["bbox_south"],
		),
	}, nil
}

func columnIndex(header []string, want []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range want {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("ingestion: missing required column %q", name)
		}
	}
	return idx, nil
}
