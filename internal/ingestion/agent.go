package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/urbantraffic/agentmap/pkg/geo"
)

// Column positions of the fields group_by_time.rs cares about in an
// agent snapshot row. Columns in between (direction, lane, offset,
// driver) are carried in Raw but otherwise unused.
const (
	colVehicle = 0
	colTime    = 1
	colLink    = 2
	colX       = 11
	colY       = 12
)

// Agent is one vehicle snapshot row: its ID, timestamp, link, and
// planar position, plus a copy of the original row. The output CSVs
// do not include Raw's extra fields.
type Agent struct {
	VehicleID string
	Timestamp string
	Link      string
	Pos       geo.Point
	Raw       []string
}

// Position returns the agent's planar coordinates, its QuadMap key.
func (a Agent) Position() geo.Point { return a.Pos }

// ParseTimestamp extracts the hour bucket of a snapshot timestamp.
// Timestamps are either "H:MM[:SS]"/"HH:MM[:SS]" (hour in [0,23]) or
// day-prefixed "D@H[:MM[:SS]]" (hour in [24,47], one bucket per day
// past the first). Malformed timestamps shorter than two bytes panic.
func ParseTimestamp(timestamp string) uint8 {
	b := []byte(timestamp)
	if len(b) < 2 {
		panic("ingestion: timestamp too short to contain an hour field: " + timestamp)
	}

	switch b[1] {
	case ':':
		return b[0] - '0'
	case '@':
		return 24 + (b[2] - '0')
	default:
		return 10*(b[0]-'0') + (b[1] - '0')
	}
}

// loadAgentFile reads one agent snapshot CSV file (header row, then
// data rows), keeping only rows whose timestamp falls exactly on the
// minute (ends in ":00"), matching group_by_time.rs's on-the-hour
// snapshot filter.
func loadAgentFile(path string) ([]Agent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion: could not open agent file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("ingestion: could not read agent header: %w", err)
	}

	var agents []Agent
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingestion: could not read agent record: %w", err)
		}

		if len(record) <= colY || !strings.HasSuffix(record[colTime], ":00") {
			continue
		}

		x, err := strconv.ParseFloat(record[colX], 64)
		if err != nil {
			return nil, fmt.Errorf("ingestion: invalid X coordinate %q: %w", record[colX], err)
		}
		y, err := strconv.ParseFloat(record[colY], 64)
		if err != nil {
			return nil, fmt.Errorf("ingestion: invalid Y coordinate %q: %w", record[colY], err)
		}

		row := make([]string, len(record))
		copy(row, record)

		agents = append(agents, Agent{
			VehicleID: record[colVehicle],
			Timestamp: record[colTime],
			Link:      record[colLink],
			Pos:       geo.NewPoint(x, y),
			Raw:       row,
		})
	}

	return agents, nil
}

// GroupByHour loads every path in paths and buckets its agent rows by
// hour, merging per-file groups into one map. Files are loaded and
// grouped concurrently, one goroutine per path, mirroring
// group_by_time.rs's par_iter().map(load).map(group).reduce(merge).
func GroupByHour(paths []string) (map[uint8][]Agent, error) {
	type fileResult struct {
		groups map[uint8][]Agent
		err    error
	}

	results := make([]fileResult, len(paths))
	var wg sync.WaitGroup
	wg.Add(len(paths))

	for i, path := range paths {
		go func(i int, path string) {
			defer wg.Done()

			agents, err := loadAgentFile(path)
			if err != nil {
				results[i] = fileResult{err: err}
				return
			}
			results[i] = fileResult{groups: groupRecords(agents)}
		}(i, path)
	}
	wg.Wait()

	merged := make(map[uint8][]Agent)
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		for hour, agents := range r.groups {
			merged[hour] = append(merged[hour], agents...)
		}
	}
	return merged, nil
}

func groupRecords(agents []Agent) map[uint8][]Agent {
	groups := make(map[uint8][]Agent)
	for _, a := range agents {
		hour := ParseTimestamp(a.Timestamp)
		groups[hour] = append(groups[hour], a)
	}
	return groups
}
