// Package rest implements the batch-job HTTP service that fronts the
// spatial core: clients submit an agent/building set, the service
// builds a k-d tree (or quadmap co-partition) over the buildings and
// maps every agent concurrently, and the job's result is retrieved
// asynchronously.
package rest

import (
	"time"

	"github.com/urbantraffic/agentmap/internal/ingestion"
	"github.com/urbantraffic/agentmap/pkg/geo"
)

// AgentRequest is one agent row in a job submission payload.
type AgentRequest struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// BuildingRequest is one building row in a job submission payload.
type BuildingRequest struct {
	ID        uint32  `json:"id"`
	CenterX   float64 `json:"center_x"`
	CenterY   float64 `json:"center_y"`
	Area      float64 `json:"area"`
	BBoxEast  float64 `json:"bbox_east"`
	BBoxWest  float64 `json:"bbox_west"`
	BBoxNorth float64 `json:"bbox_north"`
	BBoxSouth float64 `json:"bbox_south"`
}

// JobRequest is the body of POST /v1/jobs.
type JobRequest struct {
	Agents    []AgentRequest    `json:"agents"`
	Buildings []BuildingRequest `json:"buildings"`

	// UseQuadmap selects quadmap.Map (nearest-by-quadrant-candidate)
	// over repeated kdtree.Tree.Nearest queries. SplitThreshold is
	// required when UseQuadmap is set.
	UseQuadmap     bool `json:"use_quadmap"`
	SplitThreshold int  `json:"split_threshold,omitempty"`
}

func (r BuildingRequest) toIngestion() ingestion.Building {
	return ingestion.Building{
		ID:       r.ID,
		Area:     r.Area,
		Centroid: geo.NewPoint(r.CenterX, r.CenterY),
		Bounds:   geo.NewRegion(r.BBoxEast, r.BBoxWest, r.BBoxNorth, r.BBoxSouth),
	}
}

func (r AgentRequest) toIngestion() ingestion.Agent {
	return ingestion.Agent{
		VehicleID: r.ID,
		Pos:       geo.NewPoint(r.X, r.Y),
	}
}

// JobState is the lifecycle state of a submitted mapping job.
type JobState string

const (
	JobPending JobState = "pending"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// MappingRow is one agent's resolved mapping, as returned by
// GET /v1/jobs/{id}/mappings.
type MappingRow struct {
	AgentID    string  `json:"agent_id"`
	BuildingID uint32  `json:"building_id"`
	Distance   float64 `json:"distance"`
}

// Job tracks one batch mapping request from submission through
// completion. A Job is written only by the goroutine processing it and
// read under JobStore's lock, so fields are never accessed
// concurrently outside that lock.
type Job struct {
	ID          string
	State       JobState
	Error       string
	SubmittedAt time.Time
	CompletedAt time.Time

	AgentCount    int
	BuildingCount int
	Mappings      []MappingRow
	Counts        map[uint32]uint64
}

// Summary is the shape GET /v1/jobs/{id} returns: the job's state and
// a roll-up, without the full per-agent mapping list.
type Summary struct {
	ID            string            `json:"id"`
	State         JobState          `json:"state"`
	Error         string            `json:"error,omitempty"`
	SubmittedAt   time.Time         `json:"submitted_at"`
	CompletedAt   time.Time         `json:"completed_at,omitempty"`
	AgentCount    int               `json:"agent_count"`
	BuildingCount int               `json:"building_count"`
	MappedCount   int               `json:"mapped_count"`
	Counts        map[uint32]uint64 `json:"building_counts,omitempty"`
}

func (j *Job) summary() Summary {
	return Summary{
		ID:            j.ID,
		State:         j.State,
		Error:         j.Error,
		SubmittedAt:   j.SubmittedAt,
		CompletedAt:   j.CompletedAt,
		AgentCount:    j.AgentCount,
		BuildingCount: j.BuildingCount,
		MappedCount:   len(j.Mappings),
		Counts:        j.Counts,
	}
}
