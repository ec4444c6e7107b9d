package rest

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urbantraffic/agentmap/internal/ingestion"
	"github.com/urbantraffic/agentmap/pkg/config"
	"github.com/urbantraffic/agentmap/pkg/kdtree"
	"github.com/urbantraffic/agentmap/pkg/observability"
	"github.com/urbantraffic/agentmap/pkg/quadmap"
)

// JobStore holds every job this process has accepted, keyed by ID: a
// single mutex-protected map rather than a namespace-per-index scheme,
// since a mapping job owns its own building set outright.
type JobStore struct {
	cfg     *config.IndexConfig
	metrics *observability.Metrics
	logger  *observability.Logger

	mu      sync.RWMutex
	jobs    map[string]*Job
	counter uint64
}

// NewJobStore creates an empty JobStore.
func NewJobStore(cfg *config.IndexConfig, metrics *observability.Metrics, logger *observability.Logger) *JobStore {
	return &JobStore{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		jobs:    make(map[string]*Job),
	}
}

// Submit records a new pending job and starts processing it
// asynchronously, returning the job ID immediately.
func (s *JobStore) Submit(req JobRequest) (string, error) {
	if len(req.Agents) == 0 {
		return "", fmt.Errorf("rest: job has no agents")
	}
	if len(req.Buildings) == 0 {
		return "", fmt.Errorf("rest: job has no buildings")
	}
	if req.UseQuadmap && req.SplitThreshold <= 0 {
		return "", fmt.Errorf("rest: split_threshold must be positive when use_quadmap is set")
	}

	id := s.nextID()
	job := &Job{
		ID:            id,
		State:         JobPending,
		SubmittedAt:   time.Now(),
		AgentCount:    len(req.Agents),
		BuildingCount: len(req.Buildings),
	}

	s.mu.Lock()
	s.jobs[id] = job
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordJobSubmitted()
	}

	go s.process(job, req)

	return id, nil
}

// Get returns a snapshot of the job with id, if any, copied under the
// store's lock so callers can read its fields without racing process.
func (s *JobStore) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// Len returns the number of jobs this store has ever accepted.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

func (s *JobStore) nextID() string {
	n := atomic.AddUint64(&s.counter, 1)
	return fmt.Sprintf("job-%d", n)
}

func (s *JobStore) setState(job *Job, state JobState) {
	s.mu.Lock()
	job.State = state
	s.mu.Unlock()
}

// process runs one job to completion: it builds the chosen index,
// maps every agent, tallies per-building counts, and records the
// result on job. Any panic from the core (NaN coordinates, a
// degenerate region) is recovered here and surfaces as JobFailed,
// mirroring cmd/agentmap's "a panic during batch processing is a bug,
// not an expected outcome" stance while keeping one bad submission
// from taking down the process.
func (s *JobStore) process(job *Job, req JobRequest) {
	s.setState(job, JobRunning)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			job.State = JobFailed
			job.Error = fmt.Sprintf("%v", r)
			job.CompletedAt = time.Now()
			s.mu.Unlock()
			if s.metrics != nil {
				s.metrics.RecordJobFailed(time.Since(start))
			}
			if s.logger != nil {
				s.logger.Error("job panicked", map[string]interface{}{"job": job.ID, "panic": r})
			}
		}
	}()

	agents := make([]ingestion.Agent, len(req.Agents))
	for i, a := range req.Agents {
		agents[i] = a.toIngestion()
	}
	buildings := make([]ingestion.Building, len(req.Buildings))
	for i, b := range req.Buildings {
		buildings[i] = b.toIngestion()
	}

	var mappings []ingestion.Mapping
	if req.UseQuadmap {
		mappings = s.mapWithQuadmap(req.SplitThreshold, agents, buildings)
	} else {
		workers := 8
		if s.cfg != nil && s.cfg.WorkerPoolSize > 0 {
			workers = s.cfg.WorkerPoolSize
		}
		buildStart := time.Now()
		tree := kdtree.Build(buildings)
		if s.metrics != nil {
			s.metrics.RecordKDTreeBuild(time.Since(buildStart), tree.Size())
		}
		mappings = ingestion.ComputeMappings(agents, tree, workers, s.metrics)
	}

	counts := ingestion.CountByBuilding(mappings, func(m ingestion.Mapping) uint32 {
		return m.Building.ID
	})

	rows := make([]MappingRow, len(mappings))
	for i, m := range mappings {
		rows[i] = MappingRow{
			AgentID:    m.Agent.VehicleID,
			BuildingID: m.Building.ID,
			Distance:   m.Distance,
		}
	}

	s.mu.Lock()
	job.State = JobDone
	job.Mappings = rows
	job.Counts = counts
	job.CompletedAt = time.Now()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordJobCompleted(time.Since(start), len(rows))
	}
	if s.logger != nil {
		s.logger.Info("job completed", map[string]interface{}{
			"job": job.ID, "agents": len(agents), "mapped": len(rows),
		})
	}
}

func (s *JobStore) mapWithQuadmap(splitThreshold int, agents []ingestion.Agent, buildings []ingestion.Building) []ingestion.Mapping {
	buildStart := time.Now()
	raw, leaves := quadmap.Map(splitThreshold, agents, buildings, nearestBuilding)
	if s.metrics != nil {
		s.metrics.RecordQuadMapRun(time.Since(buildStart), leaves, len(raw))
	}

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
