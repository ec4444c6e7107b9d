package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/urbantraffic/agentmap/pkg/config"
)

func testStore() *JobStore {
	cfg := config.Default()
	return NewJobStore(&cfg.Index, nil, nil)
}

func sampleRequest() JobRequest {
	return JobRequest{
		Agents: []AgentRequest{
			{ID: "a1", X: 1, Y: 1},
			{ID: "a2", X: 99, Y: 99},
		},
		Buildings: []BuildingRequest{
			{ID: 1, CenterX: 0, CenterY: 0, Area: 10, BBoxEast: 5, BBoxWest: -5, BBoxNorth: 5, BBoxSouth: -5},
			{ID: 2, CenterX: 100, CenterY: 100, Area: 10, BBoxEast: 105, BBoxWest: 95, BBoxNorth: 105, BBoxSouth: 95},
		},
	}
}

func waitForJob(t *testing.T, store *JobStore, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := store.Get(id)
		if !ok {
			t.Fatalf("job %s not found", id)
		}
		if job.State == JobDone || job.State == JobFailed {
			return job
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("job %s did not complete in time", id)
	return nil
}

func TestSubmitJobAndRetrieveMappings(t *testing.T) {
	store := testStore()
	h := NewHandler(store)

	body, _ := json.Marshal(sampleRequest())
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.SubmitJob(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var submitted map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("could not decode submit response: %v", err)
	}

	job := waitForJob(t, store, submitted["id"])
	if job.State != JobDone {
		t.Fatalf("expected job done, got %s (error: %s)", job.State, job.Error)
	}
	if len(job.Mappings) != 2 {
		t.Fatalf("expected 2 mappings, got %d", len(job.Mappings))
	}

	statusReq := httptest.NewRequest(http.MethodGet, "/v1/jobs/"+submitted["id"], nil)
	statusRec := httptest.NewRecorder()
	h.GetJob(statusRec, statusReq)

	var summary Summary
	if err := json.Unmarshal(statusRec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("could not decode status response: %v", err)
	}
	if summary.MappedCount != 2 {
		t.Fatalf("expected mapped_count 2, got %d", summary.MappedCount)
	}

	mappingsReq := httptest.NewRequest(http.MethodGet, "/v1/jobs/"+submitted["id"]+"/mappings", nil)
	mappingsRec := httptest.NewRecorder()
	h.GetMappings(mappingsRec, mappingsReq)

	var rows []MappingRow
	if err := json.Unmarshal(mappingsRec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("could not decode mappings response: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 mapping rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.AgentID == "a1" && r.BuildingID != 1 {
			t.Errorf("expected a1 mapped to building 1, got %d", r.BuildingID)
		}
		if r.AgentID == "a2" && r.BuildingID != 2 {
			t.Errorf("expected a2 mapped to building 2, got %d", r.BuildingID)
		}
	}
}

func TestSubmitJobRejectsEmptyAgents(t *testing.T) {
	store := testStore()
	h := NewHandler(store)

	req := JobRequest{Buildings: sampleRequest().Buildings}
	body, _ := json.Marshal(req)

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.SubmitJob(rec, httpReq)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty agents, got %d", rec.Code)
	}
}

func TestGetJobNotFound(t *testing.T) {
	store := testStore()
	h := NewHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/missing", nil)
	rec := httptest.NewRecorder()
	h.GetJob(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMappingsNotReadyBeforeDone(t *testing.T) {
	store := testStore()
	store.mu.Lock()
	store.jobs["pending-job"] = &Job{ID: "pending-job", State: JobRunning}
	store.mu.Unlock()

	h := NewHandler(store)
	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/pending-job/mappings", nil)
	rec := httptest.NewRecorder()
	h.GetMappings(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a running job, got %d", rec.Code)
	}
}

func TestHealthAndStats(t *testing.T) {
	store := testStore()
	h := NewHandler(store)

	healthRec := httptest.NewRecorder()
	h.HealthCheck(healthRec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	if healthRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health check, got %d", healthRec.Code)
	}

	statsRec := httptest.NewRecorder()
	h.GetStats(statsRec, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	if statsRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from stats, got %d", statsRec.Code)
	}
}
