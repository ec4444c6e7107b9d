package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the spatial mapping service.
type Metrics struct {
	// HTTP request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// k-d tree build metrics
	KDTreeBuildTotal    prometheus.Counter
	KDTreeBuildDuration prometheus.Histogram
	KDTreeSize          prometheus.Gauge

	// k-d tree query metrics
	KNNQueryTotal    prometheus.Counter
	KNNQueryDuration prometheus.Histogram
	KNNVisitedNodes  prometheus.Histogram

	// QuadMap metrics
	QuadMapLeafTotal     prometheus.Counter
	QuadMapMapperCalls   prometheus.Counter
	QuadMapBuildDuration prometheus.Histogram

	// Batch job metrics
	JobsSubmittedTotal prometheus.Counter
	JobsCompletedTotal prometheus.Counter
	JobsFailedTotal    prometheus.Counter
	JobDuration        prometheus.Histogram
	JobAgentsMapped    prometheus.Histogram
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentmap_requests_total",
				Help: "Total number of HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentmap_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentmap_request_errors_total",
				Help: "Total number of HTTP request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		KDTreeBuildTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentmap_kdtree_builds_total",
				Help: "Total number of k-d tree builds",
			},
		),
		KDTreeBuildDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentmap_kdtree_build_duration_seconds",
				Help:    "k-d tree build duration in seconds",
				Buckets: []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30},
			},
		),
		KDTreeSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentmap_kdtree_size",
				Help: "Number of buildings in the most recently built k-d tree",
			},
		),

		KNNQueryTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentmap_knn_queries_total",
				Help: "Total number of nearest-neighbor queries",
			},
		),
		KNNQueryDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentmap_knn_query_duration_seconds",
				Help:    "Nearest-neighbor query duration in seconds",
				Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
			},
		),
		KNNVisitedNodes: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentmap_knn_visited_nodes",
				Help:    "Number of tree nodes visited per nearest-neighbor query",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
			},
		),

		QuadMapLeafTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentmap_quadmap_leaves_total",
				Help: "Total number of quadrant leaves resolved directly by the mapper function",
			},
		),
		QuadMapMapperCalls: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentmap_quadmap_mapper_calls_total",
				Help: "Total number of mapper invocations across all QuadMap runs",
			},
		),
		QuadMapBuildDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentmap_quadmap_duration_seconds",
				Help:    "QuadMap co-partition duration in seconds",
				Buckets: []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30},
			},
		),

		JobsSubmittedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentmap_jobs_submitted_total",
				Help: "Total number of batch mapping jobs submitted",
			},
		),
		JobsCompletedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentmap_jobs_completed_total",
				Help: "Total number of batch mapping jobs completed successfully",
			},
		),
		JobsFailedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "agentmap_jobs_failed_total",
				Help: "Total number of batch mapping jobs that failed",
			},
		),
		JobDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentmap_job_duration_seconds",
				Help:    "Batch mapping job duration in seconds",
				Buckets: []float64{.01, .1, .5, 1, 5, 10, 30, 60, 300},
			},
		),
		JobAgentsMapped: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentmap_job_agents_mapped",
				Help:    "Number of agents mapped per completed job",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
			},
		),
	}
}

// RecordRequest records an HTTP request with duration and status.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records an HTTP request error.
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordKDTreeBuild records a k-d tree build.
func (m *Metrics) RecordKDTreeBuild(duration time.Duration, size int) {
	m.KDTreeBuildTotal.Inc()
	m.KDTreeBuildDuration.Observe(duration.Seconds())
	m.KDTreeSize.Set(float64(size))
}

// RecordKNNQuery records a single nearest-neighbor query.
func (m *Metrics) RecordKNNQuery(duration time.Duration, visitedNodes int) {
	m.KNNQueryTotal.Inc()
	m.KNNQueryDuration.Observe(duration.Seconds())
	m.KNNVisitedNodes.Observe(float64(visitedNodes))
}

// RecordQuadMapRun records one QuadMap co-partition run.
func (m *Metrics) RecordQuadMapRun(duration time.Duration, leaves, mapperCalls int) {
	m.QuadMapBuildDuration.Observe(duration.Seconds())
	m.QuadMapLeafTotal.Add(float64(leaves))
	m.QuadMapMapperCalls.Add(float64(mapperCalls))
}

// RecordJobSubmitted records a newly submitted batch job.
func (m *Metrics) RecordJobSubmitted() {
	m.JobsSubmittedTotal.Inc()
}

// RecordJobCompleted records a successfully completed batch job.
func (m *Metrics) RecordJobCompleted(duration time.Duration, agentsMapped int) {
	m.JobsCompletedTotal.Inc()
	m.JobDuration.Observe(duration.Seconds())
	m.JobAgentsMapped.Observe(float64(agentsMapped))
}

// RecordJobFailed records a failed batch job.
func (m *Metrics) RecordJobFailed(duration time.Duration) {
	m.JobsFailedTotal.Inc()
	m.JobDuration.Observe(duration.Seconds())
}
