package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of ingestion runs waiting for a worker",
})

var dispatcherSignalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var ingestionRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingestion_runs_total",
	Help: "Finished ingestion runs labelled by outcome (DONE or the error kind)",
}, []string{"status"})

var ingestionRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingestion_rows_total",
	Help: "Rows written per partition",
}, []string{"partition"})

var stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ingestion_stage_duration_seconds",
	Help:    "Time spent reaching each ingestion state.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30, 60},
}, []string{"stage"})

var mongoClientsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "mongo_clients_created_total",
	Help: "Mongo clients created by the connection manager; stays at 1 while the client is reused",
})

var runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ingestion_run_duration_seconds",
	Help:    "Total time spent in one ingestion run.",
	Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 300},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func IncrementMongoClientsCreated() {
	mongoClientsCreated.Inc()
}

func CaptureRun(status string, timeElapsed time.Duration) {
	ingestionRunsTotal.WithLabelValues(status).Inc()
	runDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}

func CaptureRows(partition string, rows int) {
	ingestionRowsTotal.WithLabelValues(partition).Add(float64(rows))
}

func CaptureStage(stage string, timeElapsed time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(timeElapsed.Seconds())
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
