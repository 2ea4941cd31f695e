package job

import (
	"sync/atomic"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
	"github.com/akolanti/mlingest/internal/metrics"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

var logQ = logger_i.NewLogger("RunQueue")

// Service is the run queue shared by the HTTP handlers and the worker pool,
// together with the stores both sides read and write.
type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	EventStore        jobModel.EventStore

	runsPerNewWorker int64
}

type ServiceConfig struct {
	QueueSize        int
	RunsPerNewWorker int64
	JobStore         jobModel.JobStore
	EventStore       jobModel.EventStore
}

func InitJobService(cfg ServiceConfig) *Service {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = config.BufferLimit
	}
	return &Service{
		JobChannel:        make(chan jobModel.Job, cfg.QueueSize),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          cfg.JobStore,
		EventStore:        cfg.EventStore,
		runsPerNewWorker:  cfg.RunsPerNewWorker,
	}
}

// Enqueue blocks while the queue is full. Every runsPerNewWorker-th run asks
// the dispatcher for one more worker.
func (s *Service) Enqueue(run jobModel.Job) {
	metrics.IncrementJobsInQueue()
	s.JobChannel <- run
	logQ.Info("Queued ingestion run", "jobId", run.Id)

	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%s.workerThreshold() == 0 {
		s.requestWorker(count)
	}
}

func (s *Service) workerThreshold() int64 {
	if s.runsPerNewWorker > 0 {
		return s.runsPerNewWorker
	}
	return config.RequestsPerNewWorkerCount
}

// a dropped signal is fine, the dispatcher is already growing the pool
func (s *Service) requestWorker(count int64) {
	metrics.StartDispatcherSignalCount()
	select {
	case s.DispatcherChannel <- true:
		logQ.Debug("Requested worker", "requestCount", count)
	default:
		logQ.Debug("Dispatcher busy, signal dropped", "requestCount", count)
	}
}
