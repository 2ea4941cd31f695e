package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/job"
	"github.com/akolanti/mlingest/internal/metrics"
	"github.com/akolanti/mlingest/internal/pipeline"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

var (
	_jobService         *job.Service
	stopWorkerChannel   chan bool
	workerWaitGroup     *sync.WaitGroup
	dispatcherChannel   chan bool
	currentWorkerCount  int64
	logger              = logger_i.NewLogger("WorkerPool")
	_pipelineService    pipeline.Service
	minWorkerCount      = config.MinWorkerCount
	idleWorkerTimeout   = config.IdleWorkerTimeout
	runTimeout          = config.RunTimeout
	jobStateSaveTimeout = config.JobStateSaveTimeout
)
	_pipelineService   pipeline.Service
	minWorkerCount     = config.MinWorkerCount
	idleWorkerTimeout  = config.IdleWorkerTimeout
	runTimeout         = config.RunTimeout
	jobStateSaveTimeout = config.JobStateSaveTimeout
)

func InitServices(jobService *job.Service, pipelineService pipeline.Service) {
	_jobService = jobService
	_pipelineService = pipelineService
	dispatcherChannel = jobService.DispatcherChannel
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger.Info("Initializing worker pool")
	for i := int64(0); i < minWorkerCount; i++ {
		createWorker()
	}
	go dispatcher()
}

func dispatcher() {
	logger.Info("Dispatcher started")
	for {
		select {
		case <-dispatcherChannel:
			if atomic.LoadInt64(&currentWorkerCount) < config.MaxWorkerCount {
				logger.Info("Creating new worker", "WorkerCount", atomic.LoadInt64(&currentWorkerCount))
				createWorker()
			}
		case <-stopWorkerChannel:
			logger.Info("Dispatcher stopped")
			return
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go worker()
	logger.Debug("Created new worker")
}

func worker() {
	idle := time.NewTimer(idleWorkerTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-_jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			executeJob(currentJob)
			resetTimer(idle, idleWorkerTimeout)

		case <-stopWorkerChannel:
			atomic.AddInt64(&currentWorkerCount, -1)
			removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if tryRetire() {
				removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(idleWorkerTimeout)
		}
	}
}

// tryRetire keeps at least minWorkerCount workers alive.
func tryRetire() bool {
	for {
		count := atomic.LoadInt64(&currentWorkerCount)
		if count <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, count, count-1) {
			return true
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
