package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	jobmodel "github.com/akolanti/mlingest/internal/domain/jobModel"
	"github.com/akolanti/mlingest/internal/metrics"
)

func executeJob(job jobmodel.Job) {
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, runTimeout)
	defer cancel()
	log := logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job")

	job.Status = jobmodel.JobStatusRunning
	saveJobState(ctx, job)

	job = _pipelineService.RunPipeline(ctx, job)

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
	}
	// the run context may already be past its deadline
	saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(ctxTrace), jobStateSaveTimeout)
	defer cancelSave()
	saveJobState(saveCtx, job)
	log.Info("Job finished", "status", job.Status, "step", job.CurrentStep)
}

// removeWorker expects the caller to have already decremented currentWorkerCount.
func removeWorker(reason string) {
	workerWaitGroup.Done()
	logger.Info("Removed worker", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}

func saveJobState(ctx context.Context, job jobmodel.Job) {
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job state", "jobId", job.Id, "err", err)
	}
}
