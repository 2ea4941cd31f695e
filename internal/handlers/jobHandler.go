package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
	"github.com/akolanti/mlingest/internal/job"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           = logger_i.NewLogger("JobHandler")
	logRH           = logger_i.NewLogger("RequestHandler")
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}
		logJH.Info("Starting job handler")
	})
}

// CreateNewJob saves the queued run and hands it to the worker pool.
func CreateNewJob(newJob newJobData) error {
	log := logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	log.Info("To create new ingestion run")

	_job := jobModel.Job{
		Id:          newJob.id,
		TraceId:     newJob.traceId,
		JobType:     jobModel.JobTypeIngest,
		JobPayload:  newJob.payload,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
	}

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, newJob.traceId)
	if err := handlerInstance.service.JobStore.SaveJob(ctx, _job); err != nil {
		log.Error("Failed to save queued job", "error", err)
		return err
	}
	handlerInstance.service.Enqueue(_job)
	return nil
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, history []jobModel.StepEvent, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance == nil {
		return result, nil, false
	}
	result, isFound = handlerInstance.service.JobStore.GetJob(ctxC, id)
	if !isFound || handlerInstance.service.EventStore == nil {
		return result, nil, isFound
	}
	history, err := handlerInstance.service.EventStore.GetEvents(ctxC, id)
	if err != nil {
		logJH.Warn("Could not load step history", "jobId", id, "error", err)
	}
	return result, history, true
}
