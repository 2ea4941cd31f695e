package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/data/collectionExport"
	"github.com/akolanti/mlingest/internal/domain/artifactModel"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
	"github.com/akolanti/mlingest/internal/domain/pipelineError"
	"github.com/akolanti/mlingest/internal/metrics"
	"github.com/akolanti/mlingest/internal/pipeline/ingest"
	"github.com/akolanti/mlingest/pkg/logger_i"
)

// Service is the only thing the worker and the CLI call. The private struct
// behind it holds the exporter, the optional mirror and the event log.
type Service interface {
	StartDataIngestion(ctx context.Context, job jobModel.Job) (artifactModel.DataIngestionArtifact, error)
	RunPipeline(ctx context.Context, job jobModel.Job) jobModel.Job
}

// ArtifactMirror is satisfied by *objectStore.Mirror.
type ArtifactMirror interface {
	MirrorArtifact(ctx context.Context, runId string, artifact artifactModel.DataIngestionArtifact) ([]string, error)
}

type service struct {
	exporter collectionExport.Exporter
	mirror   ArtifactMirror
	events   jobModel.EventStore
	now      func() time.Time
	logger   *logger_i.Logger
}

type Option func(*service)

// WithMirror enables uploading the partitions after a successful run.
func WithMirror(mirror ArtifactMirror) Option {
	return func(s *service) {
		s.mirror = mirror
	}
}

func WithEventStore(events jobModel.EventStore) Option {
	return func(s *service) {
		s.events = events
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func NewService(exporter collectionExport.Exporter, opts ...Option) Service {
	s := &service{
		exporter: exporter,
		now:      time.Now,
		logger:   logger_i.NewLogger("Training Pipeline"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) StartDataIngestion(ctx context.Context, job jobModel.Job) (artifactModel.DataIngestionArtifact, error) {
	log := s.logger.With("traceId", job.TraceId, "JobId", job.Id)
	log.Info("Starting data ingestion")

	pipelineConfig := config.NewTrainingPipelineConfig(s.now(), job.JobPayload.ArtifactDir)
	ingestionConfig, err := config.NewIngestionConfig(pipelineConfig, config.IngestionOverrides{
		CollectionName: job.JobPayload.CollectionName,
		DatabaseName:   job.JobPayload.DatabaseName,
		SplitRatio:     job.JobPayload.SplitRatio,
		Seed:           job.JobPayload.Seed,
	})
	if err != nil {
		log.Error("Invalid ingestion config", "error", err)
		return artifactModel.DataIngestionArtifact{}, err
	}

	ingestion := ingest.New(ingestionConfig, s.exporter,
		ingest.WithLogger(log),
		ingest.WithTransitionHook(func(state ingest.State) {
			s.recordStep(ctx, log, job.Id, jobModel.InternalStatus(state))
		}))
	return ingestion.InitiateDataIngestion(ctx)
}

func (s *service) RunPipeline(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	log := s.logger.With("traceId", job.TraceId, "JobId", job.Id)
	job.CurrentStep = jobModel.IngestStart

	artifact, err := s.StartDataIngestion(ctx, job)
	if err != nil {
		return s.jobError(job, err, start, log)
	}
	job.Artifact = &artifact

	if s.mirror != nil {
		keys, err := s.mirror.MirrorArtifact(ctx, job.Id, artifact)
		if err != nil {
			return s.jobError(job, err, start, log)
		}
		job.ObjectKeys = keys
		s.recordStep(ctx, log, job.Id, jobModel.IngestMirrored)
	}

	metrics.CaptureRun(string(jobModel.Complete), time.Since(start))
	job.CurrentStep = jobModel.Complete
	job.Status = jobModel.JobStatusComplete
	log.Info("Pipeline run completed", "artifact", artifact.String())
	return job
}

func (s *service) recordStep(ctx context.Context, log *logger_i.Logger, jobId string, step jobModel.InternalStatus) {
	if s.events == nil {
		return
	}
	if err := s.events.AppendEvent(ctx, jobId, jobModel.StepEvent{Step: step, At: s.now()}); err != nil {
		log.Warn("Failed to record step", "step", step, "error", err)
	}
}

func (s *service) jobError(job jobModel.Job, err error, start time.Time, log *logger_i.Logger) jobModel.Job {
	log.Error("Pipeline run failed", "error", err)
	job.Error = ToJobError(err)
	outcome := job.Error.Kind
	if outcome == "" {
		outcome = "UnknownError"
	}
	metrics.CaptureRun(outcome, time.Since(start))
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Artifact = nil
	return job
}

// ToJobError flattens the outermost pipeline error into its serialisable form.
func ToJobError(err error) jobModel.JobError {
	var pe *pipelineError.Error
	if !errors.As(err, &pe) {
		return jobModel.JobError{Message: err.Error()}
	}
	return jobModel.JobError{
		Kind:    string(pe.Kind),
		Message: pe.Message,
		Origin:  pe.Origin.String(),
		Missing: pe.Missing,
	}
}
