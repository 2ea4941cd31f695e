package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/mlingest/internal/domain/artifactModel"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	// ingestion states, mirrored from the orchestrator
	IngestInit      InternalStatus = "Init"
	IngestStart     InternalStatus = "START"
	IngestFetched   InternalStatus = "FETCHED"
	IngestValidated InternalStatus = "VALIDATED"
	IngestSplit     InternalStatus = "SPLIT"
	IngestPersisted InternalStatus = "PERSISTED"
	IngestMirrored  InternalStatus = "MIRRORED"
	Complete        InternalStatus = "DONE"
	Error           InternalStatus = "FAILED"

	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string                               `json:"id"`
	TraceId     string                               `json:"trace_id"`
	JobType     JobType                              `json:"job_type"`
	JobPayload  JobPayload                           `json:"job_payload"`
	Artifact    *artifactModel.DataIngestionArtifact `json:"artifact,omitempty"`
	ObjectKeys  []string                             `json:"object_keys,omitempty"`
	Error       JobError                             `json:"error,omitempty"`
	CreatedTime time.Time                            `json:"created_time"`
	EndTime     time.Time                            `json:"end_time,omitempty"`
	Status      JobStatus                            `json:"status"`
	CurrentStep InternalStatus                       `json:"current_step"`
}

// JobError mirrors pipelineError.Error without the wrapped cause so it survives JSON.
type JobError struct {
	Kind    string   `json:"kind,omitempty"`
	Message string   `json:"message,omitempty"`
	Origin  string   `json:"origin,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

type JobPayload struct {
	CollectionName string  `json:"collection_name,omitempty"`
	DatabaseName   string  `json:"database_name,omitempty"`
	SplitRatio     float64 `json:"split_ratio,omitempty"`
	Seed           *uint64 `json:"seed,omitempty"`
	ArtifactDir    string  `json:"artifact_dir,omitempty"`
}

type StepEvent struct {
	Step InternalStatus `json:"step"`
	At   time.Time      `json:"at"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// EventStore keeps the ordered state history of each run.
type EventStore interface {
	AppendEvent(ctx context.Context, jobId string, event StepEvent) error
	GetEvents(ctx context.Context, jobId string) ([]StepEvent, error)
}
