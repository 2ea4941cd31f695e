package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"run_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int      `json:"code" example:"500"`
	Kind    string   `json:"kind,omitempty" example:"EmptyDatasetError"`
	Message string   `json:"message" example:"collection Proj1-Data has no documents"`
	Origin  string   `json:"origin,omitempty" example:"ingestion.go:117"`
	Missing []string `json:"missing,omitempty"`
}

type ArtifactResponse struct {
	TrainedFilePath string   `json:"trained_file_path"`
	TestFilePath    string   `json:"test_file_path"`
	ObjectKeys      []string `json:"object_keys,omitempty"`
}

type StepResponse struct {
	Step string    `json:"step"`
	At   time.Time `json:"at"`
}

type Result struct {
	Status      string            `json:"status"`
	CurrentStep string            `json:"current_step,omitempty"`
	History     []StepResponse    `json:"history,omitempty"`
	Artifact    *ArtifactResponse `json:"artifact,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type IngestRequest struct {
	CollectionName string  `json:"collection_name,omitempty"`
	DatabaseName   string  `json:"database_name,omitempty"`
	SplitRatio     float64 `json:"split_ratio,omitempty"`
	Seed           *uint64 `json:"seed,omitempty"`
}
