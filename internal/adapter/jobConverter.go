package adapter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/akolanti/mlingest/internal/api"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToJobPayload(request api.IngestRequest) jobModel.JobPayload {
	return jobModel.JobPayload{
		CollectionName: request.CollectionName,
		DatabaseName:   request.DatabaseName,
		SplitRatio:     request.SplitRatio,
		Seed:           request.Seed,
	}
}

func ToAPIResponse(job jobModel.Job, history []jobModel.StepEvent) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Kind != "" || job.Error.Message != "" {
		errorPtr = &api.JobOutgoingError{
			Code:    http.StatusInternalServerError,
			Kind:    job.Error.Kind,
			Message: job.Error.Message,
			Origin:  job.Error.Origin,
			Missing: job.Error.Missing,
		}
	}

	result := api.Result{
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		History:     ToStepResponses(history),
		Artifact:    ToArtifactResponse(job),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToArtifactResponse(job jobModel.Job) *api.ArtifactResponse {
	if job.Artifact == nil {
		return nil
	}
	return &api.ArtifactResponse{
		TrainedFilePath: job.Artifact.TrainedFilePath,
		TestFilePath:    job.Artifact.TestFilePath,
		ObjectKeys:      job.ObjectKeys,
	}
}

func ToStepResponses(history []jobModel.StepEvent) []api.StepResponse {
	if len(history) == 0 {
		return nil
	}
	steps := make([]api.StepResponse, 0, len(history))
	for _, event := range history {
		steps = append(steps, api.StepResponse{Step: string(event.Step), At: event.At})
	}
	return steps
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
		},
	}
}
