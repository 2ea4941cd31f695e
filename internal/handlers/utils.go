package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akolanti/mlingest/internal/adapter"
	"github.com/akolanti/mlingest/internal/api"
	"github.com/akolanti/mlingest/internal/config"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateId(id string, traceId string) (jobModel.Job, []jobModel.StepEvent, bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, nil, false
	}
	return GetJobStatus(id, traceId)
}

func validateIngestRequest(request api.IngestRequest) string {
	if request.SplitRatio != 0 && !(request.SplitRatio > 0 && request.SplitRatio < 1) {
		return "split_ratio must be between 0 and 1"
	}
	return ""
}

func traceIdOf(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "traceId", traceIdOf(ctx), "error", ctx.Err())
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}
