package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/akolanti/mlingest/internal/adapter"
	"github.com/akolanti/mlingest/internal/adapter/utils"
	"github.com/akolanti/mlingest/internal/api"
	"github.com/akolanti/mlingest/internal/domain/jobModel"
)

type newJobData struct {
	id      string
	traceId string
	payload jobModel.JobPayload
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// PostIngestHandler queues an ingestion run. Every body field is optional.
func PostIngestHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.IngestRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the ingest handler reader", "error", err)
		}
	}(request.Body)

	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil && err != io.EOF {
		logRH.Warn("Bad Ingest Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}
	if msg := validateIngestRequest(requestData); msg != "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", msg)
		return
	}

	newJob := newJobData{
		id:      utils.NewRunId(),
		traceId: traceIdOf(request.Context()),
		payload: adapter.ToJobPayload(requestData),
	}
	if err := CreateNewJob(newJob); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, newJob.id, "Could not queue ingestion run")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// GetStatusHandler returns the run record with its step history.
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.URLParam(r, "id")
	logRH.Debug("Get Status Request", "URL path", r.URL.Path)

	result, history, isFound := validateId(idString, traceIdOf(r.Context()))
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result, history))
}
