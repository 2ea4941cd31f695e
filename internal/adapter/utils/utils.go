package utils

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRunId returns a time-ordered id so run records and artifact keys sort by creation.
func NewRunId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func NewTraceId() string {
	return uuid.NewString()
}

func URLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

// NewBaseRouter returns a router that recovers from handler panics and serves /metrics.
func NewBaseRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Handle("/metrics", promhttp.Handler())
	return router
}
