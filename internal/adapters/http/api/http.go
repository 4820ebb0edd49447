// Package api serves the widget's JSON surface: the dataset registry, chart
// layouts, per-session state and actions, plus health, stats and metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/samemean/internal/adapters/http/middleware"
	"github.com/okian/samemean/internal/adapters/session"
	service "github.com/okian/samemean/internal/app"
	"github.com/okian/samemean/internal/domain/catalog"
	"github.com/okian/samemean/internal/domain/render"
	"github.com/okian/samemean/internal/domain/selection"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Widget instance lifecycle and actions.
	Mount(ctx context.Context, sid string) (string, selection.State, bool, error)
	Apply(ctx context.Context, sid string, action selection.Action, datasetID string) (selection.State, error)
	SessionTTL() time.Duration

	// Read operations expose the registry.
	Datasets() []catalog.Dataset
	Dataset(id string) (catalog.Dataset, error)
	Consistency(id string) (catalog.Consistency, error)
	Chart(id string) (render.ChartView, error)
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	datasetsHandler *DatasetsHandler
	stateHandler    *StateHandler
}

// Option configures the API server.
type Option func(*Server)

// WithCookieName sets the session cookie the state endpoints read and write.
func WithCookieName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.stateHandler.cookieName = name
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		datasetsHandler: NewDatasetsHandler(deps),
		stateHandler:    NewStateHandler(deps, session.DefaultCookieName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", middleware.MetricsFunc(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", middleware.MetricsFunc(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/datasets", middleware.MetricsFunc(s.datasetsHandler.HandleList, "datasets"))
	mux.HandleFunc("GET /api/datasets/{id}", middleware.MetricsFunc(s.datasetsHandler.HandleGet, "dataset"))
	mux.HandleFunc("GET /api/datasets/{id}/consistency",
		middleware.MetricsFunc(s.datasetsHandler.HandleConsistency, "dataset_consistency"))
	mux.HandleFunc("GET /api/datasets/{id}/chart", middleware.MetricsFunc(s.datasetsHandler.HandleChart, "dataset_chart"))

	mux.HandleFunc("GET /api/state", middleware.MetricsFunc(s.stateHandler.HandleGetState, "state"))
	mux.HandleFunc("POST /api/actions", middleware.MetricsFunc(s.stateHandler.HandlePostAction, "actions"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownDataset):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, selection.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
