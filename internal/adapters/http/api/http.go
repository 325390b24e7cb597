// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	repository "github.com/okian/keyloop/internal/adapters/repository"
	"github.com/okian/keyloop/internal/domain/model"
	"github.com/okian/keyloop/internal/domain/rig"
	"github.com/okian/keyloop/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Enqueue pushes a keying request for async processing. Returns the
	// assigned request id and false on backpressure.
	Enqueue(ctx context.Context, req model.KeyRequest) (string, bool)

	// Curves exposes the stored animation data for an object.
	Curves(ctx context.Context, objectID string) ([]CurveEntry, error)

	// Object management.
	AddObject(ctx context.Context, o *rig.Object)
	Object(ctx context.Context, id string) (*rig.Object, error)
	RemoveObject(ctx context.Context, id string)

	// ConfigureCycle marks the object's action as cyclic over [start, end].
	ConfigureCycle(ctx context.Context, objectID string, start, end float64) error
}

// CurveEntry mirrors the read shape returned by curve queries.
type CurveEntry = types.CurveEntry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	keyframesHandler *KeyframesHandler
	objectsHandler   *ObjectsHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		keyframesHandler: NewKeyframesHandler(deps),
		objectsHandler:   NewObjectsHandler(deps),
		dashboardHandler: newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/keyframes", MetricsMiddleware(s.keyframesHandler.HandlePostKeyframe, "keyframes"))
	mux.HandleFunc("/v1/objects", MetricsMiddleware(s.objectsHandler.HandleObjects, "objects"))
	mux.HandleFunc("/v1/objects/", MetricsMiddleware(s.objectsHandler.HandleObjectSubtree, "objects"))
}

type ackResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
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

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, rig.ErrUnknownObject)
}
