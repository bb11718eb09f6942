package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/server/responses"
	"git.home.luguber.info/inful/pagepublisher/internal/version"
)

// StoreProbe reports whether the document store answers.
type StoreProbe func(ctx context.Context) error

// MonitoringHandlers serves /health.
type MonitoringHandlers struct {
	startTime    time.Time
	targets      []string
	probe        StoreProbe
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates monitoring handlers. probe may be nil.
func NewMonitoringHandlers(targets []string, probe StoreProbe, logger *slog.Logger) *MonitoringHandlers {
	sorted := slices.Clone(targets)
	slices.Sort(sorted)
	return &MonitoringHandlers{
		startTime:    time.Now(),
		targets:      sorted,
		probe:        probe,
		errorAdapter: derrors.NewHTTPErrorAdapter(logger),
	}
}

// HandleHealthCheck reports liveness plus a store probe. A failing store
// degrades the status and answers 503.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
		Targets:   h.targets,
		Store:     "ok",
	}
	status := http.StatusOK
	if h.probe != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.probe(ctx); err != nil {
			health.Status = "degraded"
			health.Store = derrors.Describe(err)
			status = http.StatusServiceUnavailable
		}
	}
	if err := writeJSON(w, status, health); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			derrors.WrapError(err, derrors.CategoryInternal, "failed to write health response").Build())
	}
}
