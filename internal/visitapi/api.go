// Package visitapi exposes the public tracking endpoints.
package visitapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/beacon/internal/geo"
	"github.com/linnemanlabs/beacon/internal/visit"
)

// VisitService defines the business operations visitapi needs.
type VisitService interface {
	Ingest(ctx context.Context, payload []byte, hints geo.Hints) (*visit.IngestResult, error)
	Recent(ctx context.Context) ([]*visit.Session, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    VisitService
}

// New creates a new API handler.
func New(logger log.Logger, svc VisitService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("visit service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Post("/track", a.handleTrack)
	r.Get("/stats", a.handleStats)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.Recent(r.Context())
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list recent sessions")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal Server Error"})
		return
	}
	if items == nil {
		items = []*visit.Session{}
	}

	// total reflects the returned page only, not a global count; a true
	// total would need a separate counter.
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(items),
		"items": items,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
