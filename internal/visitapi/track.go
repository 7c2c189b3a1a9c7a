package visitapi

import (
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/beacon/internal/geo"
	"github.com/linnemanlabs/beacon/internal/visit"
)

func (a *API) handleTrack(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": visit.ErrMalformedPayload.Error()})
		return
	}

	res, err := a.svc.Ingest(r.Context(), body, geo.HintsFromRequest(r))
	if err != nil {
		if visit.IsValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		a.logger.Error(r.Context(), err, "pulse ingest failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Internal Server Error"})
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("beacon.session.id", res.Session.SessionID),
		attribute.String("beacon.classification", string(res.Classification)),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Tracked successfully",
		"id":         res.Session.SessionID,
		"visitCount": res.Session.VisitCount,
	})
}
