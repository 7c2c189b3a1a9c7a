package visit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedPayload is returned when the pulse body is not parseable JSON.
var ErrMalformedPayload = errors.New("malformed payload")

// InvalidFieldError is returned when a required pulse field is missing or
// has the wrong type. The field name is surfaced to the client.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid or missing field %q", e.Field)
}

// IsValidationError reports whether err is a client-side payload problem
// (as opposed to a storage failure). Validation errors map to HTTP 400.
func IsValidationError(err error) bool {
	var fieldErr *InvalidFieldError
	return errors.Is(err, ErrMalformedPayload) || errors.As(err, &fieldErr)
}

// Pulse is one validated engagement snapshot from the client tracker.
type Pulse struct {
	SessionID      string
	VisitorID      string
	ScrollDepth    int
	TimeSpent      float64
	SectionsViewed map[string]float64
	Referrer       string
	Language       string
	ScreenSize     string
	ViewportSize   string
	UserAgent      string
	StartTime      time.Time
}

// ParsePulse decodes and validates a raw pulse payload. It never touches
// storage: a pulse that fails here leaves no trace.
func ParsePulse(payload []byte) (*Pulse, error) {
	var raw struct {
		SessionID      string             `json:"sessionId"`
		VisitorID      string             `json:"visitorId"`
		ScrollDepth    *float64           `json:"scrollDepth"`
		TimeSpent      float64            `json:"timeSpent"`
		SectionsViewed map[string]float64 `json:"sectionsViewed"`
		Referrer       string             `json:"referrer"`
		Language       string             `json:"language"`
		ScreenSize     string             `json:"screenSize"`
		ViewportSize   string             `json:"viewportSize"`
		UserAgent      string             `json:"userAgent"`
		StartTime      string             `json:"startTime"`
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, &InvalidFieldError{Field: typeErr.Field}
		}
		return nil, ErrMalformedPayload
	}

	if raw.SessionID == "" {
		return nil, &InvalidFieldError{Field: "sessionId"}
	}
	if raw.ScrollDepth == nil {
		return nil, &InvalidFieldError{Field: "scrollDepth"}
	}

	p := &Pulse{
		SessionID:      raw.SessionID,
		VisitorID:      raw.VisitorID,
		ScrollDepth:    int(*raw.ScrollDepth),
		TimeSpent:      raw.TimeSpent,
		SectionsViewed: raw.SectionsViewed,
		Referrer:       raw.Referrer,
		Language:       raw.Language,
		ScreenSize:     raw.ScreenSize,
		ViewportSize:   raw.ViewportSize,
		UserAgent:      raw.UserAgent,
	}
	if p.ScrollDepth < 0 {
		p.ScrollDepth = 0
	}
	if p.TimeSpent < 0 {
		p.TimeSpent = 0
	}

	// startTime is advisory; an unparseable value is dropped, not rejected.
	if raw.StartTime != "" {
		if ts, err := time.Parse(time.RFC3339, raw.StartTime); err == nil {
			p.StartTime = ts
		}
	}

	return p, nil
}
