package visit

import (
	"errors"
	"testing"
)

func TestParsePulse_Valid(t *testing.T) {
	t.Parallel()

	payload := []byte(`{
		"sessionId": "sess-1",
		"visitorId": "vis-1",
		"scrollDepth": 75,
		"timeSpent": 42.5,
		"sectionsViewed": {"hero": 10.2, "projects": 3},
		"referrer": "https://example.com",
		"userAgent": "Mozilla/5.0",
		"startTime": "2026-08-01T12:00:00Z"
	}`)

	p, err := ParsePulse(payload)
	if err != nil {
		t.Fatalf("ParsePulse: %v", err)
	}
	if p.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want %q", p.SessionID, "sess-1")
	}
	if p.VisitorID != "vis-1" {
		t.Errorf("VisitorID = %q, want %q", p.VisitorID, "vis-1")
	}
	if p.ScrollDepth != 75 {
		t.Errorf("ScrollDepth = %d, want 75", p.ScrollDepth)
	}
	if p.TimeSpent != 42.5 {
		t.Errorf("TimeSpent = %v, want 42.5", p.TimeSpent)
	}
	if got := p.SectionsViewed["hero"]; got != 10.2 {
		t.Errorf("SectionsViewed[hero] = %v, want 10.2", got)
	}
	if p.StartTime.IsZero() {
		t.Error("StartTime not parsed")
	}
}

func TestParsePulse_MalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := ParsePulse([]byte(`{bad`))
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
	if !IsValidationError(err) {
		t.Error("malformed payload should be a validation error")
	}
}

func TestParsePulse_EmptyBody(t *testing.T) {
	t.Parallel()

	_, err := ParsePulse(nil)
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
}

func TestParsePulse_MissingSessionID(t *testing.T) {
	t.Parallel()

	_, err := ParsePulse([]byte(`{"scrollDepth": 10}`))

	var fieldErr *InvalidFieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("err = %v, want InvalidFieldError", err)
	}
	if fieldErr.Field != "sessionId" {
		t.Errorf("Field = %q, want %q", fieldErr.Field, "sessionId")
	}
}

func TestParsePulse_MissingScrollDepth(t *testing.T) {
	t.Parallel()

	_, err := ParsePulse([]byte(`{"sessionId": "sess-1"}`))

	var fieldErr *InvalidFieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("err = %v, want InvalidFieldError", err)
	}
	if fieldErr.Field != "scrollDepth" {
		t.Errorf("Field = %q, want %q", fieldErr.Field, "scrollDepth")
	}
}

func TestParsePulse_NonNumericScrollDepth(t *testing.T) {
	t.Parallel()

	_, err := ParsePulse([]byte(`{"sessionId": "sess-1", "scrollDepth": "deep"}`))

	var fieldErr *InvalidFieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("err = %v, want InvalidFieldError", err)
	}
	if fieldErr.Field != "scrollDepth" {
		t.Errorf("Field = %q, want %q", fieldErr.Field, "scrollDepth")
	}
	if !IsValidationError(err) {
		t.Error("type mismatch should be a validation error")
	}
}

func TestParsePulse_ClampsNegatives(t *testing.T) {
	t.Parallel()

	p, err := ParsePulse([]byte(`{"sessionId": "sess-1", "scrollDepth": -5, "timeSpent": -1}`))
	if err != nil {
		t.Fatalf("ParsePulse: %v", err)
	}
	if p.ScrollDepth != 0 {
		t.Errorf("ScrollDepth = %d, want 0", p.ScrollDepth)
	}
	if p.TimeSpent != 0 {
		t.Errorf("TimeSpent = %v, want 0", p.TimeSpent)
	}
}

func TestParsePulse_BadStartTimeDropped(t *testing.T) {
	t.Parallel()

	p, err := ParsePulse([]byte(`{"sessionId": "sess-1", "scrollDepth": 10, "startTime": "yesterday"}`))
	if err != nil {
		t.Fatalf("ParsePulse: %v", err)
	}
	if !p.StartTime.IsZero() {
		t.Errorf("StartTime = %v, want zero", p.StartTime)
	}
}
