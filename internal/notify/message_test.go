package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/beacon/internal/visit"
)

func testSession() *visit.Session {
	return &visit.Session{
		SessionID:   "sess-1",
		VisitCount:  3,
		ScrollDepth: 85,
		TimeSpent:   120,
		SectionsViewed: map[string]float64{
			"projects":   30,
			"experience": 12,
			"footer":     1.5,
		},
		Country:     "Netherlands",
		City:        "Amsterdam",
		UserAgent:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		Referrer:    "https://linkedin.com",
		LastUpdated: time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestFormat_NewVisit(t *testing.T) {
	t.Parallel()

	subject, body, ok := Format(visit.ClassNewVisit, testSession())
	if !ok {
		t.Fatal("Format returned ok=false for new visit")
	}
	if subject != "Resume visit #3 from Amsterdam" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{
		"Visitor: #3",
		"Location: Amsterdam, Netherlands",
		"Device: Mac",
		"Referrer: https://linkedin.com",
		"Time: 2026-08-01 12:30 UTC",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestFormat_NewVisitOmitsEmptyReferrer(t *testing.T) {
	t.Parallel()

	s := testSession()
	s.Referrer = ""
	_, body, _ := Format(visit.ClassNewVisit, s)
	if strings.Contains(body, "Referrer:") {
		t.Errorf("body contains empty referrer line:\n%s", body)
	}
}

func TestFormat_HighInterest(t *testing.T) {
	t.Parallel()

	subject, body, ok := Format(visit.ClassHighInterest, testSession())
	if !ok {
		t.Fatal("Format returned ok=false for high interest")
	}
	if subject != "High interest (Amsterdam)" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{
		"Time on page: 120s",
		"Scroll depth: 85%",
		"Sections: projects, experience",
		"Location: Amsterdam, Netherlands",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	// footer only got 1.5s of dwell
	if strings.Contains(body, "footer") {
		t.Errorf("body lists glanced-at section:\n%s", body)
	}
}

func TestFormat_ContinuationProducesNothing(t *testing.T) {
	t.Parallel()

	if _, _, ok := Format(visit.ClassContinuation, testSession()); ok {
		t.Error("Format returned ok=true for continuation")
	}
	if _, _, ok := Format(visit.Classification("bogus"), testSession()); ok {
		t.Error("Format returned ok=true for unknown classification")
	}
}

func TestDwelledSections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sections map[string]float64
		want     string
	}{
		{"nil map", nil, "none"},
		{"all below cutoff", map[string]float64{"hero": 2, "footer": 4.9}, "none"},
		{"ordered longest first", map[string]float64{"hero": 6, "projects": 30, "skills": 12}, "projects, skills, hero"},
		{"ties break by name", map[string]float64{"b": 10, "a": 10}, "a, b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := dwelledSections(tc.sections); got != tc.want {
				t.Errorf("dwelledSections = %q, want %q", got, tc.want)
			}
		})
	}
}
