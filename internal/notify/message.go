package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linnemanlabs/beacon/internal/visit"
)

// minSectionDwell filters the section listing in high-interest alerts;
// sections glanced at for less than this are scroll-through noise.
const minSectionDwell = 5.0

// Format renders the subject and plain-text body for a classification.
// The switch is exhaustive over the closed classification set; ok is false
// for continuations and anything unrecognized.
func Format(class visit.Classification, s *visit.Session) (subject, body string, ok bool) {
	switch class {
	case visit.ClassNewVisit:
		return newVisitMessage(s)
	case visit.ClassHighInterest:
		return highInterestMessage(s)
	case visit.ClassContinuation:
		return "", "", false
	default:
		return "", "", false
	}
}

func newVisitMessage(s *visit.Session) (string, string, bool) {
	subject := fmt.Sprintf("Resume visit #%d from %s", s.VisitCount, s.City)

	var b strings.Builder
	fmt.Fprintf(&b, "New resume visit\n")
	fmt.Fprintf(&b, "Visitor: #%d\n", s.VisitCount)
	fmt.Fprintf(&b, "Location: %s\n", location(s))
	fmt.Fprintf(&b, "Device: %s\n", DeviceClass(s.UserAgent))
	if s.Referrer != "" {
		fmt.Fprintf(&b, "Referrer: %s\n", s.Referrer)
	}
	fmt.Fprintf(&b, "Time: %s", s.LastUpdated.UTC().Format("2006-01-02 15:04 UTC"))

	return subject, b.String(), true
}

func highInterestMessage(s *visit.Session) (string, string, bool) {
	subject := fmt.Sprintf("High interest (%s)", s.City)

	var b strings.Builder
	fmt.Fprintf(&b, "High interest detected\n")
	fmt.Fprintf(&b, "Time on page: %.0fs\n", s.TimeSpent)
	fmt.Fprintf(&b, "Scroll depth: %d%%\n", s.ScrollDepth)
	fmt.Fprintf(&b, "Sections: %s\n", dwelledSections(s.SectionsViewed))
	fmt.Fprintf(&b, "Location: %s", location(s))

	return subject, b.String(), true
}

func location(s *visit.Session) string {
	return fmt.Sprintf("%s, %s", s.City, s.Country)
}

// dwelledSections lists section names with meaningful dwell time, longest
// first.
func dwelledSections(sections map[string]float64) string {
	type dwell struct {
		name    string
		seconds float64
	}
	var kept []dwell
	for name, seconds := range sections {
		if seconds >= minSectionDwell {
			kept = append(kept, dwell{name, seconds})
		}
	}
	if len(kept) == 0 {
		return "none"
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].seconds != kept[j].seconds {
			return kept[i].seconds > kept[j].seconds
		}
		return kept[i].name < kept[j].name
	})

	names := make([]string, len(kept))
	for i, d := range kept {
		names[i] = d.name
	}
	return strings.Join(names, ", ")
}
