package visit

import (
	"time"

	"github.com/linnemanlabs/beacon/internal/geo"
)

// Merger folds pulses into session records. It is a pure reducer: Apply
// never mutates its inputs and has no side effects, so the same contract
// can be exercised directly in tests without storage.
type Merger struct {
	// InterestThreshold is the timeSpent cutoff in seconds. Zero or
	// negative means DefaultInterestThreshold.
	InterestThreshold float64
}

// Apply merges one pulse into the prior record (nil for a first sighting)
// and classifies the transition.
//
// Merge rules:
//   - scrollDepth takes max(prior, incoming); a stale pulse never regresses it.
//   - sectionsViewed takes max per key. The client reports cumulative
//     per-section totals, so max is idempotent under duplicate delivery and
//     summing would double-count.
//   - timeSpent is the client-computed elapsed time, trusted as-is.
//   - visitCount is assigned exactly once, at first sighting; later pulses
//     carry it over unchanged and the visitCount argument is ignored.
//   - geo/device attributes are last-write-wins, except that an Unknown
//     value never displaces a previously resolved one.
func (m Merger) Apply(prior *Session, p *Pulse, loc geo.Location, visitCount int, now time.Time) (*Session, Classification) {
	threshold := m.InterestThreshold
	if threshold <= 0 {
		threshold = DefaultInterestThreshold
	}

	next := &Session{
		SessionID:      p.SessionID,
		VisitorID:      p.VisitorID,
		ScrollDepth:    p.ScrollDepth,
		SectionsViewed: copySections(p.SectionsViewed),
		TimeSpent:      p.TimeSpent,
		Referrer:       p.Referrer,
		Language:       p.Language,
		ScreenSize:     p.ScreenSize,
		ViewportSize:   p.ViewportSize,
		Country:        loc.Country,
		City:           loc.City,
		IP:             loc.IP,
		UserAgent:      loc.UserAgent,
		StartedAt:      p.StartTime,
		LastUpdated:    now,
	}
	if next.UserAgent == "" || next.UserAgent == geo.Unknown {
		// header UA wins; the client-reported field is only a fallback
		if p.UserAgent != "" {
			next.UserAgent = p.UserAgent
		}
	}
	if next.StartedAt.IsZero() {
		next.StartedAt = now
	}

	if prior == nil {
		next.VisitCount = visitCount
		if next.VisitCount < 1 {
			next.VisitCount = 1
		}
		return next, ClassNewVisit
	}

	next.VisitCount = prior.VisitCount
	if !prior.StartedAt.IsZero() {
		next.StartedAt = prior.StartedAt
	}
	if next.VisitorID == "" {
		next.VisitorID = prior.VisitorID
	}
	if next.Referrer == "" {
		next.Referrer = prior.Referrer
	}

	if prior.ScrollDepth > next.ScrollDepth {
		next.ScrollDepth = prior.ScrollDepth
	}
	for section, dwell := range prior.SectionsViewed {
		if dwell > next.SectionsViewed[section] {
			if next.SectionsViewed == nil {
				next.SectionsViewed = make(map[string]float64, len(prior.SectionsViewed))
			}
			next.SectionsViewed[section] = dwell
		}
	}

	if isUnresolved(next.Country) && !isUnresolved(prior.Country) {
		next.Country = prior.Country
	}
	if isUnresolved(next.City) && !isUnresolved(prior.City) {
		next.City = prior.City
	}
	if next.IP == "" || next.IP == geo.Unknown {
		next.IP = prior.IP
	}
	if next.UserAgent == "" || next.UserAgent == geo.Unknown {
		next.UserAgent = prior.UserAgent
	}

	if prior.TimeSpent <= threshold && next.TimeSpent > threshold {
		return next, ClassHighInterest
	}
	return next, ClassContinuation
}

func isUnresolved(v string) bool {
	return v == "" || v == geo.Unknown
}

func copySections(src map[string]float64) map[string]float64 {
	if src == nil {
		return nil
	}
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
