package visit

import "time"

// Classification is the merge engine's verdict for one pulse.
type Classification string

const (
	// ClassNewVisit means this pulse created the session record.
	ClassNewVisit Classification = "new_visit"

	// ClassContinuation means the pulse updated an existing record without
	// crossing the interest threshold. No alert is dispatched.
	ClassContinuation Classification = "continuation"

	// ClassHighInterest means this pulse moved timeSpent from at-or-below
	// the interest threshold to above it. Fires at most once per session.
	ClassHighInterest Classification = "high_interest"
)

// DefaultInterestThreshold is the timeSpent cutoff, in seconds, above which
// a session counts as high interest.
const DefaultInterestThreshold = 90.0

// Session is the durable per-browsing-session record. One record exists per
// client-generated session ID; every pulse for that ID is merged into it.
type Session struct {
	SessionID      string             `json:"sessionId"`
	VisitorID      string             `json:"visitorId,omitempty"`
	VisitCount     int                `json:"visitCount"`
	ScrollDepth    int                `json:"scrollDepth"`
	SectionsViewed map[string]float64 `json:"sectionsViewed,omitempty"`
	TimeSpent      float64            `json:"timeSpent"`
	Referrer       string             `json:"referrer,omitempty"`
	Language       string             `json:"language,omitempty"`
	ScreenSize     string             `json:"screenSize,omitempty"`
	ViewportSize   string             `json:"viewportSize,omitempty"`
	Country        string             `json:"country"`
	City           string             `json:"city"`
	IP             string             `json:"ip,omitempty"`
	UserAgent      string             `json:"userAgent,omitempty"`
	StartedAt      time.Time          `json:"startedAt"`
	LastUpdated    time.Time          `json:"lastUpdated"`
}

// Clone returns a deep copy, so the async dispatch path never shares the
// SectionsViewed map with a record a later pulse may replace.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.SectionsViewed != nil {
		cp.SectionsViewed = make(map[string]float64, len(s.SectionsViewed))
		for k, v := range s.SectionsViewed {
			cp.SectionsViewed[k] = v
		}
	}
	return &cp
}
