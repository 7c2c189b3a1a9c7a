package visit

import "context"

// Store is the persistence interface for session records. Put is an
// unconditional full replace; the design accepts last-write-wins for
// concurrent pulses on the same session.
type Store interface {
	// Get retrieves the record for a session ID, if one exists.
	Get(ctx context.Context, sessionID string) (*Session, bool, error)

	// Put replaces the current record for s.SessionID.
	Put(ctx context.Context, s *Session) error

	// CountByVisitor returns how many session records are attributed to
	// the given visitor ID.
	CountByVisitor(ctx context.Context, visitorID string) (int, error)

	// Recent returns up to limit records sorted by LastUpdated descending.
	Recent(ctx context.Context, limit int) ([]*Session, error)
}
