// Package memstore provides an in-memory implementation of visit.Store.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/linnemanlabs/beacon/internal/visit"
)

// Store holds session records in memory. Suitable for dev/testing.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*visit.Session // session ID -> record
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		sessions: make(map[string]*visit.Session),
	}
}

// Get retrieves a session record by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, sessionID string) (*visit.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[sessionID]
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

// Put stores a copy of the session record, replacing any prior state.
func (s *Store) Put(_ context.Context, rec *visit.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[rec.SessionID] = rec.Clone()
	return nil
}

// CountByVisitor counts session records attributed to a visitor ID.
func (s *Store) CountByVisitor(_ context.Context, visitorID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.sessions {
		if rec.VisitorID == visitorID {
			n++
		}
	}
	return n, nil
}

// Recent returns up to limit records sorted by LastUpdated descending.
func (s *Store) Recent(_ context.Context, limit int) ([]*visit.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*visit.Session, 0, len(s.sessions))
	for _, rec := range s.sessions {
		items = append(items, rec.Clone())
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].LastUpdated.After(items[j].LastUpdated)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
