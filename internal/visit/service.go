package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/beacon/internal/geo"
)

// DefaultStatsLimit bounds the recent-sessions listing.
const DefaultStatsLimit = 50

// GeoResolver resolves location/device attributes from request hints.
// Implementations must degrade to Unknown values instead of failing.
type GeoResolver interface {
	Resolve(ctx context.Context, h geo.Hints) geo.Location
}

// Dispatcher fans an alert out to notification channels. Implementations
// must swallow delivery failures; dispatch outcomes never reach the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, class Classification, s *Session)
}

// IngestResult is the outcome of ingesting one pulse.
type IngestResult struct {
	Session        *Session
	Classification Classification
}

// Options tunes service behavior. Zero values pick the defaults.
type Options struct {
	InterestThreshold float64
	StatsLimit        int
}

// Service is the business boundary for pulse ingestion: validate, resolve
// geo, fetch prior state, merge, persist, dispatch.
type Service struct {
	store      Store
	resolver   GeoResolver
	dispatcher Dispatcher
	merger     Merger
	statsLimit int
	logger     log.Logger
	metrics    *Metrics
}

// NewService creates a visit service. The store is required; resolver and
// dispatcher may be nil (geo degrades to Unknown, alerts are dropped).
func NewService(store Store, resolver GeoResolver, dispatcher Dispatcher, logger log.Logger, metrics *Metrics, opts Options) *Service {
	if store == nil {
		panic(xerrors.New("visit store is required"))
	}
	if logger == nil {
		logger = log.Nop()
	}
	limit := opts.StatsLimit
	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	return &Service{
		store:      store,
		resolver:   resolver,
		dispatcher: dispatcher,
		merger:     Merger{InterestThreshold: opts.InterestThreshold},
		statsLimit: limit,
		logger:     logger,
		metrics:    metrics,
	}
}

// Ingest validates a raw pulse, merges it into the session's durable record,
// persists the result, and kicks off alert dispatch for new-visit and
// high-interest transitions. Validation and storage errors are the only
// failure modes; geo and visitor-count lookups degrade instead.
func (s *Service) Ingest(ctx context.Context, payload []byte, hints geo.Hints) (*IngestResult, error) {
	p, err := ParsePulse(payload)
	if err != nil {
		s.metrics.incPulse("invalid")
		return nil, err
	}

	loc := geo.Location{Country: geo.Unknown, City: geo.Unknown}
	if s.resolver != nil {
		loc = s.resolver.Resolve(ctx, hints)
	}

	prior, found, err := s.store.Get(ctx, p.SessionID)
	if err != nil {
		s.metrics.incPulse("storage_error")
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	visitCount := 1
	if !found && p.VisitorID != "" {
		n, err := s.store.CountByVisitor(ctx, p.VisitorID)
		if err != nil {
			// degrade to a first visit rather than failing the pulse
			s.logger.Error(ctx, err, "visitor count lookup failed", "visitor_id", p.VisitorID)
		} else {
			visitCount = n + 1
		}
	}
	rec, class := s.merger.Apply(prior, p, loc, visitCount, time.Now().UTC())

	if err := s.store.Put(ctx, rec); err != nil {
		s.metrics.incPulse("storage_error")
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.metrics.incPulse("tracked")
	s.metrics.observeMerge(class, rec)

	if s.dispatcher != nil && class != ClassContinuation {
		// Detached from the request lifecycle: the 200 response never
		// waits on notification channel round trips.
		go s.dispatcher.Dispatch(context.WithoutCancel(ctx), class, rec.Clone())
	}

	return &IngestResult{Session: rec, Classification: class}, nil
}

// Recent lists the most recently updated session records, newest first.
func (s *Service) Recent(ctx context.Context) ([]*Session, error) {
	items, err := s.store.Recent(ctx, s.statsLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	return items, nil
}
