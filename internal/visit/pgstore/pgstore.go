// Package pgstore provides a PostgreSQL implementation of visit.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/beacon/internal/visit"
)

var tracer = otel.Tracer("github.com/linnemanlabs/beacon/internal/visit/pgstore")

//go:embed schema.sql
var schema string

// Store persists session records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema and returns a ready Store. The pool is owned by
// the caller.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const sessionColumns = `session_id, visitor_id, visit_count, scroll_depth, sections_viewed,
	time_spent, referrer, language, screen_size, viewport_size,
	country, city, ip, user_agent, started_at, last_updated`

// Get retrieves a session record by ID.
func (s *Store) Get(ctx context.Context, sessionID string) (*visit.Session, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_id = $1`
	rec, err := scanSession(s.pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if rec == nil {
		return nil, false, nil
	}
	return rec, true, nil
}

// Put inserts or replaces the record for rec.SessionID. The upsert is
// unconditional: last write wins, as the ingest design accepts.
func (s *Store) Put(ctx context.Context, rec *visit.Session) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	sectionsJSON, err := json.Marshal(rec.SectionsViewed)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}

	query := `INSERT INTO sessions (
		session_id, visitor_id, visit_count, scroll_depth, sections_viewed,
		time_spent, referrer, language, screen_size, viewport_size,
		country, city, ip, user_agent, started_at, last_updated
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	ON CONFLICT (session_id) DO UPDATE SET
		visitor_id      = EXCLUDED.visitor_id,
		visit_count     = EXCLUDED.visit_count,
		scroll_depth    = EXCLUDED.scroll_depth,
		sections_viewed = EXCLUDED.sections_viewed,
		time_spent      = EXCLUDED.time_spent,
		referrer        = EXCLUDED.referrer,
		language        = EXCLUDED.language,
		screen_size     = EXCLUDED.screen_size,
		viewport_size   = EXCLUDED.viewport_size,
		country         = EXCLUDED.country,
		city            = EXCLUDED.city,
		ip              = EXCLUDED.ip,
		user_agent      = EXCLUDED.user_agent,
		started_at      = EXCLUDED.started_at,
		last_updated    = EXCLUDED.last_updated`

	_, err = s.pool.Exec(ctx, query,
		rec.SessionID, rec.VisitorID, rec.VisitCount, rec.ScrollDepth, sectionsJSON,
		rec.TimeSpent, rec.Referrer, rec.Language, rec.ScreenSize, rec.ViewportSize,
		rec.Country, rec.City, rec.IP, rec.UserAgent, rec.StartedAt, rec.LastUpdated,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// CountByVisitor counts session records attributed to a visitor ID.
func (s *Store) CountByVisitor(ctx context.Context, visitorID string) (int, error) {
	ctx, span := tracer.Start(ctx, "pgstore.CountByVisitor", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM sessions WHERE visitor_id = $1`, visitorID).Scan(&n)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("count visitor sessions: %w", err)
	}
	return n, nil
}

// Recent returns up to limit records sorted by last_updated descending.
func (s *Store) Recent(ctx context.Context, limit int) ([]*visit.Session, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Recent", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY last_updated DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	defer rows.Close()

	var items []*visit.Session
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate recent sessions: %w", err)
	}
	return items, nil
}

func scanSession(row pgx.Row) (*visit.Session, error) {
	var rec visit.Session
	var sectionsJSON []byte

	err := row.Scan(
		&rec.SessionID, &rec.VisitorID, &rec.VisitCount, &rec.ScrollDepth, &sectionsJSON,
		&rec.TimeSpent, &rec.Referrer, &rec.Language, &rec.ScreenSize, &rec.ViewportSize,
		&rec.Country, &rec.City, &rec.IP, &rec.UserAgent, &rec.StartedAt, &rec.LastUpdated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if len(sectionsJSON) > 0 {
		if err := json.Unmarshal(sectionsJSON, &rec.SectionsViewed); err != nil {
			return nil, fmt.Errorf("unmarshal sections: %w", err)
		}
	}
	return &rec, nil
}
