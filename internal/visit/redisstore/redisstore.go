// Package redisstore provides a Redis implementation of visit.Store.
//
// Records are stored as JSON values keyed by session ID. A per-visitor set
// backs the visitor session count, and a sorted set scored by last-updated
// time backs the recency listing.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linnemanlabs/beacon/internal/visit"
)

const (
	sessionKeyPrefix = "beacon:session:"
	visitorKeyPrefix = "beacon:visitor:"
	recentKey        = "beacon:sessions:by-update"

	connectTimeout = 5 * time.Second
)

// Store persists session records in Redis.
type Store struct {
	rdb *redis.Client
}

// New connects to Redis, verifies connectivity with a ping, and returns a
// ready Store.
func New(ctx context.Context, redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Store{rdb: client}, nil
}

// Close shuts down the Redis client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Get retrieves a session record by ID.
func (s *Store) Get(ctx context.Context, sessionID string) (*visit.Session, bool, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get session: %w", err)
	}

	var rec visit.Session
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return &rec, true, nil
}

// Put replaces the record for rec.SessionID and updates the visitor and
// recency indexes in a single pipeline.
func (s *Store) Put(ctx context.Context, rec *visit.Session) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+rec.SessionID, data, 0)
	if rec.VisitorID != "" {
		pipe.SAdd(ctx, visitorKeyPrefix+rec.VisitorID, rec.SessionID)
	}
	pipe.ZAdd(ctx, recentKey, redis.Z{
		Score:  float64(rec.LastUpdated.UnixMilli()),
		Member: rec.SessionID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// CountByVisitor counts session records attributed to a visitor ID.
func (s *Store) CountByVisitor(ctx context.Context, visitorID string) (int, error) {
	n, err := s.rdb.SCard(ctx, visitorKeyPrefix+visitorID).Result()
	if err != nil {
		return 0, fmt.Errorf("count visitor sessions: %w", err)
	}
	return int(n), nil
}

// Recent returns up to limit records sorted by last-updated descending.
func (s *Store) Recent(ctx context.Context, limit int) ([]*visit.Session, error) {
	if limit <= 0 {
		return nil, nil
	}

	ids, err := s.rdb.ZRevRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent session ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKeyPrefix + id
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch recent sessions: %w", err)
	}

	items := make([]*visit.Session, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// index entry without a value; skip rather than fail the listing
			continue
		}
		var rec visit.Session
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal session: %w", err)
		}
		items = append(items, &rec)
	}
	return items, nil
}
