package redisstore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/linnemanlabs/beacon/internal/visit"
	"github.com/linnemanlabs/beacon/internal/visit/redisstore"
)

func openStore(t *testing.T) *redisstore.Store {
	t.Helper()
	redisURL := os.Getenv("BEACON_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("BEACON_TEST_REDIS_URL not set, skipping integration test")
	}
	s, err := redisstore.New(context.Background(), redisURL)
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// uniqueID keeps parallel or repeated runs from colliding in a shared
// Redis instance.
func uniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestPutAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	id := uniqueID("test-put-get")
	in := &visit.Session{
		SessionID:      id,
		VisitorID:      uniqueID("vis"),
		VisitCount:     2,
		ScrollDepth:    60,
		SectionsViewed: map[string]float64{"hero": 4},
		TimeSpent:      15,
		Country:        "Netherlands",
		City:           "Amsterdam",
		LastUpdated:    time.Now().Truncate(time.Millisecond).UTC(),
	}
	if err := s.Put(ctx, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get returned ok=false, want true")
	}
	if got.ScrollDepth != 60 || got.City != "Amsterdam" {
		t.Errorf("got %+v", got)
	}
	if got.SectionsViewed["hero"] != 4 {
		t.Errorf("SectionsViewed = %v", got.SectionsViewed)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	_, ok, err := s.Get(context.Background(), uniqueID("nonexistent"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("Get returned ok=true for nonexistent session")
	}
}

func TestCountByVisitor(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	visitor := uniqueID("vis-count")
	for i := 0; i < 3; i++ {
		rec := &visit.Session{
			SessionID:   fmt.Sprintf("%s-sess-%d", visitor, i),
			VisitorID:   visitor,
			LastUpdated: time.Now().UTC(),
		}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}

	n, err := s.CountByVisitor(ctx, visitor)
	if err != nil {
		t.Fatalf("CountByVisitor: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	n, err = s.CountByVisitor(ctx, uniqueID("vis-none"))
	if err != nil {
		t.Fatalf("CountByVisitor: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestCountByVisitorDedupesSession(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	visitor := uniqueID("vis-dedupe")
	rec := &visit.Session{
		SessionID:   uniqueID("sess"),
		VisitorID:   visitor,
		LastUpdated: time.Now().UTC(),
	}

	// repeated pulses for the same session must count once
	for i := 0; i < 3; i++ {
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put %d: %v", i, err)
		}
	}

	n, err := s.CountByVisitor(ctx, visitor)
	if err != nil {
		t.Fatalf("CountByVisitor: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	// far-future timestamps so these records outrank anything already in
	// the test instance
	base := time.Now().Add(24 * time.Hour).UTC()
	newest := uniqueID("test-recent-new")
	middle := uniqueID("test-recent-mid")
	oldest := uniqueID("test-recent-old")

	for _, rec := range []*visit.Session{
		{SessionID: oldest, LastUpdated: base.Add(-2 * time.Minute)},
		{SessionID: newest, LastUpdated: base},
		{SessionID: middle, LastUpdated: base.Add(-time.Minute)},
	} {
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put %s: %v", rec.SessionID, err)
		}
	}

	items, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].SessionID != newest || items[1].SessionID != middle {
		t.Errorf("order = [%s %s], want [%s %s]", items[0].SessionID, items[1].SessionID, newest, middle)
	}
}

func TestRecentZeroLimit(t *testing.T) {
	s := openStore(t)

	items, err := s.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if items != nil {
		t.Errorf("items = %v, want nil", items)
	}
}
