package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"railguard-io/railguard/pkg/audit"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(&SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "audit.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(surface, rule, action string, createdAt time.Time) *audit.Record {
	return &audit.Record{
		ID:         uuid.NewString(),
		Surface:    surface,
		Rule:       rule,
		Action:     action,
		Matched:    "9 digits redacted",
		Generation: 1,
		CreatedAt:  createdAt,
	}
}

func TestSQLiteStorage_StoreAndQuery(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.Store(ctx, testRecord("gateway", "ssn", "block", now)); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Store(ctx, testRecord("agent", "card", "redact", now.Add(time.Second))); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	records, err := s.Query(ctx, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Query() = %d records, want 2", len(records))
	}
	// Newest first.
	if records[0].Rule != "card" {
		t.Errorf("records[0].Rule = %q, want card (newest first)", records[0].Rule)
	}
}

func TestSQLiteStorage_QueryFilters(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s.Store(ctx, testRecord("gateway", "ssn", "block", now))
	s.Store(ctx, testRecord("agent", "ssn", "block", now))
	s.Store(ctx, testRecord("gateway", "card", "redact", now))

	records, err := s.Query(ctx, &audit.Query{Surface: "gateway", Rule: "ssn"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("filtered query = %d records, want 1", len(records))
	}
	if records[0].Surface != "gateway" || records[0].Rule != "ssn" {
		t.Errorf("record = %+v", records[0])
	}

	count, err := s.Count(ctx, &audit.Query{Action: "block"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count(action=block) = %d, want 2", count)
	}
}

func TestSQLiteStorage_QueryLimit(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		s.Store(ctx, testRecord("gateway", "ssn", "warn", now.Add(time.Duration(i)*time.Second)))
	}

	records, err := s.Query(ctx, &audit.Query{Limit: 3})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Query(limit=3) = %d records, want 3", len(records))
	}
}

func TestSQLiteStorage_DeleteBefore(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s.Store(ctx, testRecord("gateway", "old", "warn", now.AddDate(0, 0, -100)))
	s.Store(ctx, testRecord("gateway", "recent", "warn", now))

	deleted, err := s.DeleteBefore(ctx, now.AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, _ := s.Count(ctx, nil)
	if count != 1 {
		t.Errorf("remaining = %d, want 1", count)
	}
}

func TestSQLiteStorage_NilRecordRejected(t *testing.T) {
	s := testStorage(t)
	if err := s.Store(context.Background(), nil); err == nil {
		t.Fatal("Store(nil) error = nil, want error")
	}
}
