package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"railguard-io/railguard/pkg/guardrails"
)

// Record is one persisted guardrail violation.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// Surface names the ingestion point that ran the scan: "agent",
	// "channel" or "gateway".
	Surface string `json:"surface"`

	// Rule is the guardrail rule that matched.
	Rule string `json:"rule"`

	// Action is the action that was applied for this match.
	Action string `json:"action"`

	// Matched is the masked representation of the matched text.
	Matched string `json:"matched"`

	// Generation is the guardrail snapshot generation that produced
	// the violation, for audit reproducibility.
	Generation uint64 `json:"generation"`

	// CreatedAt is when the violation was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// NewRecords converts a scan result into audit records for a surface.
// A clean result yields nil.
func NewRecords(surface string, generation uint64, result *guardrails.ScanResult) []*Record {
	if result == nil || len(result.Violations) == 0 {
		return nil
	}

	now := time.Now().UTC()
	records := make([]*Record, 0, len(result.Violations))
	for _, v := range result.Violations {
		records = append(records, &Record{
			ID:         uuid.NewString(),
			Surface:    surface,
			Rule:       v.Rule,
			Action:     string(v.Action),
			Matched:    v.Matched,
			Generation: generation,
			CreatedAt:  now,
		})
	}
	return records
}

// Query selects records for retrieval or deletion.
type Query struct {
	// Surface filters by ingestion surface. Empty matches all.
	Surface string

	// Rule filters by rule name. Empty matches all.
	Rule string

	// Action filters by applied action. Empty matches all.
	Action string

	// Since filters records created at or after this time.
	Since time.Time

	// Until filters records created before this time.
	Until time.Time

	// Limit caps the number of returned records. Zero means the
	// storage default.
	Limit int
}

// Storage is the persistence boundary for audit records.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, record *Record) error

	// Query returns records matching the query, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes records created before the cutoff and
	// returns how many were deleted.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases storage resources.
	Close() error
}
