package store

import (
	"context"
	"time"

	"github.com/sells-group/recon-cli/internal/model"
)

// Filter specifies criteria for listing stored records.
type Filter struct {
	Action   model.Action `json:"action,omitempty"`
	Supplier string       `json:"supplier,omitempty"`
	Limit    int          `json:"limit,omitempty"`
	Offset   int          `json:"offset,omitempty"`
}

// StoredRecord is a persisted record plus its storage metadata.
type StoredRecord struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Record    model.ReconRecord `json:"record"`
}

// Summary aggregates the result log for reporting.
type Summary struct {
	TotalRuns               int            `json:"total_runs"`
	ByAction                map[string]int `json:"by_action"`
	DiscrepanciesByType     map[string]int `json:"discrepancies_by_type"`
	AvgExtractionConfidence float64        `json:"avg_extraction_confidence"`
}

// Store is the append-safe result log. Writes are serialized by the
// implementation so concurrent invoice runs can share one store.
type Store interface {
	// SaveRecord appends one result. Saving the same source file twice is
	// an error; callers check HasProcessed first.
	SaveRecord(ctx context.Context, record model.ReconRecord) (string, error)

	// HasProcessed reports whether a source file already has a result,
	// making batch re-runs idempotent.
	HasProcessed(ctx context.Context, sourceFile string) (bool, error)

	GetRecord(ctx context.Context, id string) (*StoredRecord, error)
	ListRecords(ctx context.Context, filter Filter) ([]StoredRecord, error)
	Summarize(ctx context.Context) (*Summary, error)

	Migrate(ctx context.Context) error
	Close() error
}
