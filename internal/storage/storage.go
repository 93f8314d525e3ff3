package storage

import (
	"context"
	"encoding/json"
	"time"
)

// Report is one archived intelligence report. The Intelligence field carries
// the full serialized CompanyIntelligence value; the remaining columns exist
// for filtering.
type Report struct {
	ID           string          `json:"id"`
	Domain       string          `json:"domain"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Intelligence json.RawMessage `json:"intelligence"`
}

// Filter allows querying for specific archived reports.
type Filter struct {
	Domain string
	Since  *time.Time
	Limit  int
	Offset int
}

// Backend defines the interface for archiving and querying reports.
// Implementations return results ordered by generation time, newest first.
type Backend interface {
	Save(ctx context.Context, report *Report) error
	Query(ctx context.Context, filter Filter) ([]*Report, error)
	Close() error
}
