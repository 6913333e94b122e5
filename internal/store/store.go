// Package store persists run history so past generation runs can be
// inspected and compared.
package store

import (
	"context"
	"time"
)

// RunRecord is one completed (or dry) generation run.
type RunRecord struct {
	ID                string        `json:"id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration"`
	Model             string        `json:"model"`
	DryRun            bool          `json:"dry_run"`
	SessionsScanned   int           `json:"sessions_scanned"`
	SessionsAnalyzed  int           `json:"sessions_analyzed"`
	FacetsCached      int           `json:"facets_cached"`
	FacetsExtracted   int           `json:"facets_extracted"`
	FacetFailures     int           `json:"facet_failures"`
	SectionsGenerated int           `json:"sections_generated"`
	SectionFailures   int           `json:"section_failures"`
	ReportPath        string        `json:"report_path,omitempty"`
}

// Store defines run-history persistence.
type Store interface {
	CreateRun(ctx context.Context, r *RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)
	LastRun(ctx context.Context) (*RunRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}
