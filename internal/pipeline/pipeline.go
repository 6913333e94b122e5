// Package pipeline orchestrates a run: cache partition, bounded facet
// extraction, and report section generation.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/joescharf/insights/internal/analysis"
	"github.com/joescharf/insights/internal/facet"
	"github.com/joescharf/insights/internal/metrics"
	"github.com/joescharf/insights/internal/pool"
	"github.com/joescharf/insights/internal/session"
)

// Extractor is the slice of the analysis client facet extraction needs.
type Extractor interface {
	ExtractFacet(ctx context.Context, req analysis.FacetRequest, budget analysis.FacetBudget) (*facet.Facet, error)
}

// Item is one session ready for analysis.
type Item struct {
	Record      *session.Record
	Metrics     *metrics.Metrics
	ProjectName string
}

// Failure is one session whose facet extraction failed. The session stays
// uncached so a later run retries it.
type Failure struct {
	Identity session.Identity
	Err      error
}

// FacetOptions tunes one facet-extraction pass.
type FacetOptions struct {
	Concurrency int
	DryRun      bool
	Serialize   session.SerializeOptions
	Budget      analysis.FacetBudget
}

// FacetOutcome reports full coverage accounting for the pass: every input
// item lands in exactly one of Facets, Failures, or Pending (dry run).
type FacetOutcome struct {
	Facets map[session.Identity]*facet.Facet

	CachedHits int
	Extracted  int
	Pending    int
	Failures   []Failure
}

// Facets partitions items against the cache and extracts facets for the
// misses under the concurrency bound. A successful extraction is persisted
// before it is surfaced, so a session is never analyzed twice. Dry run
// stops after the partition with zero extraction calls.
func Facets(ctx context.Context, ext Extractor, cache *facet.Cache, items []Item, opts FacetOptions) (*FacetOutcome, error) {
	out := &FacetOutcome{Facets: map[session.Identity]*facet.Facet{}}

	var uncached []Item
	for _, it := range items {
		id := it.Record.Identity
		f, err := cache.Get(id)
		switch {
		case err == nil:
			out.Facets[id] = f
			out.CachedHits++
		case errors.Is(err, facet.ErrNotFound):
			uncached = append(uncached, it)
		default:
			return nil, fmt.Errorf("read facet cache for %s: %w", id, err)
		}
	}

	if opts.DryRun {
		out.Pending = len(uncached)
		return out, nil
	}

	results := pool.Run(ctx, uncached, opts.Concurrency, func(ctx context.Context, it Item) (*facet.Facet, error) {
		req := analysis.FacetRequest{
			SessionID:   it.Record.Identity.SessionID,
			ProjectName: it.ProjectName,
			DurationMin: it.Metrics.DurationMin,
			Transcript:  session.Serialize(it.Record, opts.Serialize),
		}
		if !it.Metrics.StartTime.IsZero() {
			req.StartTime = it.Metrics.StartTime.UTC().Format("2006-01-02")
		}
		f, err := ext.ExtractFacet(ctx, req, opts.Budget)
		if err != nil {
			return nil, err
		}
		if err := cache.Put(it.Record.Identity, f); err != nil {
			return nil, fmt.Errorf("persist facet: %w", err)
		}
		return f, nil
	})

	for i, r := range results {
		id := uncached[i].Record.Identity
		if r.Err != nil {
			out.Failures = append(out.Failures, Failure{Identity: id, Err: r.Err})
			continue
		}
		out.Facets[id] = r.Value
		out.Extracted++
	}
	return out, nil
}
