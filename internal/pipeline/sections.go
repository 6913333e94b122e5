package pipeline

import (
	"context"
	"sort"

	"github.com/joescharf/insights/internal/aggregate"
	"github.com/joescharf/insights/internal/facet"
	"github.com/joescharf/insights/internal/report"
	"github.com/joescharf/insights/internal/session"
)

// SectionsOptions tunes report section generation.
type SectionsOptions struct {
	MaxTokens int
	Limits    report.PayloadLimits
}

// Sections builds the shared payload and generates every report section.
// Facets feed the payload in identity order so reruns see identical input.
func Sections(ctx context.Context, c report.Completer, d *aggregate.Data, facets map[session.Identity]*facet.Facet, opts SectionsOptions) (*report.Insights, error) {
	ids := make([]session.Identity, 0, len(facets))
	for id := range facets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Token() < ids[j].Token() })

	ordered := make([]*facet.Facet, len(ids))
	for i, id := range ids {
		ordered[i] = facets[id]
	}

	payload, err := report.BuildPayload(d, ordered, opts.Limits)
	if err != nil {
		return nil, err
	}
	return report.Generate(ctx, c, payload, opts.MaxTokens), nil
}
