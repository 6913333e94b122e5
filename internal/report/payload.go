// Package report turns aggregated run data into narrative sections and a
// self-contained HTML report.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/joescharf/insights/internal/aggregate"
	"github.com/joescharf/insights/internal/facet"
)

// PayloadLimits caps how much detail the report prompts see.
type PayloadLimits struct {
	MaxFacets          int
	MaxTopItems        int
	MaxFrictionDetails int
}

// DefaultPayloadLimits matches the sizing the prompts were tuned against.
func DefaultPayloadLimits() PayloadLimits {
	return PayloadLimits{MaxFacets: 200, MaxTopItems: 15, MaxFrictionDetails: 50}
}

// rankedCount serializes as a ["name", count] pair so ordering survives
// JSON encoding.
type rankedCount struct {
	Name  string
	Count int
}

func (r rankedCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Name, r.Count})
}

// topN returns the n highest counts, descending, ties broken by name for
// deterministic output.
func topN(counts map[string]int, n int) []rankedCount {
	ranked := make([]rankedCount, 0, len(counts))
	for k, v := range counts {
		ranked = append(ranked, rankedCount{k, v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// BuildPayload renders the shared data block appended to every report
// prompt: a JSON overview plus per-session one-liners and friction notes.
func BuildPayload(d *aggregate.Data, facets []*facet.Facet, limits PayloadLimits) (string, error) {
	if len(facets) > limits.MaxFacets {
		facets = facets[:limits.MaxFacets]
	}

	var summaries, frictionDetails []string
	for _, f := range facets {
		summary := f.BriefSummary
		if summary == "" {
			summary = "N/A"
		}
		outcome := f.Outcome
		if outcome == "" {
			outcome = "?"
		}
		helpfulness := f.Helpfulness
		if helpfulness == "" {
			helpfulness = "?"
		}
		summaries = append(summaries, fmt.Sprintf("- %s (%s, %s)", summary, outcome, helpfulness))
		if f.FrictionDetail != "" && len(frictionDetails) < limits.MaxFrictionDetails {
			frictionDetails = append(frictionDetails, "- "+f.FrictionDetail)
		}
	}

	overview := map[string]any{
		"sessions":     d.TotalSessions,
		"analyzed":     d.SessionsWithFacets,
		"date_range":   d.DateRange,
		"messages":     d.TotalMessages,
		"hours":        int(math.Round(d.TotalDurationHours)),
		"commits":      d.GitCommits,
		"top_tools":    topN(d.ToolCounts, limits.MaxTopItems),
		"top_goals":    topN(d.GoalCategories, limits.MaxTopItems),
		"outcomes":     d.Outcomes,
		"satisfaction": d.Satisfaction,
		"friction":     d.Friction,
		"success":      d.Success,
		"languages":    d.Languages,
	}
	encoded, err := json.MarshalIndent(overview, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report payload: %w", err)
	}

	var b strings.Builder
	b.Write(encoded)
	b.WriteString("\n\nSESSION SUMMARIES:\n")
	b.WriteString(strings.Join(summaries, "\n"))
	b.WriteString("\n\nFRICTION DETAILS:\n")
	b.WriteString(strings.Join(frictionDetails, "\n"))
	return b.String(), nil
}
