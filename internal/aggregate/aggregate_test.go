package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/insights/internal/facet"
	"github.com/joescharf/insights/internal/metrics"
	"github.com/joescharf/insights/internal/session"
)

func ident(id string) session.Identity {
	return session.Identity{ProjectHash: "-srv-app", SessionID: id}
}

func sampleMetrics(id string, start time.Time) *metrics.Metrics {
	return &metrics.Metrics{
		Identity:      ident(id),
		StartTime:     start,
		DurationMin:   30,
		ProjectPath:   "/srv/app",
		UserMessages:  4,
		InputTokens:   1000,
		OutputTokens:  200,
		GitCommits:    1,
		ToolCounts:    map[string]int{"Edit": 2, "Bash": 1},
		Languages:     map[string]int{"Go": 2},
		ResponseTimes: []float64{10, 20},
		MessageHours:  []int{9, 9, 10},
		FirstPrompt:   "fix the build",
		LinesAdded:    12,
		LinesRemoved:  3,
		FilesModified: 2,
		UsesTaskAgent: true,
	}
}

func TestBuild(t *testing.T) {
	day1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 3, 14, 0, 0, 0, time.UTC)

	m1 := sampleMetrics("aaaaaaaa-0000-0000-0000-000000000001", day1)
	m2 := sampleMetrics("bbbbbbbb-0000-0000-0000-000000000002", day2)
	m2.Summary = "Refactored the cache layer"
	m2.UsesTaskAgent = false
	m2.UsesMCP = true

	facets := map[session.Identity]*facet.Facet{
		m1.Identity: {
			SessionID:          m1.Identity.SessionID,
			UnderlyingGoal:     "Fix a broken build",
			GoalCategories:     map[string]int{"debugging": 1, "noise": 0},
			Outcome:            "fully_achieved",
			SatisfactionCounts: map[string]int{"satisfied": 2},
			Helpfulness:        "very_helpful",
			SessionType:        "single_task",
			FrictionCounts:     map[string]int{"buggy_code": 1},
			PrimarySuccess:     "good_debugging",
		},
	}

	d := Build([]*metrics.Metrics{m1, m2}, facets)

	t.Run("session counts", func(t *testing.T) {
		assert.Equal(t, 2, d.TotalSessions)
		assert.Equal(t, 1, d.SessionsWithFacets)
		assert.Equal(t, 1, d.SessionsWithoutFacets)
		assert.Equal(t, 0, d.WarmupSessions)
	})

	t.Run("local totals", func(t *testing.T) {
		assert.Equal(t, 8, d.TotalMessages)
		assert.InDelta(t, 1.0, d.TotalDurationHours, 0.001)
		assert.Equal(t, 2000, d.TotalInputTokens)
		assert.Equal(t, 400, d.TotalOutputTokens)
		assert.Equal(t, 2, d.GitCommits)
		assert.Equal(t, 24, d.TotalLinesAdded)
		assert.Equal(t, 6, d.TotalLinesRemoved)
		assert.Equal(t, map[string]int{"Edit": 4, "Bash": 2}, d.ToolCounts)
		assert.Equal(t, map[string]int{"Go": 4}, d.Languages)
		assert.Equal(t, map[string]int{"/srv/app": 2}, d.Projects)
		assert.Equal(t, 1, d.SessionsUsingTaskAgent)
		assert.Equal(t, 1, d.SessionsUsingMCP)
	})

	t.Run("facet distributions", func(t *testing.T) {
		assert.Equal(t, map[string]int{"debugging": 1}, d.GoalCategories, "zero counts dropped")
		assert.Equal(t, map[string]int{"fully_achieved": 1}, d.Outcomes)
		assert.Equal(t, map[string]int{"satisfied": 2}, d.Satisfaction)
		assert.Equal(t, map[string]int{"good_debugging": 1}, d.Success)
	})

	t.Run("date range and cadence", func(t *testing.T) {
		assert.Equal(t, "2026-08-01", d.DateRange.Start)
		assert.Equal(t, "2026-08-03", d.DateRange.End)
		assert.Equal(t, 2, d.DaysActive)
		assert.InDelta(t, 4.0, d.MessagesPerDay, 0.001)
	})

	t.Run("response times", func(t *testing.T) {
		assert.Len(t, d.UserResponseTimes, 4)
		assert.InDelta(t, 15.0, d.AvgResponseTime, 0.001)
		assert.InDelta(t, 20.0, d.MedianResponseTime, 0.001)
	})

	t.Run("session summaries", func(t *testing.T) {
		require.Len(t, d.SessionSummaries, 2)
		assert.Equal(t, "aaaaaaaa", d.SessionSummaries[0].ID)
		assert.Equal(t, "fix the build", d.SessionSummaries[0].Summary)
		assert.Equal(t, "Fix a broken build", d.SessionSummaries[0].Goal)
		assert.Equal(t, "Refactored the cache layer", d.SessionSummaries[1].Summary)
		assert.Empty(t, d.SessionSummaries[1].Goal)
	})
}

func TestBuildDeduplicatesIdentity(t *testing.T) {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	m := sampleMetrics("cccccccc-0000-0000-0000-000000000003", start)
	dup := sampleMetrics("cccccccc-0000-0000-0000-000000000003", start)

	d := Build([]*metrics.Metrics{m, dup}, nil)
	assert.Equal(t, 1, d.TotalSessions)
	assert.Equal(t, 4, d.TotalMessages)
}

func TestBuildWarmupExcluded(t *testing.T) {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	m := sampleMetrics("dddddddd-0000-0000-0000-000000000004", start)
	facets := map[session.Identity]*facet.Facet{
		m.Identity: {
			GoalCategories: map[string]int{"warmup_minimal": 1},
			Outcome:        "unclear_from_transcript",
		},
	}

	d := Build([]*metrics.Metrics{m}, facets)
	assert.Equal(t, 1, d.SessionsWithFacets)
	assert.Equal(t, 1, d.WarmupSessions)
	assert.Empty(t, d.GoalCategories)
	assert.Empty(t, d.Outcomes, "warmup facets stay out of distributions")
}

func TestBuildEmpty(t *testing.T) {
	d := Build(nil, nil)
	assert.Equal(t, 0, d.TotalSessions)
	assert.Equal(t, 0, d.DaysActive)
	assert.Empty(t, d.DateRange.Start)
	assert.Zero(t, d.MedianResponseTime)
}
