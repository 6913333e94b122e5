// Package aggregate merges per-session metrics and facets into the run-wide
// statistics that feed report generation.
package aggregate

import (
	"sort"

	"github.com/joescharf/insights/internal/facet"
	"github.com/joescharf/insights/internal/metrics"
	"github.com/joescharf/insights/internal/session"
)

// maxSessionSummaries caps the per-session summary list carried into the
// report payload.
const maxSessionSummaries = 100

// DateRange is the inclusive span of session start dates, as YYYY-MM-DD.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SessionSummary is one line of per-session context for the report prompts.
type SessionSummary struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
	Goal    string `json:"goal,omitempty"`
}

// Data is the run-wide aggregate. Facet-derived maps count only sessions
// that actually have a facet; purely local counters cover every session.
type Data struct {
	TotalSessions         int       `json:"total_sessions"`
	SessionsWithFacets    int       `json:"sessions_with_facets"`
	SessionsWithoutFacets int       `json:"sessions_without_facets"`
	WarmupSessions        int       `json:"warmup_sessions"`
	DateRange             DateRange `json:"date_range"`

	TotalMessages      int     `json:"total_messages"`
	TotalDurationHours float64 `json:"total_duration_hours"`
	TotalInputTokens   int     `json:"total_input_tokens"`
	TotalOutputTokens  int     `json:"total_output_tokens"`

	ToolCounts map[string]int `json:"tool_counts"`
	Languages  map[string]int `json:"languages"`
	GitCommits int            `json:"git_commits"`
	GitPushes  int            `json:"git_pushes"`
	Projects   map[string]int `json:"projects"`

	GoalCategories map[string]int `json:"goal_categories"`
	Outcomes       map[string]int `json:"outcomes"`
	Satisfaction   map[string]int `json:"satisfaction"`
	Helpfulness    map[string]int `json:"helpfulness"`
	SessionTypes   map[string]int `json:"session_types"`
	Friction       map[string]int `json:"friction"`
	Success        map[string]int `json:"success"`

	SessionSummaries []SessionSummary `json:"session_summaries"`

	TotalInterruptions  int            `json:"total_interruptions"`
	TotalToolErrors     int            `json:"total_tool_errors"`
	ToolErrorCategories map[string]int `json:"tool_error_categories"`

	UserResponseTimes  []float64 `json:"user_response_times"`
	MedianResponseTime float64   `json:"median_response_time"`
	AvgResponseTime    float64   `json:"avg_response_time"`

	SessionsUsingTaskAgent int `json:"sessions_using_task_agent"`
	SessionsUsingMCP       int `json:"sessions_using_mcp"`
	SessionsUsingWebSearch int `json:"sessions_using_web_search"`
	SessionsUsingWebFetch  int `json:"sessions_using_web_fetch"`

	TotalLinesAdded    int `json:"total_lines_added"`
	TotalLinesRemoved  int `json:"total_lines_removed"`
	TotalFilesModified int `json:"total_files_modified"`

	DaysActive     int     `json:"days_active"`
	MessagesPerDay float64 `json:"messages_per_day"`
	MessageHours   []int   `json:"message_hours"`
}

func newData() *Data {
	return &Data{
		ToolCounts:          map[string]int{},
		Languages:           map[string]int{},
		Projects:            map[string]int{},
		GoalCategories:      map[string]int{},
		Outcomes:            map[string]int{},
		Satisfaction:        map[string]int{},
		Helpfulness:         map[string]int{},
		SessionTypes:        map[string]int{},
		Friction:            map[string]int{},
		Success:             map[string]int{},
		ToolErrorCategories: map[string]int{},
	}
}

// Build merges session metrics with their facets. Duplicate identities are
// counted once, first occurrence wins. Warmup-only facets contribute to
// WarmupSessions but not to the facet-derived distributions.
func Build(sessionMetrics []*metrics.Metrics, facets map[session.Identity]*facet.Facet) *Data {
	d := newData()
	seen := map[session.Identity]bool{}

	var dates []string
	for _, sm := range sessionMetrics {
		if seen[sm.Identity] {
			continue
		}
		seen[sm.Identity] = true
		d.TotalSessions++

		if !sm.StartTime.IsZero() {
			dates = append(dates, sm.StartTime.UTC().Format("2006-01-02"))
		}
		d.TotalMessages += sm.UserMessages
		d.TotalDurationHours += float64(sm.DurationMin) / 60
		d.TotalInputTokens += sm.InputTokens
		d.TotalOutputTokens += sm.OutputTokens
		d.GitCommits += sm.GitCommits
		d.GitPushes += sm.GitPushes
		d.TotalInterruptions += sm.Interruptions
		d.TotalToolErrors += sm.ToolErrors
		d.TotalLinesAdded += sm.LinesAdded
		d.TotalLinesRemoved += sm.LinesRemoved
		d.TotalFilesModified += sm.FilesModified

		mergeCounts(d.ToolCounts, sm.ToolCounts)
		mergeCounts(d.Languages, sm.Languages)
		mergeCounts(d.ToolErrorCategories, sm.ToolErrorCategories)
		d.UserResponseTimes = append(d.UserResponseTimes, sm.ResponseTimes...)
		d.MessageHours = append(d.MessageHours, sm.MessageHours...)

		if sm.UsesTaskAgent {
			d.SessionsUsingTaskAgent++
		}
		if sm.UsesMCP {
			d.SessionsUsingMCP++
		}
		if sm.UsesWebSearch {
			d.SessionsUsingWebSearch++
		}
		if sm.UsesWebFetch {
			d.SessionsUsingWebFetch++
		}
		if sm.ProjectPath != "" {
			d.Projects[sm.ProjectPath]++
		}

		f := facets[sm.Identity]
		if f != nil {
			d.SessionsWithFacets++
			d.mergeFacet(f)
		}
		d.appendSummary(sm, f)
	}

	d.SessionsWithoutFacets = d.TotalSessions - d.SessionsWithFacets

	sort.Strings(dates)
	if len(dates) > 0 {
		d.DateRange.Start = dates[0]
		d.DateRange.End = dates[len(dates)-1]
	}

	if len(d.UserResponseTimes) > 0 {
		sorted := append([]float64(nil), d.UserResponseTimes...)
		sort.Float64s(sorted)
		d.MedianResponseTime = sorted[len(sorted)/2]
		var sum float64
		for _, rt := range sorted {
			sum += rt
		}
		d.AvgResponseTime = sum / float64(len(sorted))
	}

	uniqueDays := map[string]bool{}
	for _, day := range dates {
		uniqueDays[day] = true
	}
	d.DaysActive = len(uniqueDays)
	if d.DaysActive > 0 {
		d.MessagesPerDay = float64(d.TotalMessages) / float64(d.DaysActive)
	}
	return d
}

func (d *Data) mergeFacet(f *facet.Facet) {
	if f.IsWarmupOnly() {
		d.WarmupSessions++
		return
	}
	for k, v := range f.GoalCategories {
		if v > 0 {
			d.GoalCategories[k] += v
		}
	}
	if f.Outcome != "" {
		d.Outcomes[f.Outcome]++
	}
	for k, v := range f.SatisfactionCounts {
		if v > 0 {
			d.Satisfaction[k] += v
		}
	}
	if f.Helpfulness != "" {
		d.Helpfulness[f.Helpfulness]++
	}
	if f.SessionType != "" {
		d.SessionTypes[f.SessionType]++
	}
	for k, v := range f.FrictionCounts {
		if v > 0 {
			d.Friction[k] += v
		}
	}
	if f.PrimarySuccess != "" && f.PrimarySuccess != "none" {
		d.Success[f.PrimarySuccess]++
	}
}

func (d *Data) appendSummary(sm *metrics.Metrics, f *facet.Facet) {
	if len(d.SessionSummaries) >= maxSessionSummaries {
		return
	}
	summary := sm.Summary
	if summary == "" {
		summary = sm.FirstPrompt
	}
	s := SessionSummary{
		ID:      shortID(sm.Identity.SessionID),
		Summary: summary,
	}
	if !sm.StartTime.IsZero() {
		s.Date = sm.StartTime.UTC().Format("2006-01-02")
	}
	if f != nil {
		s.Goal = f.UnderlyingGoal
	}
	d.SessionSummaries = append(d.SessionSummaries, s)
}

func mergeCounts(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
