// Package facet defines the structured result of one external analysis call
// over a session, and the durable cache that guarantees each session is
// analyzed at most once across the lifetime of the cache.
package facet

// Facet is the externally derived analysis of one session. Immutable once
// produced.
type Facet struct {
	SessionID          string         `json:"session_id"`
	Model              string         `json:"model,omitempty"`
	UnderlyingGoal     string         `json:"underlying_goal"`
	GoalCategories     map[string]int `json:"goal_categories"`
	Outcome            string         `json:"outcome"`
	SatisfactionCounts map[string]int `json:"user_satisfaction_counts"`
	Helpfulness        string         `json:"claude_helpfulness"`
	SessionType        string         `json:"session_type"`
	FrictionCounts     map[string]int `json:"friction_counts"`
	FrictionDetail     string         `json:"friction_detail"`
	PrimarySuccess     string         `json:"primary_success"`
	BriefSummary       string         `json:"brief_summary"`
}

// IsWarmupOnly reports whether the only active goal category is cache
// warmup. Warmup-only sessions are excluded from aggregate statistics.
func (f *Facet) IsWarmupOnly() bool {
	active := 0
	warmup := false
	for cat, n := range f.GoalCategories {
		if n <= 0 {
			continue
		}
		active++
		if cat == "warmup_minimal" {
			warmup = true
		}
	}
	return active == 1 && warmup
}
