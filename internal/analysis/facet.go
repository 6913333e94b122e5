package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/joescharf/insights/internal/facet"
)

const facetSystemPrompt = `Analyze this Claude Code session and extract structured facets.

CRITICAL GUIDELINES:

1. **goal_categories**: Count ONLY what the USER explicitly asked for.
   - DO NOT count Claude's autonomous codebase exploration
   - DO NOT count work Claude decided to do on its own
   - ONLY count when user says "can you...", "please...", "I need...", "let's..."

2. **user_satisfaction_counts**: Base ONLY on explicit user signals.
   - "Yay!", "great!", "perfect!" -> happy
   - "thanks", "looks good", "that works" -> satisfied
   - "ok, now let's..." (continuing without complaint) -> likely_satisfied
   - "that's not right", "try again" -> dissatisfied
   - "this is broken", "I give up" -> frustrated

3. **friction_counts**: Be specific about what went wrong.
   - misunderstood_request: Claude interpreted incorrectly
   - wrong_approach: Right goal, wrong solution method
   - buggy_code: Code didn't work correctly
   - user_rejected_action: User said no/stop to a tool call
   - excessive_changes: Over-engineered or changed too much

4. If very short or just warmup, use warmup_minimal for goal_category

SESSION:
`

const facetSchema = `

RESPOND WITH ONLY A VALID JSON OBJECT matching this schema:
{
  "underlying_goal": "What the user fundamentally wanted to achieve",
  "goal_categories": {"category_name": count, ...},
  "outcome": "fully_achieved|mostly_achieved|partially_achieved|not_achieved|unclear_from_transcript",
  "user_satisfaction_counts": {"level": count, ...},
  "claude_helpfulness": "unhelpful|slightly_helpful|moderately_helpful|very_helpful|essential",
  "session_type": "single_task|multi_task|iterative_refinement|exploration|quick_question",
  "friction_counts": {"friction_type": count, ...},
  "friction_detail": "One sentence describing friction or empty",
  "primary_success": "none|fast_accurate_search|correct_code_edits|good_explanations|proactive_help|multi_file_changes|good_debugging",
  "brief_summary": "One sentence: what user wanted and whether they got it"
}`

const summarizePrompt = `Summarize this portion of a Claude Code session transcript. Focus on:
1. What the user asked for
2. What Claude did (tools used, files modified)
3. Any friction or issues
4. The outcome

Keep it detailed - capture specific file names, error messages, and user feedback.
Preserve technical specifics that would help analyze the session quality.

TRANSCRIPT CHUNK:
`

// FacetRequest carries one session's analysis input.
type FacetRequest struct {
	SessionID   string
	ProjectName string
	StartTime   string
	DurationMin int
	Transcript  string
}

// header renders session metadata prepended to the transcript.
func (r *FacetRequest) header() string {
	shortID := r.SessionID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	return fmt.Sprintf("Session: %s\nDate: %s\nProject: %s\nDuration: %d min\n\n",
		shortID, r.StartTime, r.ProjectName, r.DurationMin)
}

// FacetBudget bounds facet extraction calls.
type FacetBudget struct {
	FacetMaxTokens   int
	SummaryMaxTokens int

	// LongSessionChars triggers chunked summarization for transcripts
	// above this length; ChunkChars sizes the chunks.
	LongSessionChars int
	ChunkChars       int
}

// ExtractFacet analyzes one session transcript and returns its facet. Long
// transcripts are condensed first. The response must parse as the facet
// schema; anything else is a malformed-response failure.
func (c *Client) ExtractFacet(ctx context.Context, req FacetRequest, budget FacetBudget) (*facet.Facet, error) {
	transcript := req.header() + req.Transcript
	transcript, err := c.condense(ctx, transcript, budget)
	if err != nil {
		return nil, err
	}

	var f facet.Facet
	if err := c.CompleteJSON(ctx, facetSystemPrompt+transcript+facetSchema, budget.FacetMaxTokens, &f); err != nil {
		return nil, err
	}
	if f.Outcome == "" && f.UnderlyingGoal == "" {
		return nil, &Error{Kind: KindMalformed, Err: fmt.Errorf("facet response missing required fields")}
	}
	f.SessionID = req.SessionID
	f.Model = c.Model()
	return &f, nil
}

// condense summarizes an over-long transcript chunk by chunk. A failed chunk
// summary degrades to a clipped excerpt of the chunk rather than failing the
// whole session.
func (c *Client) condense(ctx context.Context, transcript string, budget FacetBudget) (string, error) {
	if budget.LongSessionChars <= 0 || len(transcript) <= budget.LongSessionChars {
		return transcript, nil
	}
	chunkSize := budget.ChunkChars
	if chunkSize <= 0 {
		chunkSize = budget.LongSessionChars
	}

	var summaries []string
	for start := 0; start < len(transcript); start += chunkSize {
		end := min(start+chunkSize, len(transcript))
		chunk := transcript[start:end]

		text, err := c.complete(ctx, summarizePrompt+chunk, budget.SummaryMaxTokens)
		if err != nil || text == "" {
			clip := min(len(chunk), budget.SummaryMaxTokens*4)
			text = chunk[:clip]
		}
		summaries = append(summaries, text)
	}
	return strings.Join(summaries, "\n\n---\n\n"), nil
}
