package analysis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const facetReply = `{
  "underlying_goal": "Fix a failing test in the auth package",
  "goal_categories": {"debugging": 1},
  "outcome": "fully_achieved",
  "user_satisfaction_counts": {"satisfied": 1},
  "claude_helpfulness": "very_helpful",
  "session_type": "single_task",
  "friction_counts": {},
  "friction_detail": "",
  "primary_success": "good_debugging",
  "brief_summary": "User wanted a test fixed and it was fixed."
}`

func TestExtractFacet(t *testing.T) {
	var seenPrompt string
	c := testClient(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		seenPrompt = prompt
		return facetReply, nil
	})

	req := FacetRequest{
		SessionID:   "0f8a3c21-9b11-4c2d-8a77-aaaaaaaaaaaa",
		ProjectName: "api-server",
		StartTime:   "2026-08-01T10:00:00Z",
		DurationMin: 12,
		Transcript:  "[User]: fix the test\n[Assistant]: done",
	}
	f, err := c.ExtractFacet(context.Background(), req, FacetBudget{FacetMaxTokens: 8192})
	require.NoError(t, err)

	assert.Equal(t, req.SessionID, f.SessionID)
	assert.Equal(t, "claude-test-model", f.Model)
	assert.Equal(t, "fully_achieved", f.Outcome)
	assert.Equal(t, 1, f.GoalCategories["debugging"])

	assert.Contains(t, seenPrompt, "Session: 0f8a3c21")
	assert.Contains(t, seenPrompt, "Project: api-server")
	assert.Contains(t, seenPrompt, "[User]: fix the test")
	assert.Contains(t, seenPrompt, "RESPOND WITH ONLY A VALID JSON OBJECT")
}

func TestExtractFacetMalformedShape(t *testing.T) {
	c := testClient(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return `{"unrelated": true}`, nil
	})

	_, err := c.ExtractFacet(context.Background(), FacetRequest{SessionID: "s"}, FacetBudget{FacetMaxTokens: 100})
	require.Error(t, err)
	assert.Equal(t, KindMalformed, KindOf(err))
}

func TestCondenseShortTranscriptUntouched(t *testing.T) {
	c := testClient(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		t.Fatal("short transcript must not trigger summarization")
		return "", nil
	})

	got, err := c.condense(context.Background(), "short", FacetBudget{LongSessionChars: 100})
	require.NoError(t, err)
	assert.Equal(t, "short", got)
}

func TestCondenseChunksLongTranscript(t *testing.T) {
	var chunks []string
	c := testClient(t, func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		chunks = append(chunks, prompt)
		return "summary", nil
	})

	transcript := strings.Repeat("a", 250)
	got, err := c.condense(context.Background(), transcript, FacetBudget{
		LongSessionChars: 100,
		ChunkChars:       100,
		SummaryMaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
	assert.Equal(t, "summary\n\n---\n\nsummary\n\n---\n\nsummary", got)
	for _, ch := range chunks {
		assert.Contains(t, ch, "Summarize this portion")
	}
}

func TestCondenseFailedChunkFallsBack(t *testing.T) {
	calls := 0
	c := NewClient("tok", "m", Options{MaxAttempts: 1, InitialBackoff: time.Millisecond})
	c.create = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		if calls == 1 {
			return "", &Error{Kind: KindServer, Err: assert.AnError}
		}
		return "summary", nil
	}

	transcript := strings.Repeat("b", 200)
	got, err := c.condense(context.Background(), transcript, FacetBudget{
		LongSessionChars: 100,
		ChunkChars:       100,
		SummaryMaxTokens: 10,
	})
	require.NoError(t, err)
	// First chunk degrades to a clipped excerpt, second summarizes fine.
	parts := strings.Split(got, "\n\n---\n\n")
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("b", 40), parts[0])
	assert.Equal(t, "summary", parts[1])
}
