package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/insights/internal/session"
)

func userEntry(ts, text string) session.Entry {
	return session.Entry{
		Type:      "user",
		Timestamp: ts,
		Message:   &session.Message{Role: "user", Content: session.Content{Text: text}},
	}
}

func assistantEntry(ts string, usage *session.Usage, blocks ...session.Block) session.Entry {
	return session.Entry{
		Type:      "assistant",
		Timestamp: ts,
		Message:   &session.Message{Role: "assistant", Content: session.Content{Blocks: blocks}, Usage: usage},
	}
}

func toolUse(name string, input map[string]any) session.Block {
	return session.Block{Type: "tool_use", Name: name, Input: input}
}

func TestExtract(t *testing.T) {
	rec := &session.Record{
		Identity: session.Identity{ProjectHash: "-home-joe-src-pm", SessionID: "s1"},
		Entries: []session.Entry{
			userEntry("2026-08-01T09:00:00Z", "please add a login page"),
			assistantEntry("2026-08-01T09:00:30Z",
				&session.Usage{InputTokens: 1200, OutputTokens: 300},
				session.Block{Type: "text", Text: "Sure."},
				toolUse("Read", map[string]any{"file_path": "/src/app/login.ts"}),
				toolUse("Edit", map[string]any{
					"file_path":  "/src/app/login.ts",
					"old_string": "a",
					"new_string": "a\nb\nc",
				}),
				toolUse("Bash", map[string]any{"command": "git commit -m 'login'"}),
			),
			userEntry("2026-08-01T09:01:00Z", "looks good, push it"),
			assistantEntry("2026-08-01T09:01:20Z",
				&session.Usage{InputTokens: 800, OutputTokens: 100},
				toolUse("Bash", map[string]any{"command": "git push origin main"}),
			),
			userEntry("2026-08-01T09:05:00Z", "thanks"),
		},
		SkippedLines: 1,
	}

	m := Extract(rec)

	t.Run("message and token counts", func(t *testing.T) {
		assert.Equal(t, 3, m.UserMessages)
		assert.Equal(t, 2, m.AssistantMessages)
		assert.Equal(t, 2000, m.InputTokens)
		assert.Equal(t, 400, m.OutputTokens)
	})

	t.Run("tool and language counts", func(t *testing.T) {
		assert.Equal(t, 1, m.ToolCounts["Read"])
		assert.Equal(t, 1, m.ToolCounts["Edit"])
		assert.Equal(t, 2, m.ToolCounts["Bash"])
		assert.Equal(t, 2, m.Languages["TypeScript"])
	})

	t.Run("git activity", func(t *testing.T) {
		assert.Equal(t, 1, m.GitCommits)
		assert.Equal(t, 1, m.GitPushes)
	})

	t.Run("line deltas and modified files", func(t *testing.T) {
		assert.Equal(t, 2, m.LinesAdded)
		assert.Equal(t, 0, m.LinesRemoved)
		assert.Equal(t, 1, m.FilesModified)
	})

	t.Run("timing", func(t *testing.T) {
		assert.Equal(t, 5, m.DurationMin)
		assert.Equal(t, "2026-08-01T09:00:00Z", m.StartTime.Format("2006-01-02T15:04:05Z"))
		// user replies 30s and 220s after assistant turns
		assert.Len(t, m.ResponseTimes, 2)
		assert.InDelta(t, 30.0, m.ResponseTimes[0], 0.01)
		assert.InDelta(t, 220.0, m.ResponseTimes[1], 0.01)
	})

	t.Run("first prompt and skipped lines carried", func(t *testing.T) {
		assert.Equal(t, "please add a login page", m.FirstPrompt)
		assert.Equal(t, 1, m.SkippedLines)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, m, Extract(rec))
	})
}

func TestExtractToolErrors(t *testing.T) {
	rec := &session.Record{Entries: []session.Entry{
		{Type: "user", Message: &session.Message{Content: session.Content{Blocks: []session.Block{
			{Type: "tool_result", IsError: true, Content: "command failed with exit code 1"},
			{Type: "tool_result", IsError: true, Content: "File not found: /tmp/x"},
			{Type: "tool_result", IsError: true, Content: "something odd happened"},
			{Type: "tool_result", IsError: false, Content: "fine"},
		}}}},
	}}

	m := Extract(rec)
	assert.Equal(t, 3, m.ToolErrors)
	assert.Equal(t, 1, m.ToolErrorCategories["Command Failed"])
	assert.Equal(t, 1, m.ToolErrorCategories["File Not Found"])
	assert.Equal(t, 1, m.ToolErrorCategories["Other"])
}

func TestExtractInterruptions(t *testing.T) {
	rec := &session.Record{Entries: []session.Entry{
		userEntry("", "[Request interrupted by user]"),
		userEntry("", "carry on"),
	}}
	m := Extract(rec)
	assert.Equal(t, 1, m.Interruptions)
}

func TestExtractFeatureFlags(t *testing.T) {
	rec := &session.Record{Entries: []session.Entry{
		assistantEntry("", nil,
			toolUse("Task", nil),
			toolUse("mcp__pm__list_projects", nil),
			toolUse("WebSearch", nil),
		),
	}}
	m := Extract(rec)
	assert.True(t, m.UsesTaskAgent)
	assert.True(t, m.UsesMCP)
	assert.True(t, m.UsesWebSearch)
	assert.False(t, m.UsesWebFetch)
}

func TestExtractEmptySession(t *testing.T) {
	m := Extract(&session.Record{})
	assert.Equal(t, 0, m.UserMessages)
	assert.Equal(t, 0, m.DurationMin)
	assert.True(t, m.StartTime.IsZero())
}

func TestCategorizeToolError(t *testing.T) {
	cases := map[string]string{
		"process exited with exit code 2":     "Command Failed",
		"The user rejected the edit":          "User Rejected",
		"String to replace not found in file": "Edit Failed",
		"File has been modified since read":   "File Changed",
		"response exceeds maximum length":     "File Too Large",
		"path does not exist":                 "File Not Found",
		"mystery":                             "Other",
	}
	for msg, want := range cases {
		assert.Equal(t, want, categorizeToolError(msg), msg)
	}
}

func TestExtractProjectPathAndSummary(t *testing.T) {
	rec := &session.Record{
		Identity: session.Identity{ProjectHash: "-srv-web", SessionID: "s9"},
		Entries: []session.Entry{
			{Type: "summary", Summary: "Added OAuth login flow"},
			{
				Type:      "user",
				Timestamp: "2026-08-02T11:00:00Z",
				Cwd:       "/srv/web",
				Message:   &session.Message{Role: "user", Content: session.Content{Text: "hi"}},
			},
		},
	}

	m := Extract(rec)
	assert.Equal(t, "/srv/web", m.ProjectPath)
	assert.Equal(t, "Added OAuth login flow", m.Summary)
}
