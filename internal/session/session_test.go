package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProjectPath(t *testing.T) {
	t.Run("replaces path separators", func(t *testing.T) {
		assert.Equal(t, "-home-joe-src-pm", HashProjectPath("/home/joe/src/pm"))
	})

	t.Run("trailing slashes do not change the hash", func(t *testing.T) {
		assert.Equal(t, HashProjectPath("/home/joe/src/pm"), HashProjectPath("/home/joe/src/pm/"))
		assert.Equal(t, HashProjectPath("/home/joe/src/pm"), HashProjectPath("/home/joe/src/pm///"))
	})

	t.Run("case sensitive", func(t *testing.T) {
		assert.NotEqual(t, HashProjectPath("/home/Joe"), HashProjectPath("/home/joe"))
	})

	t.Run("identical paths on different machines merge", func(t *testing.T) {
		// Same absolute path, computed twice, must always agree.
		a := HashProjectPath("/Users/joe/work/api-server")
		b := HashProjectPath("/Users/joe/work/api-server")
		assert.Equal(t, a, b)
	})

	t.Run("dots and underscores become dashes", func(t *testing.T) {
		assert.Equal(t, "-srv-my-app-v2", HashProjectPath("/srv/my_app.v2"))
	})
}

func TestIdentityToken(t *testing.T) {
	id := Identity{ProjectHash: "-home-joe-src-pm", SessionID: "abc123"}
	assert.Equal(t, "-home-joe-src-pm--abc123", id.Token())
	assert.Equal(t, "-home-joe-src-pm/abc123", id.String())
}

func TestContentUnmarshal(t *testing.T) {
	t.Run("string form", func(t *testing.T) {
		var c Content
		require.NoError(t, json.Unmarshal([]byte(`"hello"`), &c))
		assert.Equal(t, "hello", c.Text)
		assert.Nil(t, c.Blocks)
		assert.Equal(t, []string{"hello"}, c.TextParts())
	})

	t.Run("block array form", func(t *testing.T) {
		var c Content
		raw := `[{"type":"text","text":"hi"},{"type":"tool_use","name":"Bash","input":{"command":"ls"}}]`
		require.NoError(t, json.Unmarshal([]byte(raw), &c))
		require.Len(t, c.Blocks, 2)
		assert.Equal(t, "Bash", c.Blocks[1].Name)
		assert.Equal(t, []string{"hi"}, c.TextParts())
	})

	t.Run("tool result with nested content", func(t *testing.T) {
		var c Content
		raw := `[{"type":"tool_result","is_error":true,"content":[{"type":"text","text":"exit code 1"}]}]`
		require.NoError(t, json.Unmarshal([]byte(raw), &c))
		require.Len(t, c.Blocks, 1)
		assert.True(t, c.Blocks[0].IsError)
		assert.Equal(t, "exit code 1", string(c.Blocks[0].Content))
	})
}

func writeSession(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("skips corrupt lines and counts them", func(t *testing.T) {
		lines := []string{
			`{"type":"user","timestamp":"2026-08-01T10:00:00Z","message":{"role":"user","content":"fix the bug"}}`,
			`{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"on it"}]}}`,
			`{not valid json`,
			`{"type":"user","message":{"role":"user","content":"thanks"}}`,
		}
		rec, err := Load(writeSession(t, lines), Identity{SessionID: "s1"})
		require.NoError(t, err)
		assert.Len(t, rec.Entries, 3)
		assert.Equal(t, 1, rec.SkippedLines)
	})

	t.Run("one corrupt line among many", func(t *testing.T) {
		var lines []string
		for i := 0; i < 49; i++ {
			lines = append(lines, `{"type":"user","message":{"role":"user","content":"msg"}}`)
		}
		lines = append(lines, `{"truncated`)
		rec, err := Load(writeSession(t, lines), Identity{SessionID: "s2"})
		require.NoError(t, err)
		assert.Len(t, rec.Entries, 49)
		assert.Equal(t, 1, rec.SkippedLines)
	})

	t.Run("ignores non-message entry types", func(t *testing.T) {
		lines := []string{
			`{"type":"progress","data":{}}`,
			`{"type":"user","message":{"role":"user","content":"hi"}}`,
		}
		rec, err := Load(writeSession(t, lines), Identity{SessionID: "s3"})
		require.NoError(t, err)
		assert.Len(t, rec.Entries, 1)
		assert.Equal(t, 0, rec.SkippedLines)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.jsonl"), Identity{})
		assert.Error(t, err)
	})
}

func TestFirstCwd(t *testing.T) {
	lines := []string{
		`{"type":"user","message":{"role":"user","content":"hi"}}`,
		`{"type":"user","cwd":"/home/joe/src/pm","message":{"role":"user","content":"again"}}`,
	}
	rec, err := Load(writeSession(t, lines), Identity{})
	require.NoError(t, err)
	assert.Equal(t, "/home/joe/src/pm", rec.FirstCwd())
}

func TestIsAnalysisArtifact(t *testing.T) {
	t.Run("detects analysis prompt", func(t *testing.T) {
		rec := &Record{Entries: []Entry{
			{Type: "user", Message: &Message{Content: Content{Text: "Analyze this.\n\nRESPOND WITH ONLY A VALID JSON OBJECT matching this schema"}}},
		}}
		assert.True(t, IsAnalysisArtifact(rec))
	})

	t.Run("normal session", func(t *testing.T) {
		rec := &Record{Entries: []Entry{
			{Type: "user", Message: &Message{Content: Content{Text: "please add a login page"}}},
		}}
		assert.False(t, IsAnalysisArtifact(rec))
	})

	t.Run("marker past the first five user entries is ignored", func(t *testing.T) {
		var entries []Entry
		for i := 0; i < 6; i++ {
			entries = append(entries, Entry{Type: "user", Message: &Message{Content: Content{Text: "normal"}}})
		}
		entries = append(entries, Entry{Type: "user", Message: &Message{Content: Content{Text: "record_facets"}}})
		assert.False(t, IsAnalysisArtifact(&Record{Entries: entries}))
	})
}

func TestSerialize(t *testing.T) {
	rec := &Record{Entries: []Entry{
		{Type: "user", Message: &Message{Content: Content{Text: "please fix the flaky test in foo_test.go"}}},
		{Type: "assistant", Message: &Message{Content: Content{Blocks: []Block{
			{Type: "text", Text: "Looking at it now."},
			{Type: "tool_use", Name: "Read"},
		}}}},
		{Type: "user", Message: &Message{Content: Content{Blocks: []Block{
			{Type: "tool_result", Content: "ok"},
		}}}},
	}}

	t.Run("renders roles and tools", func(t *testing.T) {
		out := Serialize(rec, SerializeOptions{UserMessageLimit: 2000, AssistantMessageLimit: 1000})
		assert.Contains(t, out, "[User]: please fix the flaky test")
		assert.Contains(t, out, "[Assistant]: Looking at it now.")
		assert.Contains(t, out, "[Tool: Read]")
		// tool_result blocks carry no transcript text
		assert.Equal(t, 1, strings.Count(out, "[User]:"))
	})

	t.Run("truncates long messages", func(t *testing.T) {
		long := &Record{Entries: []Entry{
			{Type: "user", Message: &Message{Content: Content{Text: strings.Repeat("x", 5000)}}},
		}}
		out := Serialize(long, SerializeOptions{UserMessageLimit: 100, AssistantMessageLimit: 100})
		assert.Equal(t, "[User]: "+strings.Repeat("x", 100), out)
	})

	t.Run("zero limit means no truncation", func(t *testing.T) {
		long := &Record{Entries: []Entry{
			{Type: "user", Message: &Message{Content: Content{Text: strings.Repeat("y", 300)}}},
		}}
		out := Serialize(long, SerializeOptions{})
		assert.Contains(t, out, strings.Repeat("y", 300))
	})
}
