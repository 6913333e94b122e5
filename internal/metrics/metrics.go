// Package metrics derives per-session usage statistics from a transcript.
// Extraction is pure and deterministic: no network, no caching, same input
// bytes always produce the same output. It is cheap enough to redo every run.
package metrics

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/joescharf/insights/internal/session"
)

// languageByExt maps file extensions seen in tool inputs to display names.
var languageByExt = map[string]string{
	".ts": "TypeScript", ".tsx": "TypeScript", ".js": "JavaScript",
	".jsx": "JavaScript", ".py": "Python", ".rb": "Ruby", ".go": "Go",
	".rs": "Rust", ".java": "Java", ".md": "Markdown", ".json": "JSON",
	".yaml": "YAML", ".yml": "YAML", ".sh": "Shell", ".css": "CSS",
	".html": "HTML", ".zig": "Zig", ".c": "C", ".cpp": "C++",
	".h": "C/C++ Header", ".sql": "SQL", ".toml": "TOML",
}

const interruptedMarker = "[Request interrupted by user"

// Metrics is the deterministic, purely local aggregate over one session.
type Metrics struct {
	Identity    session.Identity `json:"-"`
	StartTime   time.Time        `json:"start_time"`
	Duration    time.Duration    `json:"-"`
	DurationMin int              `json:"duration_minutes"`

	// ProjectPath is the first working directory seen in the transcript.
	ProjectPath string `json:"project_path"`

	// Summary is the transcript's own summary entry, when one exists.
	Summary string `json:"summary,omitempty"`

	UserMessages      int `json:"user_message_count"`
	AssistantMessages int `json:"assistant_message_count"`

	ToolCounts          map[string]int `json:"tool_counts"`
	Languages           map[string]int `json:"languages"`
	GitCommits          int            `json:"git_commits"`
	GitPushes           int            `json:"git_pushes"`
	InputTokens         int            `json:"input_tokens"`
	OutputTokens        int            `json:"output_tokens"`
	FirstPrompt         string         `json:"first_prompt"`
	Interruptions       int            `json:"user_interruptions"`
	ResponseTimes       []float64      `json:"user_response_times"`
	ToolErrors          int            `json:"tool_errors"`
	ToolErrorCategories map[string]int `json:"tool_error_categories"`

	UsesTaskAgent bool `json:"uses_task_agent"`
	UsesMCP       bool `json:"uses_mcp"`
	UsesWebSearch bool `json:"uses_web_search"`
	UsesWebFetch  bool `json:"uses_web_fetch"`

	LinesAdded    int   `json:"lines_added"`
	LinesRemoved  int   `json:"lines_removed"`
	FilesModified int   `json:"files_modified"`
	MessageHours  []int `json:"message_hours"`

	// SkippedLines carries the loader's count of unparseable transcript
	// lines, for observability.
	SkippedLines int `json:"skipped_lines"`
}

// Extract computes Metrics for one session record.
func Extract(rec *session.Record) *Metrics {
	m := &Metrics{
		Identity:            rec.Identity,
		ToolCounts:          map[string]int{},
		Languages:           map[string]int{},
		ToolErrorCategories: map[string]int{},
		SkippedLines:        rec.SkippedLines,
	}

	filesModified := map[string]bool{}
	var startTime, endTime, lastAssistant time.Time

	m.ProjectPath = rec.FirstCwd()

	for i := range rec.Entries {
		e := &rec.Entries[i]
		if e.Type == "summary" && e.Summary != "" && m.Summary == "" {
			m.Summary = e.Summary
		}
		if e.Message == nil {
			continue
		}
		ts := e.Time()

		switch e.Type {
		case "assistant":
			m.AssistantMessages++
			if !ts.IsZero() {
				lastAssistant = ts
			}
			if u := e.Message.Usage; u != nil {
				m.InputTokens += u.InputTokens
				m.OutputTokens += u.OutputTokens
			}
			for _, b := range e.Message.Content.Blocks {
				if b.Type != "tool_use" {
					continue
				}
				m.recordToolUse(b, filesModified)
			}

		case "user":
			text := firstText(e.Message.Content)
			if text != "" {
				m.UserMessages++
				if m.FirstPrompt == "" {
					m.FirstPrompt = clip(text, 200)
				}
				if !ts.IsZero() {
					m.MessageHours = append(m.MessageHours, ts.Hour())
					if startTime.IsZero() {
						startTime = ts
					}
					endTime = ts
					if !lastAssistant.IsZero() {
						delta := ts.Sub(lastAssistant).Seconds()
						if delta > 2 && delta < 3600 {
							m.ResponseTimes = append(m.ResponseTimes, delta)
						}
					}
				}
			}
			m.recordToolErrors(e.Message.Content)
			if hasInterruption(e.Message.Content) {
				m.Interruptions++
			}
		}
	}

	m.FilesModified = len(filesModified)
	if !startTime.IsZero() && !endTime.IsZero() {
		m.StartTime = startTime
		m.Duration = endTime.Sub(startTime)
		m.DurationMin = int(m.Duration.Minutes())
		if m.DurationMin < 1 {
			m.DurationMin = 1
		}
	}
	return m
}

func (m *Metrics) recordToolUse(b session.Block, filesModified map[string]bool) {
	name := b.Name
	m.ToolCounts[name]++
	switch {
	case name == "Task":
		m.UsesTaskAgent = true
	case strings.HasPrefix(name, "mcp__"):
		m.UsesMCP = true
	case name == "WebSearch":
		m.UsesWebSearch = true
	case name == "WebFetch":
		m.UsesWebFetch = true
	}

	if b.Input == nil {
		return
	}
	if fp, _ := b.Input["file_path"].(string); fp != "" {
		ext := strings.ToLower(filepath.Ext(fp))
		if lang, ok := languageByExt[ext]; ok {
			m.Languages[lang]++
		}
		if name == "Edit" || name == "Write" {
			filesModified[fp] = true
		}
	}
	if name == "Write" {
		if content, _ := b.Input["content"].(string); content != "" {
			m.LinesAdded += strings.Count(content, "\n") + 1
		}
	}
	if name == "Edit" {
		oldStr, _ := b.Input["old_string"].(string)
		newStr, _ := b.Input["new_string"].(string)
		oldLines, newLines := lineCount(oldStr), lineCount(newStr)
		m.LinesAdded += max(0, newLines-oldLines)
		m.LinesRemoved += max(0, oldLines-newLines)
	}
	if cmd, _ := b.Input["command"].(string); cmd != "" {
		if strings.Contains(cmd, "git commit") {
			m.GitCommits++
		}
		if strings.Contains(cmd, "git push") {
			m.GitPushes++
		}
	}
}

func (m *Metrics) recordToolErrors(c session.Content) {
	for _, b := range c.Blocks {
		if b.Type != "tool_result" || !b.IsError {
			continue
		}
		m.ToolErrors++
		m.ToolErrorCategories[categorizeToolError(string(b.Content))]++
	}
}

// categorizeToolError buckets a tool failure message. Order matters: the
// first matching category wins.
func categorizeToolError(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "exit code"):
		return "Command Failed"
	case strings.Contains(lower, "rejected"), strings.Contains(lower, "doesn't want"):
		return "User Rejected"
	case strings.Contains(lower, "string to replace not found"), strings.Contains(lower, "no changes"):
		return "Edit Failed"
	case strings.Contains(lower, "modified since read"):
		return "File Changed"
	case strings.Contains(lower, "exceeds maximum"), strings.Contains(lower, "too large"):
		return "File Too Large"
	case strings.Contains(lower, "file not found"), strings.Contains(lower, "does not exist"):
		return "File Not Found"
	default:
		return "Other"
	}
}

func hasInterruption(c session.Content) bool {
	for _, text := range c.TextParts() {
		if strings.Contains(text, interruptedMarker) {
			return true
		}
	}
	return false
}

func firstText(c session.Content) string {
	for _, text := range c.TextParts() {
		if strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
