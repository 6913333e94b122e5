// Package session defines session identity and the transcript data model
// shared by discovery, metrics extraction, and facet analysis.
package session

import (
	"regexp"
	"strings"
	"time"
)

// PathHashVersion identifies the project path hashing scheme. Bump this if
// the normalization or encoding below ever changes; cached facets and synced
// session trees from different machines only merge correctly when both sides
// used the same scheme.
const PathHashVersion = 1

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// HashProjectPath maps an absolute project path to the stable directory name
// used under the projects root. Normalization: trailing slashes are stripped,
// case is preserved (paths are case-sensitive), and every non-alphanumeric
// byte becomes a dash. Identical absolute paths on different machines produce
// identical hashes, which is what lets synced sessions merge instead of
// duplicating.
func HashProjectPath(abs string) string {
	for len(abs) > 1 && strings.HasSuffix(abs, "/") {
		abs = strings.TrimSuffix(abs, "/")
	}
	return unsafePathChars.ReplaceAllString(abs, "-")
}

// Identity is the stable key for one logical session: the project path hash
// plus the session file name (without extension). Stable across re-runs and
// across machines for the same logical project.
type Identity struct {
	ProjectHash string
	SessionID   string
}

// Token renders the identity as a filename-safe cache key. Both halves are
// already restricted to [A-Za-z0-9-] so the double dash is an unambiguous
// separator.
func (id Identity) Token() string {
	return id.ProjectHash + "--" + id.SessionID
}

func (id Identity) String() string {
	return id.ProjectHash + "/" + id.SessionID
}

// Entry is one parsed line of a JSONL transcript.
type Entry struct {
	Type      string   `json:"type"`
	Timestamp string   `json:"timestamp,omitempty"`
	Cwd       string   `json:"cwd,omitempty"`
	Message   *Message `json:"message,omitempty"`
	Summary   string   `json:"summary,omitempty"`
}

// Time parses the entry timestamp. Returns the zero time if absent or
// malformed.
func (e *Entry) Time() time.Time {
	if e.Timestamp == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Message is the API message embedded in a transcript entry.
type Message struct {
	Role    string  `json:"role,omitempty"`
	Content Content `json:"content,omitempty"`
	Usage   *Usage  `json:"usage,omitempty"`
}

// Usage holds per-message token counters.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Record is one fully loaded session transcript. Immutable once read.
type Record struct {
	Identity     Identity
	Path         string
	Entries      []Entry
	SkippedLines int
}

// FirstCwd returns the first recorded working directory in the transcript,
// used to recover a project display name from its path hash.
func (r *Record) FirstCwd() string {
	for i := range r.Entries {
		if r.Entries[i].Cwd != "" {
			return r.Entries[i].Cwd
		}
	}
	return ""
}
