package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Transcript lines occasionally carry very large tool results; size the
// scanner buffer well above the bufio default.
const maxLineBytes = 10 * 1024 * 1024

// Load reads one JSONL transcript file into a Record. Malformed or truncated
// lines are skipped and counted, never fatal: one corrupt line must not cost
// the whole session.
func Load(path string, id Identity) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	rec := &Record{Identity: id, Path: path}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			rec.SkippedLines++
			continue
		}
		switch entry.Type {
		case "user", "assistant", "system", "summary":
			rec.Entries = append(rec.Entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	return rec, nil
}

// analysisMarkers identify transcripts produced by this tool's own structured
// analysis prompts. Those sessions are artifacts, not user work, and are
// excluded from analysis.
var analysisMarkers = []string{
	"RESPOND WITH ONLY A VALID JSON OBJECT",
	"record_facets",
}

// IsAnalysisArtifact reports whether the transcript begins with one of our own
// analysis prompts. Only the first few user entries are inspected.
func IsAnalysisArtifact(rec *Record) bool {
	checked := 0
	for i := range rec.Entries {
		if checked >= 5 {
			break
		}
		e := &rec.Entries[i]
		if e.Type != "user" || e.Message == nil {
			continue
		}
		checked++
		for _, text := range e.Message.Content.TextParts() {
			for _, marker := range analysisMarkers {
				if strings.Contains(text, marker) {
					return true
				}
			}
		}
	}
	return false
}
