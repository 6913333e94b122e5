// Package discovery enumerates session transcript files under a projects
// root and assigns each a stable identity. It is read-only: the tree is
// populated by an external sync process.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joescharf/insights/internal/session"
)

// Session is one discovered transcript file with its identity and the file
// metadata filters operate on.
type Session struct {
	Identity session.Identity
	Path     string
	ModTime  time.Time
	Size     int64

	// IsAgent marks agent sub-sessions (agent-*.jsonl). They keep a
	// distinct identity but are excluded from top-level session counts.
	IsAgent bool

	// LikelyTooShort marks files under the configured minimum size. They
	// are surfaced as a separate count, not hard-filtered, unless the
	// scanner is configured to exclude them.
	LikelyTooShort bool
}

// Filter narrows a scan. Zero values mean no filtering.
type Filter struct {
	// ProjectGlob matches against the resolved project display name (the
	// recorded working directory), not the path hash.
	ProjectGlob string

	// After keeps only files modified at or after this time.
	After time.Time

	// MinSessionBytes marks smaller files as likely too short.
	MinSessionBytes int64

	// ExcludeShort hard-filters files under MinSessionBytes.
	ExcludeShort bool
}

// Result is a completed scan: the sessions that passed the filters plus
// counts for everything that did not.
type Result struct {
	Sessions       []Session
	MainCount      int
	AgentCount     int
	ShortCount     int
	FilteredOut    int
	SkippedSubtree []string
}

// Scanner walks a projects root directory. A scan has no side effects on the
// tree and is restartable. Not safe for concurrent use (the display-name
// cache is unsynchronized); discovery is a synchronous phase.
type Scanner struct {
	Root string

	displayNames map[string]string
}

// Scan enumerates *.jsonl files one level of project directories deep,
// including nested subagent directories. Unreadable subtrees are recorded
// and skipped rather than failing the scan. Sessions are returned newest
// first.
func (s *Scanner) Scan(filter Filter) (*Result, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return &Result{}, nil
		}
		return nil, fmt.Errorf("read projects root: %w", err)
	}

	res := &Result{}
	for _, dir := range entries {
		if !dir.IsDir() {
			continue
		}
		projectHash := dir.Name()
		projectDir := filepath.Join(s.Root, projectHash)

		err := filepath.WalkDir(projectDir, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				res.SkippedSubtree = append(res.SkippedSubtree, path)
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(path, ".jsonl") {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				res.SkippedSubtree = append(res.SkippedSubtree, path)
				return nil
			}

			name := strings.TrimSuffix(d.Name(), ".jsonl")
			sess := Session{
				Identity: session.Identity{ProjectHash: projectHash, SessionID: name},
				Path:     path,
				ModTime:  info.ModTime(),
				Size:     info.Size(),
				IsAgent:  strings.HasPrefix(name, "agent-"),
			}
			if filter.MinSessionBytes > 0 && sess.Size < filter.MinSessionBytes {
				sess.LikelyTooShort = true
				res.ShortCount++
				if filter.ExcludeShort {
					res.FilteredOut++
					return nil
				}
			}
			if !filter.After.IsZero() && sess.ModTime.Before(filter.After) {
				res.FilteredOut++
				return nil
			}
			if filter.ProjectGlob != "" {
				display := s.DisplayName(path, projectHash)
				ok, err := filepath.Match(filter.ProjectGlob, display)
				if err != nil {
					return fmt.Errorf("bad project glob %q: %w", filter.ProjectGlob, err)
				}
				if !ok {
					res.FilteredOut++
					return nil
				}
			}

			res.Sessions = append(res.Sessions, sess)
			if sess.IsAgent {
				res.AgentCount++
			} else {
				res.MainCount++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(res.Sessions, func(i, j int) bool {
		return res.Sessions[i].ModTime.After(res.Sessions[j].ModTime)
	})
	return res, nil
}

// Projects returns the distinct project hashes present in a result.
func (r *Result) Projects() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range r.Sessions {
		if !seen[s.Identity.ProjectHash] {
			seen[s.Identity.ProjectHash] = true
			out = append(out, s.Identity.ProjectHash)
		}
	}
	sort.Strings(out)
	return out
}
