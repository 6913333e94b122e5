package discovery

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Display-name recovery reads at most this many lines looking for a recorded
// working directory.
const maxLinesForDisplay = 25

// DisplayName recovers a human project name for a path-hash directory by
// reading one session's recorded working directory and taking its base name.
// Falls back to the raw hash when no cwd is recoverable. Results are cached
// per project hash for the life of the scanner.
func (s *Scanner) DisplayName(sessionPath, projectHash string) string {
	if name, ok := s.displayNames[projectHash]; ok {
		return name
	}

	name := projectHash
	if cwd := firstCwdInFile(sessionPath); cwd != "" {
		name = filepath.Base(cwd)
	}

	if s.displayNames == nil {
		s.displayNames = map[string]string{}
	}
	s.displayNames[projectHash] = name
	return name
}

func firstCwdInFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for lines := 0; scanner.Scan() && lines < maxLinesForDisplay; lines++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry struct {
			Cwd string `json:"cwd"`
		}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Cwd != "" {
			return entry.Cwd
		}
	}
	return ""
}
