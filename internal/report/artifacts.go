package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joescharf/insights/internal/aggregate"
)

// RunConfig is echoed into the raw dump so a report is reproducible.
type RunConfig struct {
	Model            string `json:"model"`
	FacetMaxTokens   int    `json:"facet_max_tokens"`
	SummaryMaxTokens int    `json:"summary_max_tokens"`
	SectionMaxTokens int    `json:"section_max_tokens"`
	MaxFacets        int    `json:"max_facets_for_report"`
	UserMsgChars     int    `json:"user_msg_chars"`
	AssistantChars   int    `json:"assistant_msg_chars"`
}

// Artifacts names the files one run produced.
type Artifacts struct {
	HTMLPath string
	JSONPath string
}

// WriteArtifacts saves the rendered report and a raw JSON dump next to it.
// Both files are created with mode 0600; transcripts are sensitive and the
// dump carries their summaries.
func WriteArtifacts(dir string, htmlContent []byte, d *aggregate.Data, ins *Insights, cfg RunConfig, now time.Time) (*Artifacts, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	stamp := now.Format("20060102-150405")
	a := &Artifacts{
		HTMLPath: filepath.Join(dir, fmt.Sprintf("claude-insights-%s.html", stamp)),
		JSONPath: filepath.Join(dir, fmt.Sprintf("claude-insights-%s.json", stamp)),
	}

	if err := os.WriteFile(a.HTMLPath, htmlContent, 0o600); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	raw, err := json.MarshalIndent(map[string]any{
		"aggregated": d,
		"insights":   ins,
		"config":     cfg,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode raw dump: %w", err)
	}
	if err := os.WriteFile(a.JSONPath, raw, 0o600); err != nil {
		return nil, fmt.Errorf("write raw dump: %w", err)
	}
	return a, nil
}
