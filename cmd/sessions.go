package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/insights/internal/discovery"
	"github.com/joescharf/insights/internal/facet"
	"github.com/joescharf/insights/internal/output"
)

var (
	sessionsProject string
	sessionsAfter   string
	sessionsAgents  bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List discovered session transcripts",
	Long: `List the session transcripts found under the Claude projects directory,
with their cache state. Agent sub-sessions are hidden unless --agents is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionsRun()
	},
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsProject, "project", "", "Only list sessions whose project matches this glob")
	sessionsCmd.Flags().StringVar(&sessionsAfter, "after", "", "Only list sessions modified on or after this date (YYYY-MM-DD)")
	sessionsCmd.Flags().BoolVar(&sessionsAgents, "agents", false, "Include agent sub-sessions")
	rootCmd.AddCommand(sessionsCmd)
}

func sessionsRun() error {
	var after time.Time
	if sessionsAfter != "" {
		t, err := time.Parse("2006-01-02", sessionsAfter)
		if err != nil {
			return fmt.Errorf("invalid --after date %q (expected YYYY-MM-DD)", sessionsAfter)
		}
		after = t
	}

	scanner := &discovery.Scanner{Root: projectsRoot()}
	res, err := scanner.Scan(discovery.Filter{
		ProjectGlob:     sessionsProject,
		After:           after,
		MinSessionBytes: viper.GetInt64("limits.min_session_bytes"),
	})
	if err != nil {
		return fmt.Errorf("scan sessions: %w", err)
	}
	if len(res.Sessions) == 0 {
		ui.Info("No sessions found under %s", projectsRoot())
		return nil
	}

	cache, err := facet.NewCache(viper.GetString("cache_dir"))
	if err != nil {
		return fmt.Errorf("open facet cache: %w", err)
	}

	table := ui.Table([]string{"Session", "Project", "Size", "Modified", "Analyzed"})
	shown, analyzed := 0, 0
	for _, s := range res.Sessions {
		if s.IsAgent && !sessionsAgents {
			continue
		}
		name := scanner.DisplayName(s.Path, s.Identity.ProjectHash)
		if s.IsAgent {
			name += " (agent)"
		}
		cached := output.Red("no")
		if cache.Has(s.Identity) {
			cached = output.Green("yes")
			analyzed++
		}
		id := s.Identity.SessionID
		if len(id) > 8 {
			id = id[:8]
		}
		_ = table.Append([]string{id, name, formatBytes(s.Size), timeAgo(s.ModTime), cached})
		shown++
	}
	_ = table.Render()

	fmt.Fprintln(ui.Out)
	ui.Info("%d sessions, %d analyzed (%d below size threshold)", shown, analyzed, res.ShortCount)
	return nil
}

// timeAgo returns a human-readable duration from a time.
func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	}
}

// formatBytes returns a human-readable byte size string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
