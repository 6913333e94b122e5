package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/insights/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyRun(cmd)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum runs to show")
	rootCmd.AddCommand(historyCmd)
}

func historyRun(cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	runs, err := s.ListRuns(cmd.Context(), historyLimit)
	if err != nil && !errors.Is(err, store.ErrNoRuns) {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		ui.Info("No runs recorded yet. Run 'insights generate' first.")
		return nil
	}

	table := ui.Table([]string{"When", "Model", "Scanned", "Analyzed", "Cached", "Extracted", "Failed", "Took"})
	for _, r := range runs {
		model := r.Model
		if r.DryRun {
			model += " (dry-run)"
		}
		_ = table.Append([]string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			model,
			fmt.Sprintf("%d", r.SessionsScanned),
			fmt.Sprintf("%d", r.SessionsAnalyzed),
			fmt.Sprintf("%d", r.FacetsCached),
			fmt.Sprintf("%d", r.FacetsExtracted),
			fmt.Sprintf("%d", r.FacetFailures+r.SectionFailures),
			r.Duration.Round(time.Second).String(),
		})
	}
	_ = table.Render()
	return nil
}
