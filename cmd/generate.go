package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joescharf/insights/internal/aggregate"
	"github.com/joescharf/insights/internal/analysis"
	"github.com/joescharf/insights/internal/auth"
	"github.com/joescharf/insights/internal/discovery"
	"github.com/joescharf/insights/internal/facet"
	"github.com/joescharf/insights/internal/metrics"
	"github.com/joescharf/insights/internal/output"
	"github.com/joescharf/insights/internal/pipeline"
	"github.com/joescharf/insights/internal/report"
	"github.com/joescharf/insights/internal/session"
	"github.com/joescharf/insights/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Analyze sessions and generate the insights report",
	Long: `Scans session transcripts, extracts local metrics, analyzes uncached
sessions via the Anthropic API, and writes an HTML report plus a raw JSON
dump. Already-analyzed sessions are served from the facet cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return generateRun(cmd)
	},
}

func init() {
	addGenerateFlags(rootCmd.Flags())
	addGenerateFlags(generateCmd.Flags())
	rootCmd.AddCommand(generateCmd)
}

// addGenerateFlags registers the generate flags. Running the bare root
// command is shorthand for `insights generate`, so both commands carry them.
func addGenerateFlags(fs *pflag.FlagSet) {
	fs.String("project", "", "Only analyze sessions whose project matches this glob")
	fs.String("after", "", "Only analyze sessions modified on or after this date (YYYY-MM-DD)")
	fs.String("model", "", "Anthropic model (default from config)")
	fs.Int("concurrency", 0, "Concurrent API calls (default from config)")
}

func generateRun(cmd *cobra.Command) error {
	ctx := cmd.Context()
	start := time.Now()

	projectGlob, _ := cmd.Flags().GetString("project")
	afterStr, _ := cmd.Flags().GetString("after")
	model, _ := cmd.Flags().GetString("model")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	if model == "" {
		model = viper.GetString("anthropic.model")
	}
	if concurrency <= 0 {
		concurrency = viper.GetInt("limits.concurrency")
	}

	var after time.Time
	if afterStr != "" {
		t, err := time.Parse("2006-01-02", afterStr)
		if err != nil {
			return fmt.Errorf("invalid --after date %q (expected YYYY-MM-DD)", afterStr)
		}
		after = t
	}

	scanner := &discovery.Scanner{Root: projectsRoot()}
	res, err := scanner.Scan(discovery.Filter{
		ProjectGlob:     projectGlob,
		After:           after,
		MinSessionBytes: viper.GetInt64("limits.min_session_bytes"),
	})
	if err != nil {
		return fmt.Errorf("scan sessions: %w", err)
	}
	if len(res.Sessions) == 0 {
		ui.Warning("No sessions found under %s", projectsRoot())
		return nil
	}
	ui.Info("Found %d sessions (%d main, %d agent) in %d projects",
		len(res.Sessions), res.MainCount, res.AgentCount, len(res.Projects()))
	for _, p := range res.SkippedSubtree {
		ui.VerboseLog("skipped unreadable path: %s", p)
	}

	items, sessionMetrics := loadSessions(scanner, res.Sessions)
	if len(items) == 0 {
		ui.Warning("No analyzable sessions after filtering")
		return nil
	}
	ui.Info("Analyzing %d sessions", len(items))

	cache, err := facet.NewCache(viper.GetString("cache_dir"))
	if err != nil {
		return fmt.Errorf("open facet cache: %w", err)
	}

	var ext pipeline.Extractor
	var client *analysis.Client
	if !dryRun {
		resolver := auth.NewFileResolver(filepath.Join(viper.GetString("claude_dir"), ".credentials.json"))
		token, err := resolver.Token(ctx)
		if err != nil {
			return fmt.Errorf("load credentials: %w", err)
		}
		client = analysis.NewClient(token, model, analysis.Options{
			MaxAttempts: viper.GetInt("anthropic.max_attempts"),
		})
		ext = client
	}

	outcome, err := pipeline.Facets(ctx, ext, cache, items, pipeline.FacetOptions{
		Concurrency: concurrency,
		DryRun:      dryRun,
		Serialize: session.SerializeOptions{
			UserMessageLimit:      viper.GetInt("limits.user_msg_chars"),
			AssistantMessageLimit: viper.GetInt("limits.assistant_msg_chars"),
		},
		Budget: analysis.FacetBudget{
			FacetMaxTokens:   viper.GetInt("limits.facet_max_tokens"),
			SummaryMaxTokens: viper.GetInt("limits.summary_max_tokens"),
			LongSessionChars: viper.GetInt("limits.long_session_chars"),
			ChunkChars:       viper.GetInt("limits.chunk_chars"),
		},
	})
	if err != nil {
		return fmt.Errorf("extract facets: %w", err)
	}

	if dryRun {
		ui.Info("%d sessions already cached", outcome.CachedHits)
		ui.DryRunMsg("would analyze %d sessions with %s", outcome.Pending, model)
		recordRun(cmd, &store.RunRecord{
			Duration:         time.Since(start),
			Model:            model,
			DryRun:           true,
			SessionsScanned:  len(res.Sessions),
			SessionsAnalyzed: len(items),
			FacetsCached:     outcome.CachedHits,
		})
		return nil
	}

	ui.Info("Facets: %d cached, %d extracted, %d failed",
		outcome.CachedHits, outcome.Extracted, len(outcome.Failures))
	for _, f := range outcome.Failures {
		ui.Warning("analysis failed for %s: %v", f.Identity, f.Err)
	}

	data := aggregate.Build(sessionMetrics, outcome.Facets)
	pct := 0
	if data.TotalSessions > 0 {
		pct = 100 * data.SessionsWithFacets / data.TotalSessions
	}
	ui.Info("Coverage: %s of sessions analyzed", output.CoverageColor(pct))

	limits := report.DefaultPayloadLimits()
	limits.MaxFacets = viper.GetInt("limits.max_facets_for_report")
	ui.Info("Generating report sections with %s", model)
	ins, err := pipeline.Sections(ctx, client, data, outcome.Facets, pipeline.SectionsOptions{
		MaxTokens: viper.GetInt("limits.section_max_tokens"),
		Limits:    limits,
	})
	if err != nil {
		return fmt.Errorf("generate report sections: %w", err)
	}
	if len(ins.FailedSections) > 0 {
		ui.Warning("sections failed: %s", strings.Join(ins.FailedSections, ", "))
	}

	now := time.Now()
	html, err := report.RenderHTML(data, ins, model, now)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	art, err := report.WriteArtifacts(viper.GetString("output_dir"), html, data, ins, report.RunConfig{
		Model:            model,
		FacetMaxTokens:   viper.GetInt("limits.facet_max_tokens"),
		SummaryMaxTokens: viper.GetInt("limits.summary_max_tokens"),
		SectionMaxTokens: viper.GetInt("limits.section_max_tokens"),
		MaxFacets:        limits.MaxFacets,
		UserMsgChars:     viper.GetInt("limits.user_msg_chars"),
		AssistantChars:   viper.GetInt("limits.assistant_msg_chars"),
	}, now)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	recordRun(cmd, &store.RunRecord{
		Duration:          time.Since(start),
		Model:             model,
		SessionsScanned:   len(res.Sessions),
		SessionsAnalyzed:  len(items),
		FacetsCached:      outcome.CachedHits,
		FacetsExtracted:   outcome.Extracted,
		FacetFailures:     len(outcome.Failures),
		SectionsGenerated: report.SectionCount - len(ins.FailedSections),
		SectionFailures:   len(ins.FailedSections),
		ReportPath:        art.HTMLPath,
	})

	ui.Success("Report: %s", art.HTMLPath)
	ui.Success("Raw data: %s", art.JSONPath)
	return nil
}

// loadSessions parses each discovered transcript and extracts local metrics,
// dropping agent sub-sessions, report artifacts fed back through Claude, and
// trivial sessions too short to analyze.
func loadSessions(scanner *discovery.Scanner, found []discovery.Session) ([]pipeline.Item, []*metrics.Metrics) {
	var items []pipeline.Item
	var sessionMetrics []*metrics.Metrics
	artifacts, trivial, unreadable := 0, 0, 0
	for _, s := range found {
		if s.IsAgent {
			continue
		}
		rec, err := session.Load(s.Path, s.Identity)
		if err != nil {
			ui.VerboseLog("skipping %s: %v", s.Path, err)
			unreadable++
			continue
		}
		if session.IsAnalysisArtifact(rec) {
			artifacts++
			continue
		}
		m := metrics.Extract(rec)
		if m.UserMessages < 2 || m.Duration < time.Minute {
			trivial++
			continue
		}
		items = append(items, pipeline.Item{
			Record:      rec,
			Metrics:     m,
			ProjectName: scanner.DisplayName(s.Path, s.Identity.ProjectHash),
		})
		sessionMetrics = append(sessionMetrics, m)
	}
	if artifacts+trivial+unreadable > 0 {
		ui.VerboseLog("filtered %d trivial, %d artifact, %d unreadable sessions",
			trivial, artifacts, unreadable)
	}
	return items, sessionMetrics
}

// recordRun appends to run history. A history write failure never fails a
// run whose report is already on disk.
func recordRun(cmd *cobra.Command, r *store.RunRecord) {
	s, err := getStore()
	if err != nil {
		ui.Warning("run history unavailable: %v", err)
		return
	}
	if err := s.CreateRun(cmd.Context(), r); err != nil {
		ui.Warning("record run: %v", err)
	}
}
