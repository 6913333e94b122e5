package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/insights/internal/output"
	"github.com/joescharf/insights/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool

	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate usage insights from Claude Code session transcripts",
	Long: `insights scans Claude Code session transcripts, extracts per-session
metrics locally, analyzes each session once via the Anthropic API (results
are cached durably), and aggregates everything into an HTML report.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the composite literal to avoid an
	// initialization cycle (rootCmd -> generateRun -> getStore -> rootCmd).
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return generateRun(cmd)
	}

	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be analyzed without making API calls")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/insights/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "insights")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("INSIGHTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	home, _ := os.UserHomeDir()
	claudeDir := filepath.Join(home, ".claude")
	if env := os.Getenv("CLAUDE_CONFIG_DIR"); env != "" {
		claudeDir = env
	}

	viper.SetDefault("claude_dir", claudeDir)
	viper.SetDefault("cache_dir", filepath.Join(claudeDir, "usage-data", "facets"))
	viper.SetDefault("output_dir", home)
	viper.SetDefault("db_path", filepath.Join(home, ".config", "insights", "insights.db"))

	viper.SetDefault("anthropic.model", "claude-opus-4-6")
	viper.SetDefault("anthropic.max_attempts", 4)

	viper.SetDefault("limits.concurrency", 5)
	viper.SetDefault("limits.user_msg_chars", 2000)
	viper.SetDefault("limits.assistant_msg_chars", 1000)
	viper.SetDefault("limits.long_session_chars", 60000)
	viper.SetDefault("limits.chunk_chars", 50000)
	viper.SetDefault("limits.facet_max_tokens", 8192)
	viper.SetDefault("limits.summary_max_tokens", 2048)
	viper.SetDefault("limits.section_max_tokens", 16384)
	viper.SetDefault("limits.min_session_bytes", 1024)
	viper.SetDefault("limits.max_facets_for_report", 200)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// getStore returns the shared run-history store, initializing it on first
// call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// projectsRoot is where Claude Code writes per-project transcript dirs.
func projectsRoot() string {
	return filepath.Join(viper.GetString("claude_dir"), "projects")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "insights %s (commit %s, built %s)\n", buildVersion, buildCommit, buildDate)
	},
}
