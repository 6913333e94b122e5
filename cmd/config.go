package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "insights"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage insights configuration.

Running bare 'insights config' is the same as 'insights config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# insights configuration
# See: insights config show (for effective values and sources)

# Claude Code data directory (default: $CLAUDE_CONFIG_DIR or ~/.claude)
# claude_dir: {{ .ClaudeDir }}

# Facet cache directory (default: <claude_dir>/usage-data/facets)
# cache_dir: {{ .CacheDir }}

# Where report artifacts are written (default: home directory)
# output_dir: {{ .OutputDir }}

# Run-history database path (default: ~/.config/insights/insights.db)
# db_path: {{ .DBPath }}

# Anthropic API
anthropic:
  # Model used for facet extraction and report sections
  model: "{{ .Model }}"

  # Total attempts per API call, first try included
  max_attempts: {{ .MaxAttempts }}

# Analysis limits
limits:
  # Concurrent API calls during facet extraction
  concurrency: {{ .Concurrency }}

  # Facets included in the report payload
  max_facets_for_report: {{ .MaxFacets }}
`

type configTemplateData struct {
	ClaudeDir   string
	CacheDir    string
	OutputDir   string
	DBPath      string
	Model       string
	MaxAttempts int
	Concurrency int
	MaxFacets   int
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		ClaudeDir:   viper.GetString("claude_dir"),
		CacheDir:    viper.GetString("cache_dir"),
		OutputDir:   viper.GetString("output_dir"),
		DBPath:      viper.GetString("db_path"),
		Model:       viper.GetString("anthropic.model"),
		MaxAttempts: viper.GetInt("anthropic.max_attempts"),
		Concurrency: viper.GetInt("limits.concurrency"),
		MaxFacets:   viper.GetInt("limits.max_facets_for_report"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "claude_dir", EnvVar: "INSIGHTS_CLAUDE_DIR"},
	{Key: "cache_dir", EnvVar: "INSIGHTS_CACHE_DIR"},
	{Key: "output_dir", EnvVar: "INSIGHTS_OUTPUT_DIR"},
	{Key: "db_path", EnvVar: "INSIGHTS_DB_PATH"},
	{Key: "anthropic.model", EnvVar: "INSIGHTS_ANTHROPIC_MODEL"},
	{Key: "anthropic.max_attempts", EnvVar: "INSIGHTS_ANTHROPIC_MAX_ATTEMPTS"},
	{Key: "limits.concurrency", EnvVar: "INSIGHTS_LIMITS_CONCURRENCY"},
	{Key: "limits.user_msg_chars", EnvVar: "INSIGHTS_LIMITS_USER_MSG_CHARS"},
	{Key: "limits.assistant_msg_chars", EnvVar: "INSIGHTS_LIMITS_ASSISTANT_MSG_CHARS"},
	{Key: "limits.long_session_chars", EnvVar: "INSIGHTS_LIMITS_LONG_SESSION_CHARS"},
	{Key: "limits.chunk_chars", EnvVar: "INSIGHTS_LIMITS_CHUNK_CHARS"},
	{Key: "limits.facet_max_tokens", EnvVar: "INSIGHTS_LIMITS_FACET_MAX_TOKENS"},
	{Key: "limits.summary_max_tokens", EnvVar: "INSIGHTS_LIMITS_SUMMARY_MAX_TOKENS"},
	{Key: "limits.section_max_tokens", EnvVar: "INSIGHTS_LIMITS_SECTION_MAX_TOKENS"},
	{Key: "limits.min_session_bytes", EnvVar: "INSIGHTS_LIMITS_MIN_SESSION_BYTES"},
	{Key: "limits.max_facets_for_report", EnvVar: "INSIGHTS_LIMITS_MAX_FACETS_FOR_REPORT"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-28s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'insights config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
