package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/insights/internal/discovery"
	"github.com/joescharf/insights/internal/facet"
	"github.com/joescharf/insights/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for Claude Code integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets Claude Code query session discovery, facet cache state, and run
history natively. Configure in Claude Code with:

  {
    "mcpServers": {
      "insights": { "command": "insights", "args": ["mcp"] }
    }
  }

Available tools: insights_list_sessions, insights_cache_status,
insights_last_run. All tools are read-only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(cmd *cobra.Command) error {
	cache, err := facet.NewCache(viper.GetString("cache_dir"))
	if err != nil {
		return fmt.Errorf("open facet cache: %w", err)
	}
	st, err := getStore()
	if err != nil {
		return err
	}

	scanner := &discovery.Scanner{Root: projectsRoot()}
	srv := mcp.NewServer(scanner, cache, st, viper.GetString("anthropic.model"))
	return srv.ServeStdio(cmd.Context())
}
