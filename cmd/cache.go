package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/insights/internal/facet"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the facet cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show facet cache contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cacheStatusRun()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached facet",
	Long: `Delete every cached facet. The next generate run re-analyzes every
session from scratch, which costs API calls.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cacheClearRun()
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cacheStatusRun() error {
	cache, err := facet.NewCache(viper.GetString("cache_dir"))
	if err != nil {
		return fmt.Errorf("open facet cache: %w", err)
	}

	model := viper.GetString("anthropic.model")
	total, stale, err := cache.Count(model)
	if err != nil {
		return fmt.Errorf("count cache entries: %w", err)
	}

	ui.Info("Cache directory: %s", cache.Dir())
	ui.Info("Entries: %d (%d analyzed with a model other than %s)", total, stale, model)
	return nil
}

func cacheClearRun() error {
	cache, err := facet.NewCache(viper.GetString("cache_dir"))
	if err != nil {
		return fmt.Errorf("open facet cache: %w", err)
	}

	if dryRun {
		total, _, err := cache.Count("")
		if err != nil {
			return fmt.Errorf("count cache entries: %w", err)
		}
		ui.DryRunMsg("would delete %d cached facets from %s", total, cache.Dir())
		return nil
	}

	n, err := cache.Clear()
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	ui.Success("Deleted %d cached facets", n)
	return nil
}
