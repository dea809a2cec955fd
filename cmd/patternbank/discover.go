package main

import (
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/patternbank/internal/orchestrator"
)

var discoverThreshold float64

var discoverCmd = &cobra.Command{
	Use:   "discover [path]",
	Short: "Run the full discovery pipeline against a project",
	Long: `Discover profiles the project (frameworks, UI libraries, selector
conventions, auth), mines its source for entities, routes, forms,
tables, and modals, synthesizes candidate patterns, merges them with
the stored set, and persists the curated result.

Examples:
  # Discover the current directory
  patternbank discover

  # Discover another project with a stricter confidence floor
  patternbank discover ~/src/shop --threshold 0.8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().Float64Var(&discoverThreshold, "threshold", 0, "minimum surviving confidence (default from config)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	root := a.cfg.Project.Root
	if len(args) == 1 {
		root = args[0]
	}
	threshold := a.cfg.Curation.Threshold
	if discoverThreshold > 0 {
		threshold = discoverThreshold
	}

	report, err := orchestrator.New(a.store, a.logger).Run(cmd.Context(), orchestrator.Options{
		Root:      root,
		Threshold: threshold,
		Retention: a.cfg.Curation.Retention.Std(),
	})
	if err != nil {
		return err
	}
	return printJSON(report)
}
