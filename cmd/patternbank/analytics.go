package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/patternbank/internal/analytics"
	"github.com/fyrsmithlabs/patternbank/internal/knowledge"
)

var analyticsRecompute bool

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show lesson and component effectiveness",
	Long: `Analytics prints the persisted effectiveness snapshot: headline
counters, breakdowns by category and scope, top performers, and
entries needing human review.

Examples:
  # Show the last snapshot
  patternbank analytics

  # Rebuild from the stores first
  patternbank analytics --recompute`,
	RunE: runAnalytics,
}

func init() {
	analyticsCmd.Flags().BoolVar(&analyticsRecompute, "recompute", false, "rebuild the snapshot before printing")
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	engine := analytics.NewEngine(a.store, a.logger)

	var snap *analytics.Snapshot
	if analyticsRecompute {
		snap, err = engine.Recompute()
	} else {
		snap, err = engine.Load()
		// No snapshot yet: compute the first one instead of failing.
		if errors.Is(err, knowledge.ErrUnavailable) {
			snap, err = engine.Recompute()
		}
	}
	if err != nil {
		return err
	}
	return printJSON(snap)
}
