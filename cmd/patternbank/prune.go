package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/patternbank/internal/analytics"
	"github.com/fyrsmithlabs/patternbank/internal/knowledge"
)

var pruneRetention time.Duration

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Prune expired history and refresh analytics",
	Long: `Prune removes daily history files older than the configured
retention, then recomputes the analytics snapshot so it reflects the
stores as they stand.

Examples:
  patternbank prune`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().DurationVar(&pruneRetention, "retention", 0, "history retention window (default from config)")
}

func runPrune(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	retention := a.cfg.History.Retention.Std()
	if pruneRetention > 0 {
		retention = pruneRetention
	}

	snap, pruned, err := analytics.NewEngine(a.store, a.logger).Maintain(retention)
	if err != nil {
		return err
	}
	return printJSON(struct {
		Pruned      knowledge.PruneResult `json:"pruned"`
		Snapshot    *analytics.Snapshot   `json:"snapshot"`
		CompletedAt time.Time             `json:"completedAt"`
	}{pruned, snap, time.Now().UTC()})
}
