package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/patternbank/internal/knowledge"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check knowledge-base integrity",
	Long: `Health checks every store file for parseability and flags stale or
suspicious content. Exits non-zero when any check reports an error.

Examples:
  patternbank health
  patternbank health --kb-dir /var/lib/patternbank`,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	report := a.store.HealthCheck()
	if err := printJSON(report); err != nil {
		return err
	}
	if report.Status == knowledge.StatusError {
		return fmt.Errorf("knowledge base unhealthy")
	}
	return nil
}
