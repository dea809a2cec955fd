package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/patternbank/internal/learning"
)

var (
	learnType    string
	learnID      string
	learnJourney string
	learnSuccess bool
	learnFailure bool
	learnDetail  string
)

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Record a real test outcome against a pattern, component, or lesson",
	Long: `Learn feeds one observed outcome back into the knowledge base,
updating the target's success rate and confidence with a weighted
average over everything seen so far.

Examples:
  # A pattern worked
  patternbank learn --type pattern --id pat-3f2a --journey checkout-01 --success

  # A lesson failed to help
  patternbank learn --type lesson --id lesson-12 --journey signup-02 --failure --detail "selector drifted"`,
	RunE: runLearn,
}

func init() {
	learnCmd.Flags().StringVar(&learnType, "type", "", "outcome type: pattern, component, or lesson")
	learnCmd.Flags().StringVar(&learnID, "id", "", "target id (or name/title for best-effort match)")
	learnCmd.Flags().StringVar(&learnJourney, "journey", "", "journey reporting the outcome")
	learnCmd.Flags().BoolVar(&learnSuccess, "success", true, "the target worked (one of --success/--failure is required)")
	learnCmd.Flags().BoolVar(&learnFailure, "failure", false, "the target failed")
	learnCmd.Flags().StringVar(&learnDetail, "detail", "", "optional note for the history log")
	learnCmd.MarkFlagRequired("type") //nolint:errcheck
	learnCmd.MarkFlagRequired("id")   //nolint:errcheck
}

func runLearn(cmd *cobra.Command, args []string) error {
	// An outcome must be stated, never assumed: recording a success by
	// default would corrupt the weighted averages silently.
	successSet := cmd.Flags().Changed("success")
	failureSet := cmd.Flags().Changed("failure")
	if !successSet && !failureSet {
		return errors.New("one of --success or --failure is required")
	}
	if successSet && failureSet {
		return errors.New("--success and --failure are mutually exclusive")
	}
	success := learnSuccess && !learnFailure

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	result, err := learning.NewRecorder(a.store, a.logger).RecordOutcome(cmd.Context(), learning.Outcome{
		Type:      learning.OutcomeType(learnType),
		TargetID:  learnID,
		JourneyID: learnJourney,
		Success:   success,
		Detail:    learnDetail,
	})
	if err != nil {
		return err
	}
	return printJSON(result)
}
