package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nutrilog/core/internal/ops"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch-mode cascade control (spec.md §4.4)",
}

var batchStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Enter batch mode, deferring update_food_item cascades",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.StartBatchUpdate(cmd.Context())
		})
	},
}

var batchFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Leave batch mode, running one coalesced cascade",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerbSummary(func(s *ops.Surface) (any, ops.CascadeCounts, error) {
			res, err := s.FinishBatchUpdate(cmd.Context())
			if err != nil {
				return nil, ops.CascadeCounts{}, err
			}
			return res, res.CascadeCounts, nil
		})
	},
}

var recalculateAllCmd = &cobra.Command{
	Use:   "recalculate-all",
	Short: "Rebuild every recipe and day cache from primary data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerbSummary(func(s *ops.Surface) (any, ops.CascadeCounts, error) {
			res, err := s.RecalculateAll(cmd.Context())
			if err != nil {
				return nil, ops.CascadeCounts{}, err
			}
			return res, res.CascadeCounts, nil
		})
	},
}

func init() {
	batchCmd.AddCommand(batchStartCmd, batchFinishCmd)
	rootCmd.AddCommand(batchCmd, recalculateAllCmd)
}
