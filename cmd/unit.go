package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutrilog/core/internal/ops"
)

var convertUnitCmd = &cobra.Command{
	Use:   "convert-unit [value] [from] [to]",
	Short: "Convert a value between two units of the same category",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value float64
		if _, err := fmt.Sscanf(args[0], "%g", &value); err != nil {
			return err
		}
		from, to := args[1], args[2]
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.ConvertUnit(cmd.Context(), value, from, to)
		})
	},
}

func init() {
	rootCmd.AddCommand(convertUnitCmd)
}
