package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nutrilog/core/internal/ops"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Manage days and logged meals",
}

var dayGetOrCreateCmd = &cobra.Command{
	Use:   "get-or-create [date]",
	Short: "Get a day by date, creating it if absent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.GetOrCreateDay(cmd.Context(), args[0])
		})
	},
}

var dayGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get a day with its meals grouped by meal type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.GetDay(cmd.Context(), id)
		})
	},
}

var dayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List days in a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		start, _ := flags.GetString("start-date")
		end, _ := flags.GetString("end-date")
		limit, _ := flags.GetInt64("limit")
		offset, _ := flags.GetInt64("offset")
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.ListDays(cmd.Context(), start, end, limit, offset)
		})
	},
}

var dayLogMealCmd = &cobra.Command{
	Use:   "log-meal [day-id]",
	Short: "Log a meal entry on a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dayID, err := parseID(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		mealType, _ := flags.GetString("meal-type")
		recipeIDFlag, _ := flags.GetInt64("recipe-id")
		foodItemIDFlag, _ := flags.GetInt64("food-item-id")
		servings, _ := flags.GetFloat64("servings")
		percentEaten, _ := flags.GetFloat64("percent-eaten")

		a := ops.LogMealArgs{
			DayID:        dayID,
			MealType:     mealType,
			Servings:     servings,
			PercentEaten: &percentEaten,
		}
		if recipeIDFlag != 0 {
			a.RecipeID = &recipeIDFlag
		}
		if foodItemIDFlag != 0 {
			a.FoodItemID = &foodItemIDFlag
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.LogMeal(cmd.Context(), a)
		})
	},
}

var dayDeleteMealEntryCmd = &cobra.Command{
	Use:   "delete-meal-entry [id]",
	Short: "Delete a logged meal entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return nil, s.DeleteMealEntry(cmd.Context(), id)
		})
	},
}

var dayRecalculateCmd = &cobra.Command{
	Use:   "recalculate [id]",
	Short: "Force a day's cached total to be recomputed from its meal entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.RecalculateDayNutrition(cmd.Context(), id)
		})
	},
}

var dayListOrphanedCmd = &cobra.Command{
	Use:   "list-orphaned",
	Short: "List days with no logged meal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.ListOrphanedDays(cmd.Context())
		})
	},
}

var dayDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return nil, s.DeleteDay(cmd.Context(), id)
		})
	},
}

func init() {
	dayListCmd.Flags().String("start-date", "", "inclusive range start, YYYY-MM-DD")
	dayListCmd.Flags().String("end-date", "", "inclusive range end, YYYY-MM-DD")
	dayListCmd.Flags().Int64("limit", 50, "maximum results")
	dayListCmd.Flags().Int64("offset", 0, "pagination offset")

	dayLogMealCmd.Flags().String("meal-type", "unspecified", "breakfast|lunch|dinner|snack|unspecified")
	dayLogMealCmd.Flags().Int64("recipe-id", 0, "recipe source id (mutually exclusive with --food-item-id)")
	dayLogMealCmd.Flags().Int64("food-item-id", 0, "food item source id (mutually exclusive with --recipe-id)")
	dayLogMealCmd.Flags().Float64("servings", 1, "servings consumed")
	dayLogMealCmd.Flags().Float64("percent-eaten", 100, "percent of the logged servings actually eaten")

	dayCmd.AddCommand(
		dayGetOrCreateCmd, dayGetCmd, dayListCmd, dayLogMealCmd,
		dayDeleteMealEntryCmd, dayRecalculateCmd, dayListOrphanedCmd, dayDeleteCmd,
	)
	rootCmd.AddCommand(dayCmd)
}
