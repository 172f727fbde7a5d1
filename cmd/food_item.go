package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nutrilog/core/internal/ops"
	"github.com/nutrilog/core/internal/store"
)

var foodItemCmd = &cobra.Command{
	Use:   "food-item",
	Short: "Manage food items",
}

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a food item",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		servingSize, _ := flags.GetFloat64("serving-size")
		servingUnit, _ := flags.GetString("serving-unit")
		baseUnitType, _ := flags.GetString("base-unit-type")
		preference, _ := flags.GetString("preference")
		calories, _ := flags.GetFloat64("calories")
		protein, _ := flags.GetFloat64("protein")
		carbs, _ := flags.GetFloat64("carbs")
		fat, _ := flags.GetFloat64("fat")

		return runVerb(func(s *ops.Surface) (any, error) {
			return s.AddFoodItem(cmd.Context(), ops.AddFoodItemArgs{
				Name:         name,
				ServingSize:  servingSize,
				ServingUnit:  servingUnit,
				BaseUnitType: baseUnitType,
				Preference:   preference,
				Nutrition: store.NutritionFields{
					Calories: calories,
					Protein:  protein,
					Carbs:    carbs,
					Fat:      fat,
				},
			})
		})
	},
}

var foodGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get a food item by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.GetFoodItem(cmd.Context(), id, 5)
		})
	},
}

var foodSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search food items by name/brand substring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt64("limit")
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.SearchFoodItems(cmd.Context(), args[0], limit)
		})
	},
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List food items",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		sortBy, _ := flags.GetString("sort-by")
		limit, _ := flags.GetInt64("limit")
		offset, _ := flags.GetInt64("offset")
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.ListFoodItems(cmd.Context(), store.FoodItemListFilter{
				SortBy: sortBy,
				Limit:  limit,
				Offset: offset,
			})
		})
	},
}

var foodDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a food item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return nil, s.DeleteFoodItem(cmd.Context(), id)
		})
	},
}

var foodListUnusedCmd = &cobra.Command{
	Use:   "list-unused",
	Short: "List food items referenced by no recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.ListUnusedFoodItems(cmd.Context())
		})
	},
}

func init() {
	foodAddCmd.Flags().String("name", "", "food item name")
	foodAddCmd.Flags().Float64("serving-size", 1, "serving size, in serving-unit units")
	foodAddCmd.Flags().String("serving-unit", "serving", "serving unit label")
	foodAddCmd.Flags().String("base-unit-type", "mass", "mass|volume|count")
	foodAddCmd.Flags().String("preference", "neutral", "liked|disliked|neutral")
	foodAddCmd.Flags().Float64("calories", 0, "calories per serving")
	foodAddCmd.Flags().Float64("protein", 0, "protein grams per serving")
	foodAddCmd.Flags().Float64("carbs", 0, "carbohydrate grams per serving")
	foodAddCmd.Flags().Float64("fat", 0, "fat grams per serving")
	_ = foodAddCmd.MarkFlagRequired("name")

	foodSearchCmd.Flags().Int64("limit", 20, "maximum results")

	foodListCmd.Flags().String("sort-by", "name", "name|created_at|calories")
	foodListCmd.Flags().Int64("limit", 50, "maximum results")
	foodListCmd.Flags().Int64("offset", 0, "pagination offset")

	foodItemCmd.AddCommand(foodAddCmd, foodGetCmd, foodSearchCmd, foodListCmd, foodDeleteCmd, foodListUnusedCmd)
	rootCmd.AddCommand(foodItemCmd)
}
