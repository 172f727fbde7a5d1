package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nutrilog/core/internal/ops"
	"github.com/nutrilog/core/internal/store"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Manage recipes",
}

var recipeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		servingsProduced, _ := flags.GetFloat64("servings-produced")
		isFavorite, _ := flags.GetBool("favorite")
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.CreateRecipe(cmd.Context(), ops.CreateRecipeArgs{
				Name:             name,
				ServingsProduced: servingsProduced,
				IsFavorite:       isFavorite,
			})
		})
	},
}

var recipeGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get a recipe with its ingredients and components",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.GetRecipe(cmd.Context(), id)
		})
	},
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		query, _ := flags.GetString("query")
		favoritesOnly, _ := flags.GetBool("favorites-only")
		sortBy, _ := flags.GetString("sort-by")
		limit, _ := flags.GetInt64("limit")
		offset, _ := flags.GetInt64("offset")
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.ListRecipes(cmd.Context(), store.RecipeListFilter{
				Query:         query,
				FavoritesOnly: favoritesOnly,
				SortBy:        sortBy,
				Limit:         limit,
				Offset:        offset,
			})
		})
	},
}

var recipeDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return nil, s.DeleteRecipe(cmd.Context(), id)
		})
	},
}

var recipeAddIngredientCmd = &cobra.Command{
	Use:   "add-ingredient [recipe-id] [food-item-id]",
	Short: "Add a food item ingredient to a recipe",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipeID, err := parseID(args[0])
		if err != nil {
			return err
		}
		foodItemID, err := parseID(args[1])
		if err != nil {
			return err
		}
		quantity, _ := cmd.Flags().GetFloat64("quantity")
		unit, _ := cmd.Flags().GetString("unit")
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.AddRecipeIngredient(cmd.Context(), ops.AddIngredientArgs{
				RecipeID:   recipeID,
				FoodItemID: foodItemID,
				Quantity:   quantity,
				Unit:       unit,
			})
		})
	},
}

var recipeRemoveIngredientCmd = &cobra.Command{
	Use:   "remove-ingredient [ingredient-id]",
	Short: "Remove a recipe ingredient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.RemoveRecipeIngredient(cmd.Context(), id)
		})
	},
}

var recipeAddComponentCmd = &cobra.Command{
	Use:   "add-component [parent-recipe-id] [component-recipe-id]",
	Short: "Add a sub-recipe as a component of a parent recipe",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentID, err := parseID(args[0])
		if err != nil {
			return err
		}
		componentID, err := parseID(args[1])
		if err != nil {
			return err
		}
		servings, _ := cmd.Flags().GetFloat64("servings")
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.AddRecipeComponent(cmd.Context(), ops.AddComponentArgs{
				ParentRecipeID:    parentID,
				ComponentRecipeID: componentID,
				Servings:          servings,
			})
		})
	},
}

var recipeRemoveComponentCmd = &cobra.Command{
	Use:   "remove-component [component-id]",
	Short: "Remove a recipe component edge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.RemoveRecipeComponent(cmd.Context(), id)
		})
	},
}

var recipeRecalculateCmd = &cobra.Command{
	Use:   "recalculate [id]",
	Short: "Force a recipe's cached nutrition to be recomputed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.RecalculateRecipe(cmd.Context(), id)
		})
	},
}

var recipeListUnusedCmd = &cobra.Command{
	Use:   "list-unused",
	Short: "List recipes logged nowhere and used by no other recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerb(func(s *ops.Surface) (any, error) {
			return s.ListUnusedRecipes(cmd.Context())
		})
	},
}

func init() {
	recipeCreateCmd.Flags().String("name", "", "recipe name")
	recipeCreateCmd.Flags().Float64("servings-produced", 1, "servings the recipe yields")
	recipeCreateCmd.Flags().Bool("favorite", false, "mark as favorite")
	_ = recipeCreateCmd.MarkFlagRequired("name")

	recipeListCmd.Flags().String("query", "", "name substring filter")
	recipeListCmd.Flags().Bool("favorites-only", false, "only favorites")
	recipeListCmd.Flags().String("sort-by", "name", "name|created_at")
	recipeListCmd.Flags().Int64("limit", 50, "maximum results")
	recipeListCmd.Flags().Int64("offset", 0, "pagination offset")

	recipeAddIngredientCmd.Flags().Float64("quantity", 1, "quantity in unit")
	recipeAddIngredientCmd.Flags().String("unit", "", "unit string, e.g. g, tbsp, serving")
	_ = recipeAddIngredientCmd.MarkFlagRequired("unit")

	recipeAddComponentCmd.Flags().Float64("servings", 1, "servings of the component recipe used")

	recipeCmd.AddCommand(
		recipeCreateCmd, recipeGetCmd, recipeListCmd, recipeDeleteCmd,
		recipeAddIngredientCmd, recipeRemoveIngredientCmd,
		recipeAddComponentCmd, recipeRemoveComponentCmd,
		recipeRecalculateCmd, recipeListUnusedCmd,
	)
	rootCmd.AddCommand(recipeCmd)
}
