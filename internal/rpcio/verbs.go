package rpcio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nutrilog/core/internal/ops"
	"github.com/nutrilog/core/internal/store"
)

// decode unmarshals args into v, treating an absent/empty args field
// as a zero value rather than an error — several verbs take no
// arguments at all.
func decode(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("decoding args: %w", err)
	}
	return nil
}

// verbTable is the compatibility contract of spec.md §4.5/§6: one
// entry per externally callable verb name.
var verbTable = map[string]handlerFunc{
	// FoodItem
	"add_food_item": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a ops.AddFoodItemArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.AddFoodItem(ctx, a)
	},
	"search_food_items": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			Query string `json:"query"`
			Limit int64  `json:"limit,omitempty"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.SearchFoodItems(ctx, a.Query, a.Limit)
	},
	"get_food_item": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID             int64 `json:"id"`
			MaxRecipeNames int   `json:"max_recipe_names,omitempty"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		if a.MaxRecipeNames == 0 {
			a.MaxRecipeNames = 5
		}
		return s.GetFoodItem(ctx, a.ID, a.MaxRecipeNames)
	},
	"list_food_items": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var f store.FoodItemListFilter
		if err := decode(args, &f); err != nil {
			return nil, err
		}
		return s.ListFoodItems(ctx, f)
	},
	"update_food_item": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
			ops.UpdateFoodItemArgs
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.UpdateFoodItem(ctx, a.ID, a.UpdateFoodItemArgs)
	},
	"delete_food_item": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return nil, s.DeleteFoodItem(ctx, a.ID)
	},
	"list_unused_food_items": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		return s.ListUnusedFoodItems(ctx)
	},

	// Recipe
	"create_recipe": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a ops.CreateRecipeArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.CreateRecipe(ctx, a)
	},
	"get_recipe": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.GetRecipe(ctx, a.ID)
	},
	"list_recipes": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var f store.RecipeListFilter
		if err := decode(args, &f); err != nil {
			return nil, err
		}
		return s.ListRecipes(ctx, f)
	},
	"update_recipe": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
			ops.UpdateRecipeArgs
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.UpdateRecipe(ctx, a.ID, a.UpdateRecipeArgs)
	},
	"delete_recipe": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return nil, s.DeleteRecipe(ctx, a.ID)
	},
	"add_recipe_ingredient": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a ops.AddIngredientArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.AddRecipeIngredient(ctx, a)
	},
	"update_recipe_ingredient": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			IngredientID int64 `json:"ingredient_id"`
			ops.UpdateIngredientArgs
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.UpdateRecipeIngredient(ctx, a.IngredientID, a.UpdateIngredientArgs)
	},
	"remove_recipe_ingredient": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			IngredientID int64 `json:"ingredient_id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.RemoveRecipeIngredient(ctx, a.IngredientID)
	},
	"add_recipe_component": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a ops.AddComponentArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.AddRecipeComponent(ctx, a)
	},
	"update_recipe_component": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ComponentID int64   `json:"component_id"`
			Servings    float64 `json:"servings"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.UpdateRecipeComponentServings(ctx, a.ComponentID, a.Servings)
	},
	"remove_recipe_component": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ComponentID int64 `json:"component_id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.RemoveRecipeComponent(ctx, a.ComponentID)
	},
	"recalculate_recipe": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			RecipeID int64 `json:"recipe_id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.RecalculateRecipe(ctx, a.RecipeID)
	},
	"batch_add_ingredients": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a ops.BatchAddIngredientsArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.BatchAddIngredients(ctx, a)
	},
	"list_unused_recipes": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		return s.ListUnusedRecipes(ctx)
	},

	// Day / MealEntry
	"get_or_create_day": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			Date string `json:"date"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.GetOrCreateDay(ctx, a.Date)
	},
	"get_day": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.GetDay(ctx, a.ID)
	},
	"list_days": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			StartDate string `json:"start_date,omitempty"`
			EndDate   string `json:"end_date,omitempty"`
			Limit     int64  `json:"limit,omitempty"`
			Offset    int64  `json:"offset,omitempty"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.ListDays(ctx, a.StartDate, a.EndDate, a.Limit, a.Offset)
	},
	"update_day": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID    int64   `json:"id"`
			Notes *string `json:"notes,omitempty"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.UpdateDay(ctx, a.ID, a.Notes)
	},
	"update_day_calories_burned": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID             int64    `json:"id"`
			CaloriesBurned *float64 `json:"calories_burned,omitempty"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.UpdateDayCaloriesBurned(ctx, a.ID, a.CaloriesBurned)
	},
	"log_meal": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a ops.LogMealArgs
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.LogMeal(ctx, a)
	},
	"get_meal_entry": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.GetMealEntry(ctx, a.ID)
	},
	"update_meal_entry": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
			ops.UpdateMealEntryArgs
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.UpdateMealEntry(ctx, a.ID, a.UpdateMealEntryArgs)
	},
	"delete_meal_entry": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return nil, s.DeleteMealEntry(ctx, a.ID)
	},
	"recalculate_day_nutrition": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			DayID int64 `json:"day_id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.RecalculateDayNutrition(ctx, a.DayID)
	},
	"list_orphaned_days": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		return s.ListOrphanedDays(ctx)
	},
	"delete_day": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			ID int64 `json:"id"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return nil, s.DeleteDay(ctx, a.ID)
	},

	// Batch control
	"start_batch_update": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		return s.StartBatchUpdate(ctx)
	},
	"finish_batch_update": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		return s.FinishBatchUpdate(ctx)
	},
	"recalculate_all": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		return s.RecalculateAll(ctx)
	},

	// Unit utility
	"convert_unit": func(ctx context.Context, s *ops.Surface, args json.RawMessage) (any, error) {
		var a struct {
			Value float64 `json:"value"`
			From  string  `json:"from"`
			To    string  `json:"to"`
		}
		if err := decode(args, &a); err != nil {
			return nil, err
		}
		return s.ConvertUnit(ctx, a.Value, a.From, a.To)
	},
}
