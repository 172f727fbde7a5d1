// Package cascade implements the Cascade Engine: after a leaf mutation
// changes a food item's nutrition, a recipe's ingredients or
// components, or a recipe's servings_produced, it walks the reverse
// dependency graph and refreshes every cached aggregate that could
// have changed, in an order that recomputes each recipe only after
// its own component children are already fresh.
//
// Grounded on internal/graph/{snapshot,topology,unionfind}.go's
// adjacency-map and DFS traversal idiom, generalized from the
// teacher's undirected node/edge graph to the food/recipe/day
// dependency graph, and on
// original_source/src/models/{recipe_ingredient,meal_entry}.rs's
// recalculate_recipe_nutrition / recalculate_day_nutrition pairing for
// the recompute-then-propagate sequencing.
package cascade

import (
	"context"
	"database/sql"

	"github.com/nutrilog/core/internal/nutrition"
	"github.com/nutrilog/core/internal/store"
)

// Result reports how many recipes and days a cascade touched.
type Result struct {
	RecipesRecalculated int
	DaysRecalculated    int
}

func (a Result) add(b Result) Result {
	return Result{
		RecipesRecalculated: a.RecipesRecalculated + b.RecipesRecalculated,
		DaysRecalculated:    a.DaysRecalculated + b.DaysRecalculated,
	}
}

// Engine wraps a Store with the reverse-reachability recalculation
// described by the Cascade Engine.
type Engine struct {
	store *store.Store
}

// New wraps s in a cascade Engine.
func New(s *store.Store) *Engine {
	return &Engine{store: s}
}

// FromFoodItem cascades a nutrition-affecting change to foodItemID:
// every recipe that transitively uses it, and every meal entry and day
// that references either the food item directly or one of those
// recipes. If batch mode is active, the id is queued instead and a
// zero Result is returned — the caller must eventually call
// FinishBatch.
func (e *Engine) FromFoodItem(ctx context.Context, foodItemID int64) (Result, error) {
	if e.store.NotePendingCascade(foodItemID) {
		return Result{}, nil
	}
	return e.runCascade(ctx, []int64{foodItemID}, nil)
}

// FromRecipe cascades a nutrition-affecting change made directly to
// recipeID (an ingredient or component was added/removed/modified, or
// servings_produced changed): recipeID itself, everything above it,
// and every day depending on any of those.
func (e *Engine) FromRecipe(ctx context.Context, recipeID int64) (Result, error) {
	return e.runCascade(ctx, nil, []int64{recipeID})
}

// FinishBatch ends batch mode and runs one coalesced cascade over the
// union of every food item queued during the batch.
func (e *Engine) FinishBatch(ctx context.Context) (Result, error) {
	pending, err := e.store.EndBatch(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(pending) == 0 {
		return Result{}, nil
	}
	return e.runCascade(ctx, pending, nil)
}

// RecalculateAll rebuilds every recipe's cached per-serving vector and
// every day's cached total from primary data, the recovery operation
// for when batch mode was left dangling by a crash.
func (e *Engine) RecalculateAll(ctx context.Context) (Result, error) {
	var recipeIDs []int64
	// Day ids are read before the transaction opens: AllDayIDs uses the
	// pool, and the store's only connection is held by the transaction.
	dayIDs, err := e.store.AllDayIDs(ctx)
	if err != nil {
		return Result{}, err
	}
	err = e.store.RunCascadeTx(ctx, func(tx *sql.Tx) error {
		var err error
		recipeIDs, err = allRecipeIDsTx(ctx, tx)
		if err != nil {
			return err
		}
		order, err := topoOrderTx(ctx, tx, e.store, toSet(recipeIDs))
		if err != nil {
			return err
		}
		for _, id := range order {
			if err := recalcRecipeTx(ctx, tx, e.store, id); err != nil {
				return err
			}
		}
		for _, id := range dayIDs {
			if err := refreshDayTx(ctx, tx, e.store, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{RecipesRecalculated: len(recipeIDs), DaysRecalculated: len(dayIDs)}, nil
}

// runCascade implements steps 1-6 of the single-edit cascade for a mix
// of directly-mutated food items and directly-mutated recipes.
func (e *Engine) runCascade(ctx context.Context, foodItemIDs, recipeIDs []int64) (Result, error) {
	var res Result
	err := e.store.RunCascadeTx(ctx, func(tx *sql.Tx) error {
		affected := make(map[int64]bool)
		for _, id := range recipeIDs {
			affected[id] = true
		}
		for _, id := range foodItemIDs {
			direct, err := e.store.RecipesUsingFoodItemTx(ctx, tx, id)
			if err != nil {
				return err
			}
			for _, r := range direct {
				affected[r] = true
			}
		}

		if err := expandAncestors(ctx, tx, e.store, affected); err != nil {
			return err
		}

		order, err := topoOrderTx(ctx, tx, e.store, affected)
		if err != nil {
			return err
		}
		for _, id := range order {
			if err := recalcRecipeTx(ctx, tx, e.store, id); err != nil {
				return err
			}
		}
		res.RecipesRecalculated = len(order)

		days := make(map[int64]bool)
		for _, id := range foodItemIDs {
			d, err := e.store.DaysUsingFoodItemTx(ctx, tx, id)
			if err != nil {
				return err
			}
			for _, id := range d {
				days[id] = true
			}
		}
		for recipeID := range affected {
			d, err := e.store.DaysUsingRecipeTx(ctx, tx, recipeID)
			if err != nil {
				return err
			}
			for _, id := range d {
				days[id] = true
			}
		}

		for dayID := range days {
			if err := refreshDayTx(ctx, tx, e.store, dayID); err != nil {
				return err
			}
		}
		res.DaysRecalculated = len(days)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// expandAncestors grows affected to include, for every recipe already
// in it, every recipe that (directly or transitively) uses it as a
// component — the reverse-reachability closure of step 1.
func expandAncestors(ctx context.Context, tx *sql.Tx, s *store.Store, affected map[int64]bool) error {
	queue := make([]int64, 0, len(affected))
	for id := range affected {
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		parents, err := s.ParentRecipeIDsTx(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, p := range parents {
			if !affected[p] {
				affected[p] = true
				queue = append(queue, p)
			}
		}
	}
	return nil
}

// topoOrderTx returns the recipes in affected ordered so each recipe
// appears after every direct component child also present in
// affected, via a DFS postorder over the component graph restricted to
// the affected set.
func topoOrderTx(ctx context.Context, tx *sql.Tx, s *store.Store, affected map[int64]bool) ([]int64, error) {
	visited := make(map[int64]bool, len(affected))
	order := make([]int64, 0, len(affected))

	var visit func(id int64) error
	visit = func(id int64) error {
		if visited[id] {
			return nil
		}
		visited[id] = true
		components, err := s.RecipeComponentsTx(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, c := range components {
			if affected[c.ComponentRecipeID] {
				if err := visit(c.ComponentRecipeID); err != nil {
					return err
				}
			}
		}
		order = append(order, id)
		return nil
	}

	ids := make([]int64, 0, len(affected))
	for id := range affected {
		ids = append(ids, id)
	}
	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func recalcRecipeTx(ctx context.Context, tx *sql.Tx, s *store.Store, recipeID int64) error {
	recipe, err := s.GetRecipeTx(ctx, tx, recipeID)
	if err != nil {
		return err
	}

	ingredients, err := s.RecipeIngredientsTx(ctx, tx, recipeID)
	if err != nil {
		return err
	}
	var lines []nutrition.IngredientLine
	for _, ing := range ingredients {
		food, err := s.GetFoodItemTx(ctx, tx, ing.FoodItemID)
		if err != nil {
			return err
		}
		conversions, err := s.FoodItemConversionsTx(ctx, tx, ing.FoodItemID)
		if err != nil {
			return err
		}
		lines = append(lines, nutrition.IngredientLine{
			Quantity:   ing.Quantity,
			Unit:       ing.Unit,
			PerServing: toVector(food.Nutrition),
			FoodCtx:    food.FoodContext(conversions),
		})
	}

	components, err := s.RecipeComponentsTx(ctx, tx, recipeID)
	if err != nil {
		return err
	}
	var compLines []nutrition.ComponentLine
	for _, comp := range components {
		child, err := s.GetRecipeTx(ctx, tx, comp.ComponentRecipeID)
		if err != nil {
			return err
		}
		compLines = append(compLines, nutrition.ComponentLine{
			Servings:   comp.Servings,
			PerServing: toVector(child.CachedNutrition),
		})
	}

	total, err := nutrition.ForRecipeConsumption(lines, compLines)
	if err != nil {
		return err
	}
	perServing, err := nutrition.PerServingForRecipe(total, recipe.ServingsProduced)
	if err != nil {
		return err
	}

	return s.UpdateRecipeCachedNutrition(ctx, tx, recipeID, toFields(perServing))
}

func refreshDayTx(ctx context.Context, tx *sql.Tx, s *store.Store, dayID int64) error {
	entries, err := s.MealEntriesForDayTx(ctx, tx, dayID)
	if err != nil {
		return err
	}
	total := nutrition.Zero()
	for _, entry := range entries {
		var sourcePerServing nutrition.Vector
		if entry.Source.IsRecipe() {
			r, err := s.GetRecipeTx(ctx, tx, *entry.Source.RecipeID)
			if err != nil {
				return err
			}
			sourcePerServing = toVector(r.CachedNutrition)
		} else {
			f, err := s.GetFoodItemTx(ctx, tx, *entry.Source.FoodItemID)
			if err != nil {
				return err
			}
			sourcePerServing = toVector(f.Nutrition)
		}
		refreshed := nutrition.ForMealEntry(sourcePerServing, entry.Servings, entry.PercentEaten)
		if err := s.RefreshMealEntryFromSource(ctx, tx, entry, toFields(sourcePerServing)); err != nil {
			return err
		}
		total = total.Add(refreshed)
	}
	return s.UpdateDayCachedNutrition(ctx, tx, dayID, toFields(total))
}

func allRecipeIDsTx(ctx context.Context, tx *sql.Tx) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id FROM recipes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func toSet(ids []int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func toVector(n store.NutritionFields) nutrition.Vector {
	return nutrition.Vector{
		Calories:     n.Calories,
		Protein:      n.Protein,
		Carbs:        n.Carbs,
		Fat:          n.Fat,
		Fiber:        n.Fiber,
		Sodium:       n.Sodium,
		Sugar:        n.Sugar,
		SaturatedFat: n.SaturatedFat,
		Cholesterol:  n.Cholesterol,
	}
}

func toFields(v nutrition.Vector) store.NutritionFields {
	return store.NutritionFields{
		Calories:     v.Calories,
		Protein:      v.Protein,
		Carbs:        v.Carbs,
		Fat:          v.Fat,
		Fiber:        v.Fiber,
		Sodium:       v.Sodium,
		Sugar:        v.Sugar,
		SaturatedFat: v.SaturatedFat,
		Cholesterol:  v.Cholesterol,
	}
}
