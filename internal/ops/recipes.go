package ops

import (
	"context"

	"github.com/nutrilog/core/internal/store"
)

// RecipeDetail is the get verb's result: the recipe's primary data
// plus its direct ingredients and components, per spec.md §4.5's "get
// (returns ingredients, components, per-serving nutrition)" — the
// per-serving vector is the recipe's own CachedNutrition field.
type RecipeDetail struct {
	Recipe      store.Recipe             `json:"recipe"`
	Ingredients []store.RecipeIngredient `json:"ingredients"`
	Components  []store.RecipeComponent  `json:"components"`
}

// RecipeResult carries a recipe's post-write state plus whatever
// cascade it triggered.
type RecipeResult struct {
	Recipe store.Recipe `json:"recipe"`
	CascadeCounts
}

// CreateRecipeArgs is the create verb's argument schema.
type CreateRecipeArgs struct {
	Name             string  `json:"name"`
	ServingsProduced float64 `json:"servings_produced"`
	IsFavorite       bool    `json:"is_favorite,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// CreateRecipe creates an empty recipe. No cascade: an empty recipe
// has a zero cache already correct by construction.
func (s *Surface) CreateRecipe(ctx context.Context, a CreateRecipeArgs) (*store.Recipe, error) {
	if err := requireNonEmpty("name", a.Name); err != nil {
		return nil, err
	}
	r, err := s.Store.CreateRecipe(ctx, store.RecipeCreate{
		Name:             a.Name,
		ServingsProduced: a.ServingsProduced,
		IsFavorite:       a.IsFavorite,
		Notes:            a.Notes,
	})
	return r, wrapf("create_recipe", err)
}

// GetRecipe returns a recipe with its ingredients and components.
func (s *Surface) GetRecipe(ctx context.Context, id int64) (*RecipeDetail, error) {
	r, err := s.Store.GetRecipe(ctx, id)
	if err != nil {
		return nil, wrapf("get_recipe", err)
	}
	ingredients, err := s.Store.RecipeIngredients(ctx, id)
	if err != nil {
		return nil, wrapf("get_recipe", err)
	}
	components, err := s.Store.RecipeComponents(ctx, id)
	if err != nil {
		return nil, wrapf("get_recipe", err)
	}
	return &RecipeDetail{Recipe: *r, Ingredients: ingredients, Components: components}, nil
}

// ListRecipes lists recipes honoring the query/favorites/sort/pagination filter.
func (s *Surface) ListRecipes(ctx context.Context, f store.RecipeListFilter) ([]store.Recipe, error) {
	recipes, err := s.Store.ListRecipes(ctx, f)
	return recipes, wrapf("list_recipes", err)
}

// UpdateRecipeArgs is the update verb's argument schema. Force
// overrides the servings_produced-vs-times_logged guard (spec.md
// §4.3); it has no effect on name/is_favorite/notes, which carry no
// such guard.
type UpdateRecipeArgs struct {
	Name             *string  `json:"name,omitempty"`
	ServingsProduced *float64 `json:"servings_produced,omitempty"`
	IsFavorite       *bool    `json:"is_favorite,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
	Force            bool     `json:"force,omitempty"`
}

// UpdateRecipe applies primary-data changes, cascading when
// servings_produced changed since that rescales the per-serving cache.
func (s *Surface) UpdateRecipe(ctx context.Context, id int64, a UpdateRecipeArgs) (*RecipeResult, error) {
	if a.ServingsProduced != nil {
		if err := requirePositive("servings_produced", *a.ServingsProduced); err != nil {
			return nil, err
		}
	}
	r, err := s.Store.UpdateRecipe(ctx, id, store.RecipeUpdate{
		Name:             a.Name,
		ServingsProduced: a.ServingsProduced,
		IsFavorite:       a.IsFavorite,
		Notes:            a.Notes,
		Force:            a.Force,
	})
	if err != nil {
		return nil, wrapf("update_recipe", err)
	}
	if a.ServingsProduced == nil {
		return &RecipeResult{Recipe: *r}, nil
	}
	counts, err := s.cascadeRecipe(ctx, id)
	if err != nil {
		return nil, wrapf("update_recipe", err)
	}
	return &RecipeResult{Recipe: *r, CascadeCounts: counts}, nil
}

// DeleteRecipe removes a recipe, refusing when it is logged or used as
// another recipe's component.
func (s *Surface) DeleteRecipe(ctx context.Context, id int64) error {
	return wrapf("delete_recipe", s.Store.DeleteRecipe(ctx, id))
}

// AddIngredientArgs is the add-ingredient verb's argument schema.
type AddIngredientArgs struct {
	RecipeID   int64   `json:"recipe_id"`
	FoodItemID int64   `json:"food_item_id"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Notes      *string `json:"notes,omitempty"`
}

// AddRecipeIngredient adds a food item to a recipe and cascades the
// owning recipe's recalculation.
func (s *Surface) AddRecipeIngredient(ctx context.Context, a AddIngredientArgs) (*RecipeResult, error) {
	if err := requirePositive("quantity", a.Quantity); err != nil {
		return nil, err
	}
	if err := requireNonEmpty("unit", a.Unit); err != nil {
		return nil, err
	}
	if _, err := s.Store.AddRecipeIngredient(ctx, store.RecipeIngredientCreate{
		RecipeID:   a.RecipeID,
		FoodItemID: a.FoodItemID,
		Quantity:   a.Quantity,
		Unit:       a.Unit,
		Notes:      a.Notes,
	}); err != nil {
		return nil, wrapf("add_recipe_ingredient", err)
	}
	return s.recalcAfterIngredientEdit(ctx, a.RecipeID, "add_recipe_ingredient")
}

// UpdateIngredientArgs is the update-ingredient verb's argument schema.
type UpdateIngredientArgs struct {
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

// UpdateRecipeIngredient changes an ingredient's quantity/unit/notes
// and cascades the owning recipe.
func (s *Surface) UpdateRecipeIngredient(ctx context.Context, ingredientID int64, a UpdateIngredientArgs) (*RecipeResult, error) {
	if a.Quantity != nil {
		if err := requirePositive("quantity", *a.Quantity); err != nil {
			return nil, err
		}
	}
	ri, err := s.Store.UpdateRecipeIngredient(ctx, ingredientID, store.RecipeIngredientUpdate{
		Quantity: a.Quantity,
		Unit:     a.Unit,
		Notes:    a.Notes,
	})
	if err != nil {
		return nil, wrapf("update_recipe_ingredient", err)
	}
	return s.recalcAfterIngredientEdit(ctx, ri.RecipeID, "update_recipe_ingredient")
}

// RemoveRecipeIngredient deletes a recipe ingredient and cascades the
// owning recipe.
func (s *Surface) RemoveRecipeIngredient(ctx context.Context, ingredientID int64) (*RecipeResult, error) {
	ri, err := s.Store.GetRecipeIngredient(ctx, ingredientID)
	if err != nil {
		return nil, wrapf("remove_recipe_ingredient", err)
	}
	if err := s.Store.RemoveRecipeIngredient(ctx, ingredientID); err != nil {
		return nil, wrapf("remove_recipe_ingredient", err)
	}
	return s.recalcAfterIngredientEdit(ctx, ri.RecipeID, "remove_recipe_ingredient")
}

func (s *Surface) recalcAfterIngredientEdit(ctx context.Context, recipeID int64, verb string) (*RecipeResult, error) {
	counts, err := s.cascadeRecipe(ctx, recipeID)
	if err != nil {
		return nil, wrapf(verb, err)
	}
	r, err := s.Store.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, wrapf(verb, err)
	}
	return &RecipeResult{Recipe: *r, CascadeCounts: counts}, nil
}

// AddComponentArgs is the add-component verb's argument schema.
type AddComponentArgs struct {
	ParentRecipeID    int64   `json:"parent_recipe_id"`
	ComponentRecipeID int64   `json:"component_recipe_id"`
	Servings          float64 `json:"servings"`
}

// AddRecipeComponent links a sub-recipe into a parent recipe's
// component list, refusing a cycle, then cascades the parent.
func (s *Surface) AddRecipeComponent(ctx context.Context, a AddComponentArgs) (*RecipeResult, error) {
	if a.Servings != 0 {
		if err := requirePositive("servings", a.Servings); err != nil {
			return nil, err
		}
	}
	if _, err := s.Store.AddRecipeComponent(ctx, store.RecipeComponentCreate{
		ParentRecipeID:    a.ParentRecipeID,
		ComponentRecipeID: a.ComponentRecipeID,
		Servings:          a.Servings,
	}); err != nil {
		return nil, wrapf("add_recipe_component", err)
	}
	return s.recalcAfterIngredientEdit(ctx, a.ParentRecipeID, "add_recipe_component")
}

// UpdateRecipeComponentServings changes how many servings of a
// component a parent recipe uses, then cascades the parent.
func (s *Surface) UpdateRecipeComponentServings(ctx context.Context, componentID int64, servings float64) (*RecipeResult, error) {
	if err := requirePositive("servings", servings); err != nil {
		return nil, err
	}
	rc, err := s.Store.UpdateRecipeComponentServings(ctx, componentID, servings)
	if err != nil {
		return nil, wrapf("update_recipe_component", err)
	}
	return s.recalcAfterIngredientEdit(ctx, rc.ParentRecipeID, "update_recipe_component")
}

// RemoveRecipeComponent deletes a component edge and cascades the parent.
func (s *Surface) RemoveRecipeComponent(ctx context.Context, componentID int64) (*RecipeResult, error) {
	rc, err := s.Store.GetRecipeComponent(ctx, componentID)
	if err != nil {
		return nil, wrapf("remove_recipe_component", err)
	}
	if err := s.Store.RemoveRecipeComponent(ctx, componentID); err != nil {
		return nil, wrapf("remove_recipe_component", err)
	}
	return s.recalcAfterIngredientEdit(ctx, rc.ParentRecipeID, "remove_recipe_component")
}

// RecalculateRecipe forces a recalculation of a single recipe's cache
// (and its transitive parents/days), independent of any leaf edit —
// the manual recalculate_recipe_nutrition verb of spec.md §4.5.
func (s *Surface) RecalculateRecipe(ctx context.Context, recipeID int64) (*RecipeResult, error) {
	if _, err := s.Store.GetRecipe(ctx, recipeID); err != nil {
		return nil, wrapf("recalculate_recipe", err)
	}
	return s.recalcAfterIngredientEdit(ctx, recipeID, "recalculate_recipe")
}

// BatchAddIngredientsArgs is the batch-add-ingredients verb's schema:
// every ingredient is added under one write, then exactly one cascade
// runs for the owning recipe, per spec.md §4.5's "atomic:
// add-all-then-single-cascade."
type BatchAddIngredientsArgs struct {
	RecipeID    int64               `json:"recipe_id"`
	Ingredients []AddIngredientArgs `json:"ingredients"`
}

// BatchAddIngredients adds every ingredient before cascading once,
// avoiding the N cascades that N sequential AddRecipeIngredient calls
// would otherwise trigger.
func (s *Surface) BatchAddIngredients(ctx context.Context, a BatchAddIngredientsArgs) (*RecipeResult, error) {
	if _, err := s.Store.GetRecipe(ctx, a.RecipeID); err != nil {
		return nil, wrapf("batch_add_ingredients", err)
	}
	for _, ing := range a.Ingredients {
		if err := requirePositive("quantity", ing.Quantity); err != nil {
			return nil, err
		}
		if err := requireNonEmpty("unit", ing.Unit); err != nil {
			return nil, err
		}
		if _, err := s.Store.AddRecipeIngredient(ctx, store.RecipeIngredientCreate{
			RecipeID:   a.RecipeID,
			FoodItemID: ing.FoodItemID,
			Quantity:   ing.Quantity,
			Unit:       ing.Unit,
			Notes:      ing.Notes,
		}); err != nil {
			return nil, wrapf("batch_add_ingredients", err)
		}
	}
	return s.recalcAfterIngredientEdit(ctx, a.RecipeID, "batch_add_ingredients")
}

// ListUnusedRecipes returns recipes logged nowhere and used as no
// other recipe's component.
func (s *Surface) ListUnusedRecipes(ctx context.Context) ([]store.Recipe, error) {
	recipes, err := s.Store.UnusedRecipes(ctx)
	return recipes, wrapf("list_unused_recipes", err)
}
