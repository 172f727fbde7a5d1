package ops

import (
	"context"

	"github.com/nutrilog/core/internal/store"
	"github.com/nutrilog/core/internal/units"
)

// FoodItemResult carries a food item's post-write state plus whatever
// cascade it triggered.
type FoodItemResult struct {
	FoodItem store.FoodItem `json:"food_item"`
	CascadeCounts
}

// AddFoodItemArgs is the add verb's argument schema.
type AddFoodItemArgs struct {
	Name            string                `json:"name"`
	Brand           *string               `json:"brand,omitempty"`
	ServingSize     float64               `json:"serving_size"`
	ServingUnit     string                `json:"serving_unit"`
	Nutrition       store.NutritionFields `json:"nutrition"`
	BaseUnitType    string                `json:"base_unit_type"`
	GramsPerServing *float64              `json:"grams_per_serving,omitempty"`
	MlPerServing    *float64              `json:"ml_per_serving,omitempty"`
	Preference      string                `json:"preference"`
	Notes           *string               `json:"notes,omitempty"`
}

// AddFoodItem creates a food item. It never triggers a cascade — a
// brand-new food item has no dependents yet.
func (s *Surface) AddFoodItem(ctx context.Context, a AddFoodItemArgs) (*store.FoodItem, error) {
	if err := requireNonEmpty("name", a.Name); err != nil {
		return nil, err
	}
	if err := requirePositive("serving_size", a.ServingSize); err != nil {
		return nil, err
	}
	f, err := s.Store.CreateFoodItem(ctx, store.FoodItemCreate{
		Name:            a.Name,
		Brand:           a.Brand,
		ServingSize:     a.ServingSize,
		ServingUnit:     a.ServingUnit,
		Nutrition:       a.Nutrition,
		BaseUnitType:    units.BaseUnitType(a.BaseUnitType),
		GramsPerServing: a.GramsPerServing,
		MlPerServing:    a.MlPerServing,
		Preference:      store.Preference(a.Preference),
		Notes:           a.Notes,
	})
	return f, wrapf("add_food_item", err)
}

// SearchFoodItems finds food items by name/brand substring.
func (s *Surface) SearchFoodItems(ctx context.Context, query string, limit int64) ([]store.FoodItem, error) {
	if limit <= 0 {
		limit = 20
	}
	items, err := s.Store.SearchFoodItems(ctx, query, limit)
	return items, wrapf("search_food_items", err)
}

// FoodItemDetail is the get verb's result: the item plus its usage
// footprint, per spec.md §4.5's "get (with usage_count and up-to-N
// referencing recipe names)."
type FoodItemDetail struct {
	FoodItem          store.FoodItem `json:"food_item"`
	UsageCount        int64          `json:"usage_count"`
	ReferencingRecipe []string       `json:"referencing_recipes"`
}

// GetFoodItem returns a food item plus up to maxRecipeNames of the
// recipes that reference it.
func (s *Surface) GetFoodItem(ctx context.Context, id int64, maxRecipeNames int) (*FoodItemDetail, error) {
	f, err := s.Store.GetFoodItem(ctx, id)
	if err != nil {
		return nil, wrapf("get_food_item", err)
	}
	count, err := s.Store.FoodItemUsageCount(ctx, id)
	if err != nil {
		return nil, wrapf("get_food_item", err)
	}
	names, err := s.Store.UsedInRecipes(ctx, id)
	if err != nil {
		return nil, wrapf("get_food_item", err)
	}
	if maxRecipeNames > 0 && len(names) > maxRecipeNames {
		names = names[:maxRecipeNames]
	}
	return &FoodItemDetail{FoodItem: *f, UsageCount: count, ReferencingRecipe: names}, nil
}

// ListFoodItems lists food items honoring a preference filter, sort,
// and pagination.
func (s *Surface) ListFoodItems(ctx context.Context, f store.FoodItemListFilter) ([]store.FoodItem, error) {
	items, err := s.Store.ListFoodItems(ctx, f)
	return items, wrapf("list_food_items", err)
}

// UpdateFoodItemArgs is the update verb's argument schema. Nil fields
// are left untouched.
type UpdateFoodItemArgs struct {
	Name            *string                `json:"name,omitempty"`
	Brand           *string                `json:"brand,omitempty"`
	ServingSize     *float64               `json:"serving_size,omitempty"`
	ServingUnit     *string                `json:"serving_unit,omitempty"`
	Nutrition       *store.NutritionFields `json:"nutrition,omitempty"`
	BaseUnitType    *string                `json:"base_unit_type,omitempty"`
	GramsPerServing *float64               `json:"grams_per_serving,omitempty"`
	MlPerServing    *float64               `json:"ml_per_serving,omitempty"`
	Preference      *string                `json:"preference,omitempty"`
	Notes           *string                `json:"notes,omitempty"`
	Force           bool                   `json:"force,omitempty"`
}

// UpdateFoodItem applies a field update, then cascades unless batch
// mode is active — updating a food item's nutrition or identity is
// the leaf mutation the Cascade Engine exists to propagate.
func (s *Surface) UpdateFoodItem(ctx context.Context, id int64, a UpdateFoodItemArgs) (*FoodItemResult, error) {
	if a.ServingSize != nil {
		if err := requirePositive("serving_size", *a.ServingSize); err != nil {
			return nil, err
		}
	}
	u := store.FoodItemUpdate{
		Name:            a.Name,
		Brand:           a.Brand,
		ServingSize:     a.ServingSize,
		ServingUnit:     a.ServingUnit,
		Nutrition:       a.Nutrition,
		GramsPerServing: a.GramsPerServing,
		MlPerServing:    a.MlPerServing,
		Notes:           a.Notes,
		Force:           a.Force,
	}
	if a.BaseUnitType != nil {
		bt := units.BaseUnitType(*a.BaseUnitType)
		u.BaseUnitType = &bt
	}
	if a.Preference != nil {
		pref := store.Preference(*a.Preference)
		u.Preference = &pref
	}

	f, err := s.Store.UpdateFoodItem(ctx, id, u)
	if err != nil {
		return nil, wrapf("update_food_item", err)
	}

	counts, err := s.cascadeFoodItem(ctx, id)
	if err != nil {
		return nil, wrapf("update_food_item", err)
	}
	return &FoodItemResult{FoodItem: *f, CascadeCounts: counts}, nil
}

// DeleteFoodItem removes a food item, refusing when the integrity
// guard finds it still referenced.
func (s *Surface) DeleteFoodItem(ctx context.Context, id int64) error {
	return wrapf("delete_food_item", s.Store.DeleteFoodItem(ctx, id))
}

// ListUnusedFoodItems returns food items referenced by no recipe.
func (s *Surface) ListUnusedFoodItems(ctx context.Context) ([]store.FoodItem, error) {
	items, err := s.Store.UnusedFoodItems(ctx)
	return items, wrapf("list_unused_food_items", err)
}
