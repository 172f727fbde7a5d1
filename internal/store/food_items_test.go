package store

import (
	"errors"
	"testing"

	"github.com/nutrilog/core/internal/units"
)

func TestCreateFoodItem_RequiresGramsPerServingForMass(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateFoodItem(t.Context(), FoodItemCreate{
		Name:         "No grams",
		ServingSize:  1,
		ServingUnit:  "scoop",
		BaseUnitType: units.BaseMass,
		Preference:   PreferenceNeutral,
	})
	if err == nil {
		t.Fatal("expected an error for a mass-based item missing grams_per_serving")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}

func TestCreateFoodItem_RejectsEmptyName(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateFoodItem(t.Context(), FoodItemCreate{
		Name:            "  ",
		ServingSize:     100,
		ServingUnit:     "g",
		BaseUnitType:    units.BaseMass,
		GramsPerServing: f64ptr(100),
		Preference:      PreferenceNeutral,
	})
	if err == nil {
		t.Fatal("expected an error for a blank name")
	}
}

func TestFoodItemUsageCount_And_UnusedFoodItems(t *testing.T) {
	s := openTestStore(t)
	oats := mustCreateFoodItem(t, s, FoodItemCreate{
		Name: "Rolled Oats", ServingSize: 40, ServingUnit: "g",
		BaseUnitType: units.BaseMass, GramsPerServing: f64ptr(40),
		Nutrition: NutritionFields{Calories: 150}, Preference: PreferenceNeutral,
	})
	unused := mustCreateFoodItem(t, s, FoodItemCreate{
		Name: "Unused Item", ServingSize: 10, ServingUnit: "g",
		BaseUnitType: units.BaseMass, GramsPerServing: f64ptr(10),
		Preference: PreferenceNeutral,
	})

	count, err := s.FoodItemUsageCount(t.Context(), oats.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("usage count for a food item with no recipes = %d, want 0", count)
	}

	recipe := mustCreateRecipe(t, s, RecipeCreate{Name: "Oatmeal", ServingsProduced: 1})
	if _, err := s.AddRecipeIngredient(t.Context(), RecipeIngredientCreate{
		RecipeID: recipe.ID, FoodItemID: oats.ID, Quantity: 40, Unit: "g",
	}); err != nil {
		t.Fatalf("adding ingredient: %v", err)
	}

	count, err = s.FoodItemUsageCount(t.Context(), oats.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("usage count after one ingredient reference = %d, want 1", count)
	}

	unusedList, err := s.UnusedFoodItems(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, f := range unusedList {
		if f.ID == unused.ID {
			found = true
		}
		if f.ID == oats.ID {
			t.Error("a food item used by a recipe should not appear in UnusedFoodItems")
		}
	}
	if !found {
		t.Error("expected the never-referenced food item in UnusedFoodItems")
	}
}

func TestDeleteFoodItem_IntegrityBlock(t *testing.T) {
	// Scenario 5: a FoodItem used by one Recipe refuses deletion until
	// the referencing ingredient is removed.
	s := openTestStore(t)
	oil := mustCreateFoodItem(t, s, FoodItemCreate{
		Name: "Olive Oil", ServingSize: 100, ServingUnit: "ml",
		BaseUnitType: units.BaseVolume, MlPerServing: f64ptr(100),
		Nutrition: NutritionFields{Calories: 890}, Preference: PreferenceNeutral,
	})
	sauce := mustCreateRecipe(t, s, RecipeCreate{Name: "Sauce", ServingsProduced: 1})
	ingredient, err := s.AddRecipeIngredient(t.Context(), RecipeIngredientCreate{
		RecipeID: sauce.ID, FoodItemID: oil.ID, Quantity: 30, Unit: "ml",
	})
	if err != nil {
		t.Fatalf("adding ingredient: %v", err)
	}

	err = s.DeleteFoodItem(t.Context(), oil.ID)
	var blocked *ModificationBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected *ModificationBlockedError, got %T: %v", err, err)
	}
	found := false
	for _, b := range blocked.Blockers {
		if b == sauce.Name {
			found = true
		}
	}
	if !found {
		t.Errorf("expected blockers to name %q, got %v", sauce.Name, blocked.Blockers)
	}

	if err := s.RemoveRecipeIngredient(t.Context(), ingredient.ID); err != nil {
		t.Fatalf("removing ingredient: %v", err)
	}
	if err := s.DeleteFoodItem(t.Context(), oil.ID); err != nil {
		t.Errorf("delete after removing the last reference should succeed, got: %v", err)
	}
}

func TestGetFoodItem_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetFoodItem(t.Context(), 999)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %T: %v", err, err)
	}
}
