package store

import (
	"errors"
	"testing"

	"github.com/nutrilog/core/internal/units"
)

func mustLogMeal(t *testing.T, s *Store, c MealEntryCreate) *MealEntry {
	t.Helper()
	m, err := s.LogMeal(t.Context(), c)
	if err != nil {
		t.Fatalf("logging meal: %v", err)
	}
	return m
}

// loggedRecipe returns a recipe with one meal entry against it, so
// RecipeTimesLogged(id) > 0.
func loggedRecipe(t *testing.T, s *Store) *Recipe {
	t.Helper()
	food := mustCreateFoodItem(t, s, FoodItemCreate{
		Name: "Rice", ServingSize: 100, ServingUnit: "g",
		BaseUnitType: units.BaseMass, GramsPerServing: f64ptr(100),
		Nutrition: NutritionFields{Calories: 130}, Preference: PreferenceNeutral,
	})
	recipe := mustCreateRecipe(t, s, RecipeCreate{Name: "Bowl", ServingsProduced: 1})
	if _, err := s.AddRecipeIngredient(t.Context(), RecipeIngredientCreate{
		RecipeID: recipe.ID, FoodItemID: food.ID, Quantity: 100, Unit: "g",
	}); err != nil {
		t.Fatalf("adding ingredient: %v", err)
	}
	day := mustGetOrCreateDay(t, s, "2026-08-06")
	mustLogMeal(t, s, MealEntryCreate{
		DayID: day.ID, MealType: MealBreakfast, Servings: 1, PercentEaten: 100,
		Source: MealSource{RecipeID: &recipe.ID},
	})
	return recipe
}

func TestUpdateRecipe_BlocksServingsProducedWhenLogged(t *testing.T) {
	s := openTestStore(t)
	recipe := loggedRecipe(t, s)

	_, err := s.UpdateRecipe(t.Context(), recipe.ID, RecipeUpdate{ServingsProduced: f64ptr(2)})
	var mbe *ModificationBlockedError
	if !errors.As(err, &mbe) {
		t.Fatalf("expected *ModificationBlockedError for servings_produced change on a logged recipe, got %T: %v", err, err)
	}
}

func TestUpdateRecipe_ForceOverridesServingsProducedGuard(t *testing.T) {
	s := openTestStore(t)
	recipe := loggedRecipe(t, s)

	updated, err := s.UpdateRecipe(t.Context(), recipe.ID, RecipeUpdate{ServingsProduced: f64ptr(2), Force: true})
	if err != nil {
		t.Fatalf("unexpected error with force=true: %v", err)
	}
	if updated.ServingsProduced != 2 {
		t.Errorf("servings_produced = %v, want 2", updated.ServingsProduced)
	}
}

func TestUpdateRecipe_NameFavoriteNotesNeverBlockedWhenLogged(t *testing.T) {
	s := openTestStore(t)
	recipe := loggedRecipe(t, s)

	name := "Renamed Bowl"
	notes := "extra crispy"
	updated, err := s.UpdateRecipe(t.Context(), recipe.ID, RecipeUpdate{
		Name: &name, IsFavorite: boolPtr(true), Notes: &notes,
	})
	if err != nil {
		t.Fatalf("unexpected error updating name/is_favorite/notes on a logged recipe: %v", err)
	}
	if updated.Name != name {
		t.Errorf("name = %q, want %q", updated.Name, name)
	}
	if !updated.IsFavorite {
		t.Error("is_favorite = false, want true")
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Errorf("notes = %v, want %q", updated.Notes, notes)
	}
}

func boolPtr(b bool) *bool { return &b }
