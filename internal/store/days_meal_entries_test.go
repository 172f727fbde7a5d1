package store

import (
	"errors"
	"testing"

	"github.com/nutrilog/core/internal/units"
)

func TestGetOrCreateDay_Idempotent(t *testing.T) {
	s := openTestStore(t)
	d1, err := s.GetOrCreateDay(t.Context(), "2026-08-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, err := s.GetOrCreateDay(t.Context(), "2026-08-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d1.ID != d2.ID {
		t.Errorf("GetOrCreateDay for the same date returned different rows: %d vs %d", d1.ID, d2.ID)
	}
}

func TestLogMeal_RejectsBothOrNeitherSource(t *testing.T) {
	s := openTestStore(t)
	day := mustGetOrCreateDay(t, s, "2026-08-06")

	_, err := s.LogMeal(t.Context(), MealEntryCreate{
		DayID: day.ID, MealType: MealBreakfast, Servings: 1, PercentEaten: 100,
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError for a source-less meal entry, got %T: %v", err, err)
	}

	food := mustCreateFoodItem(t, s, FoodItemCreate{
		Name: "Rice", ServingSize: 100, ServingUnit: "g",
		BaseUnitType: units.BaseMass, GramsPerServing: f64ptr(100),
		Nutrition: NutritionFields{Calories: 130}, Preference: PreferenceNeutral,
	})
	recipe := mustCreateRecipe(t, s, RecipeCreate{Name: "Bowl", ServingsProduced: 1})

	_, err = s.LogMeal(t.Context(), MealEntryCreate{
		DayID: day.ID, MealType: MealBreakfast, Servings: 1, PercentEaten: 100,
		Source: MealSource{RecipeID: &recipe.ID, FoodItemID: &food.ID},
	})
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError for a dual-source meal entry, got %T: %v", err, err)
	}
}

func TestLogMeal_RefreshesDayCache(t *testing.T) {
	s := openTestStore(t)
	day := mustGetOrCreateDay(t, s, "2026-08-06")
	oats := mustCreateFoodItem(t, s, FoodItemCreate{
		Name: "Rolled Oats", ServingSize: 40, ServingUnit: "g",
		BaseUnitType: units.BaseMass, GramsPerServing: f64ptr(40),
		Nutrition: NutritionFields{Calories: 150}, Preference: PreferenceNeutral,
	})

	entry, err := s.LogMeal(t.Context(), MealEntryCreate{
		DayID: day.ID, MealType: MealBreakfast, Servings: 1, PercentEaten: 100,
		Source: MealSource{FoodItemID: &oats.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.CachedNutrition.Calories != 150 {
		t.Errorf("meal entry cached calories = %v, want 150", entry.CachedNutrition.Calories)
	}

	refreshed, err := s.GetDay(t.Context(), day.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed.CachedNutrition.Calories != 150 {
		t.Errorf("day cached calories = %v, want 150", refreshed.CachedNutrition.Calories)
	}
}

func TestLogMeal_PercentEatenBoundaries(t *testing.T) {
	s := openTestStore(t)
	day := mustGetOrCreateDay(t, s, "2026-08-06")
	food := mustCreateFoodItem(t, s, FoodItemCreate{
		Name: "Rice", ServingSize: 100, ServingUnit: "g",
		BaseUnitType: units.BaseMass, GramsPerServing: f64ptr(100),
		Nutrition: NutritionFields{Calories: 130}, Preference: PreferenceNeutral,
	})

	// percent_eaten=0 is allowed and yields a zero cached vector.
	entry, err := s.LogMeal(t.Context(), MealEntryCreate{
		DayID: day.ID, MealType: MealSnack, Servings: 1, PercentEaten: 0,
		Source: MealSource{FoodItemID: &food.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error for percent_eaten=0: %v", err)
	}
	if entry.CachedNutrition.Calories != 0 {
		t.Errorf("cached calories with percent_eaten=0 = %v, want 0", entry.CachedNutrition.Calories)
	}

	// percent_eaten>100 is rejected.
	_, err = s.LogMeal(t.Context(), MealEntryCreate{
		DayID: day.ID, MealType: MealSnack, Servings: 1, PercentEaten: 150,
		Source: MealSource{FoodItemID: &food.ID},
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError for percent_eaten>100, got %T: %v", err, err)
	}
}

func mustGetOrCreateDay(t *testing.T, s *Store, date string) *Day {
	t.Helper()
	d, err := s.GetOrCreateDay(t.Context(), date)
	if err != nil {
		t.Fatalf("getting or creating day %q: %v", date, err)
	}
	return d
}
