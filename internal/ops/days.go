package ops

import (
	"context"
	"database/sql"

	"github.com/nutrilog/core/internal/store"
)

// DayDetail is the get_day verb's result: the day's primary data plus
// its meal entries grouped by meal type, per spec.md §4.5's "get_day
// (with meals grouped by meal_type and totals)" — totals are the day's
// own CachedNutrition field.
type DayDetail struct {
	Day         store.Day                            `json:"day"`
	MealsByType map[store.MealType][]store.MealEntry `json:"meals_by_type"`
}

// GetOrCreateDay returns the day for date, creating an empty one first
// if none exists.
func (s *Surface) GetOrCreateDay(ctx context.Context, date string) (*store.Day, error) {
	if err := requireNonEmpty("date", date); err != nil {
		return nil, err
	}
	d, err := s.Store.GetOrCreateDay(ctx, date)
	return d, wrapf("get_or_create_day", err)
}

// GetDay returns a day with its meal entries grouped by meal type.
func (s *Surface) GetDay(ctx context.Context, id int64) (*DayDetail, error) {
	d, err := s.Store.GetDay(ctx, id)
	if err != nil {
		return nil, wrapf("get_day", err)
	}
	entries, err := s.Store.MealEntriesForDay(ctx, id)
	if err != nil {
		return nil, wrapf("get_day", err)
	}
	byType := make(map[store.MealType][]store.MealEntry)
	for _, e := range entries {
		byType[e.MealType] = append(byType[e.MealType], e)
	}
	return &DayDetail{Day: *d, MealsByType: byType}, nil
}

// ListDays lists days within an optional date range.
func (s *Surface) ListDays(ctx context.Context, startDate, endDate string, limit, offset int64) ([]store.Day, error) {
	days, err := s.Store.ListDays(ctx, startDate, endDate, limit, offset)
	return days, wrapf("list_days", err)
}

// UpdateDay changes a day's freeform notes — the only user-editable
// primary field.
func (s *Surface) UpdateDay(ctx context.Context, id int64, notes *string) (*store.Day, error) {
	d, err := s.Store.UpdateDayNotes(ctx, id, notes)
	return d, wrapf("update_day", err)
}

// UpdateDayCaloriesBurned records an optional external activity total.
func (s *Surface) UpdateDayCaloriesBurned(ctx context.Context, id int64, caloriesBurned *float64) (*store.Day, error) {
	if caloriesBurned != nil {
		if err := requireFinite("calories_burned", *caloriesBurned); err != nil {
			return nil, err
		}
		if *caloriesBurned < 0 {
			return nil, &store.ValidationError{Field: "calories_burned", Reason: "must be non-negative"}
		}
	}
	d, err := s.Store.UpdateDayCaloriesBurned(ctx, id, caloriesBurned)
	return d, wrapf("update_day_calories_burned", err)
}

// LogMealArgs is the log_meal verb's argument schema. PercentEaten is
// a pointer so an omitted field can default to 100 while an explicit
// percent_eaten=0 (nothing eaten, logged anyway) is honored as-is.
type LogMealArgs struct {
	DayID        int64    `json:"day_id"`
	MealType     string   `json:"meal_type"`
	RecipeID     *int64   `json:"recipe_id,omitempty"`
	FoodItemID   *int64   `json:"food_item_id,omitempty"`
	Servings     float64  `json:"servings"`
	PercentEaten *float64 `json:"percent_eaten,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// LogMeal records a consumption event on a day.
func (s *Surface) LogMeal(ctx context.Context, a LogMealArgs) (*store.MealEntry, error) {
	if err := requirePositive("servings", a.Servings); err != nil {
		return nil, err
	}
	percentEaten := 100.0
	if a.PercentEaten != nil {
		percentEaten = *a.PercentEaten
	}
	m, err := s.Store.LogMeal(ctx, store.MealEntryCreate{
		DayID:        a.DayID,
		MealType:     store.MealType(a.MealType),
		Source:       store.MealSource{RecipeID: a.RecipeID, FoodItemID: a.FoodItemID},
		Servings:     a.Servings,
		PercentEaten: percentEaten,
		Notes:        a.Notes,
	})
	return m, wrapf("log_meal", err)
}

// GetMealEntry returns a meal entry by id.
func (s *Surface) GetMealEntry(ctx context.Context, id int64) (*store.MealEntry, error) {
	m, err := s.Store.GetMealEntry(ctx, id)
	return m, wrapf("get_meal_entry", err)
}

// UpdateMealEntryArgs is the update_meal_entry verb's argument schema.
// Source is intentionally absent — it is immutable after creation.
type UpdateMealEntryArgs struct {
	MealType     *string  `json:"meal_type,omitempty"`
	Servings     *float64 `json:"servings,omitempty"`
	PercentEaten *float64 `json:"percent_eaten,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// UpdateMealEntry changes servings/percent/meal_type/notes on a
// logged meal, recomputing its cache from its (immutable) source.
func (s *Surface) UpdateMealEntry(ctx context.Context, id int64, a UpdateMealEntryArgs) (*store.MealEntry, error) {
	if a.Servings != nil {
		if err := requirePositive("servings", *a.Servings); err != nil {
			return nil, err
		}
	}
	u := store.MealEntryUpdate{
		Servings:     a.Servings,
		PercentEaten: a.PercentEaten,
		Notes:        a.Notes,
	}
	if a.MealType != nil {
		mt := store.MealType(*a.MealType)
		u.MealType = &mt
	}
	m, err := s.Store.UpdateMealEntry(ctx, id, u)
	return m, wrapf("update_meal_entry", err)
}

// DeleteMealEntry removes a logged meal.
func (s *Surface) DeleteMealEntry(ctx context.Context, id int64) error {
	return wrapf("delete_meal_entry", s.Store.DeleteMealEntry(ctx, id))
}

// RecalculateDayNutrition forces a day's cached total to be recomputed
// from its meal entries' current caches, without touching any recipe
// or food item cache.
func (s *Surface) RecalculateDayNutrition(ctx context.Context, dayID int64) (*store.Day, error) {
	if _, err := s.Store.GetDay(ctx, dayID); err != nil {
		return nil, wrapf("recalculate_day_nutrition", err)
	}
	entries, err := s.Store.MealEntriesForDay(ctx, dayID)
	if err != nil {
		return nil, wrapf("recalculate_day_nutrition", err)
	}
	var total store.NutritionFields
	for _, e := range entries {
		total = addFields(total, e.CachedNutrition)
	}
	err = s.Store.RunCascadeTx(ctx, func(tx *sql.Tx) error {
		return s.Store.UpdateDayCachedNutrition(ctx, tx, dayID, total)
	})
	if err != nil {
		return nil, wrapf("recalculate_day_nutrition", err)
	}
	d, err := s.Store.GetDay(ctx, dayID)
	return d, wrapf("recalculate_day_nutrition", err)
}

func addFields(a, b store.NutritionFields) store.NutritionFields {
	return store.NutritionFields{
		Calories:     a.Calories + b.Calories,
		Protein:      a.Protein + b.Protein,
		Carbs:        a.Carbs + b.Carbs,
		Fat:          a.Fat + b.Fat,
		Fiber:        a.Fiber + b.Fiber,
		Sodium:       a.Sodium + b.Sodium,
		Sugar:        a.Sugar + b.Sugar,
		SaturatedFat: a.SaturatedFat + b.SaturatedFat,
		Cholesterol:  a.Cholesterol + b.Cholesterol,
	}
}

// ListOrphanedDays returns days with no logged meal entries.
func (s *Surface) ListOrphanedDays(ctx context.Context) ([]store.Day, error) {
	days, err := s.Store.OrphanedDays(ctx)
	return days, wrapf("list_orphaned_days", err)
}

// DeleteDay removes a day, refusing when it still has meal entries.
func (s *Surface) DeleteDay(ctx context.Context, id int64) error {
	return wrapf("delete_day", s.Store.DeleteDay(ctx, id))
}
