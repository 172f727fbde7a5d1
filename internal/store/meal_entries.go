package store

import (
	"context"
	"database/sql"
)

func scaleNutrition(n NutritionFields, multiplier float64) NutritionFields {
	return NutritionFields{
		Calories:     n.Calories * multiplier,
		Protein:      n.Protein * multiplier,
		Carbs:        n.Carbs * multiplier,
		Fat:          n.Fat * multiplier,
		Fiber:        n.Fiber * multiplier,
		Sodium:       n.Sodium * multiplier,
		Sugar:        n.Sugar * multiplier,
		SaturatedFat: n.SaturatedFat * multiplier,
		Cholesterol:  n.Cholesterol * multiplier,
	}
}

func addNutrition(a, b NutritionFields) NutritionFields {
	return NutritionFields{
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

const mealEntryColumns = `
	id, day_id, meal_type, recipe_id, food_item_id, servings, percent_eaten,
	cached_calories, cached_protein, cached_carbs, cached_fat, cached_fiber,
	cached_sodium, cached_sugar, cached_saturated_fat, cached_cholesterol,
	notes, created_at, updated_at
`

func scanMealEntry(scanner interface{ Scan(dest ...any) error }) (MealEntry, error) {
	var m MealEntry
	var mealType string
	err := scanner.Scan(
		&m.ID, &m.DayID, &mealType, &m.Source.RecipeID, &m.Source.FoodItemID, &m.Servings, &m.PercentEaten,
		&m.CachedNutrition.Calories, &m.CachedNutrition.Protein, &m.CachedNutrition.Carbs,
		&m.CachedNutrition.Fat, &m.CachedNutrition.Fiber, &m.CachedNutrition.Sodium,
		&m.CachedNutrition.Sugar, &m.CachedNutrition.SaturatedFat, &m.CachedNutrition.Cholesterol,
		&m.Notes, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return MealEntry{}, err
	}
	m.MealType = MealType(mealType)
	return m, nil
}

// MealEntryCreate carries the fields needed to log a meal. Exactly one
// of Source.RecipeID / Source.FoodItemID must be set.
type MealEntryCreate struct {
	DayID        int64
	MealType     MealType
	Source       MealSource
	Servings     float64
	PercentEaten float64
	Notes        *string
}

func (c *MealEntryCreate) validate() error {
	if c.Source.IsRecipe() == c.Source.IsFoodItem() {
		return &ValidationError{Field: "source", Reason: "exactly one of recipe_id or food_item_id must be set"}
	}
	if c.Servings <= 0 {
		return &ValidationError{Field: "servings", Reason: "must be greater than 0"}
	}
	if c.PercentEaten < 0 || c.PercentEaten > 100 {
		return &ValidationError{Field: "percent_eaten", Reason: "must be between 0 and 100"}
	}
	return nil
}

// sourceNutrition looks up the current cached per-serving nutrition of
// a meal entry's source.
func (s *Store) sourceNutrition(ctx context.Context, source MealSource) (NutritionFields, error) {
	if source.IsRecipe() {
		r, err := s.GetRecipe(ctx, *source.RecipeID)
		if err != nil {
			return NutritionFields{}, err
		}
		return r.CachedNutrition, nil
	}
	f, err := s.GetFoodItem(ctx, *source.FoodItemID)
	if err != nil {
		return NutritionFields{}, err
	}
	return f.Nutrition, nil
}

// LogMeal creates a meal entry, computing its cached nutrition from
// the source's current cached nutrition scaled by servings and percent
// eaten, then refreshes the owning day's cached total. Grounded on
// original_source/src/models/meal_entry.rs's create +
// recalculate_day_nutrition pairing.
func (s *Store) LogMeal(ctx context.Context, c MealEntryCreate) (*MealEntry, error) {
	if c.MealType == "" {
		c.MealType = MealUnspecified
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetDay(ctx, c.DayID); err != nil {
		return nil, err
	}

	base, err := s.sourceNutrition(ctx, c.Source)
	if err != nil {
		return nil, err
	}
	nutrition := scaleNutrition(base, c.Servings*(c.PercentEaten/100.0))

	var id int64
	err = s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO meal_entries (
				day_id, meal_type, recipe_id, food_item_id, servings, percent_eaten,
				cached_calories, cached_protein, cached_carbs, cached_fat, cached_fiber,
				cached_sodium, cached_sugar, cached_saturated_fat, cached_cholesterol, notes
			) VALUES (?,?,?,?,?,?, ?,?,?,?,?,?,?,?,?, ?)
		`,
			c.DayID, string(c.MealType), c.Source.RecipeID, c.Source.FoodItemID, c.Servings, c.PercentEaten,
			nutrition.Calories, nutrition.Protein, nutrition.Carbs, nutrition.Fat, nutrition.Fiber,
			nutrition.Sodium, nutrition.Sugar, nutrition.SaturatedFat, nutrition.Cholesterol, c.Notes,
		)
		if err != nil {
			return wrapStoreErr("inserting meal entry", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return s.refreshDayTotalTx(ctx, tx, c.DayID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetMealEntry(ctx, id)
}

// GetMealEntry returns a meal entry by id, or NotFoundError.
func (s *Store) GetMealEntry(ctx context.Context, id int64) (*MealEntry, error) {
	row := s.conn.QueryRowContext(ctx, "SELECT "+mealEntryColumns+" FROM meal_entries WHERE id = ?", id)
	m, err := scanMealEntry(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "meal_entry", ID: id}
	}
	if err != nil {
		return nil, wrapStoreErr("scanning meal entry", err)
	}
	return &m, nil
}

// MealEntriesForDay returns all meal entries for a day, ordered by
// meal type then insertion order.
func (s *Store) MealEntriesForDay(ctx context.Context, dayID int64) ([]MealEntry, error) {
	return mealEntriesForDay(ctx, s.conn, dayID)
}

// MealEntriesForDayTx is MealEntriesForDay run against an open
// transaction, for use by the Cascade Engine.
func (s *Store) MealEntriesForDayTx(ctx context.Context, tx *sql.Tx, dayID int64) ([]MealEntry, error) {
	return mealEntriesForDay(ctx, tx, dayID)
}

func mealEntriesForDay(ctx context.Context, db dbTx, dayID int64) ([]MealEntry, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+mealEntryColumns+" FROM meal_entries WHERE day_id = ? ORDER BY meal_type, id", dayID)
	if err != nil {
		return nil, wrapStoreErr("listing meal entries for day", err)
	}
	defer rows.Close()
	var out []MealEntry
	for rows.Next() {
		m, err := scanMealEntry(rows)
		if err != nil {
			return nil, wrapStoreErr("scanning meal entry row", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MealEntryUpdate carries optional field changes. Source is immutable
// after creation — changing what was eaten means deleting and
// re-logging, not editing history in place.
type MealEntryUpdate struct {
	MealType     *MealType
	Servings     *float64
	PercentEaten *float64
	Notes        *string
}

// UpdateMealEntry applies field changes and, if servings or percent
// eaten changed, refreshes the entry's cached nutrition from its
// source's current cached value before refreshing the owning day.
func (s *Store) UpdateMealEntry(ctx context.Context, id int64, u MealEntryUpdate) (*MealEntry, error) {
	existing, err := s.GetMealEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	mealType := existing.MealType
	if u.MealType != nil {
		mealType = *u.MealType
	}
	servings := existing.Servings
	if u.Servings != nil {
		servings = *u.Servings
	}
	if servings <= 0 {
		return nil, &ValidationError{Field: "servings", Reason: "must be greater than 0"}
	}
	percentEaten := existing.PercentEaten
	if u.PercentEaten != nil {
		percentEaten = *u.PercentEaten
	}
	if percentEaten < 0 || percentEaten > 100 {
		return nil, &ValidationError{Field: "percent_eaten", Reason: "must be between 0 and 100"}
	}
	notes := existing.Notes
	if u.Notes != nil {
		notes = u.Notes
	}

	needsRecalc := u.Servings != nil || u.PercentEaten != nil
	nutrition := existing.CachedNutrition
	if needsRecalc {
		base, err := s.sourceNutrition(ctx, existing.Source)
		if err != nil {
			return nil, err
		}
		nutrition = scaleNutrition(base, servings*(percentEaten/100.0))
	}

	err = s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE meal_entries SET
				meal_type = ?, servings = ?, percent_eaten = ?, notes = ?,
				cached_calories = ?, cached_protein = ?, cached_carbs = ?, cached_fat = ?, cached_fiber = ?,
				cached_sodium = ?, cached_sugar = ?, cached_saturated_fat = ?, cached_cholesterol = ?,
				updated_at = datetime('now')
			WHERE id = ?
		`,
			string(mealType), servings, percentEaten, notes,
			nutrition.Calories, nutrition.Protein, nutrition.Carbs, nutrition.Fat, nutrition.Fiber,
			nutrition.Sodium, nutrition.Sugar, nutrition.SaturatedFat, nutrition.Cholesterol,
			id,
		)
		if err != nil {
			return wrapStoreErr("updating meal entry", err)
		}
		return s.refreshDayTotalTx(ctx, tx, existing.DayID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetMealEntry(ctx, id)
}

// DeleteMealEntry removes a logged meal and refreshes its day's total.
func (s *Store) DeleteMealEntry(ctx context.Context, id int64) error {
	existing, err := s.GetMealEntry(ctx, id)
	if err != nil {
		return err
	}
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM meal_entries WHERE id = ?", id)
		if err != nil {
			return wrapStoreErr("deleting meal entry", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrapStoreErr("checking meal entry delete", err)
		}
		if n == 0 {
			return &NotFoundError{Entity: "meal_entry", ID: existing.ID}
		}
		return s.refreshDayTotalTx(ctx, tx, existing.DayID)
	})
}

// RefreshMealEntryFromSource re-reads a meal entry's source's current
// cached nutrition and rewrites the entry's own cache, without
// touching servings/percent_eaten. This is the Cascade Engine's write
// path for historical meal entries whose recipe or food item changed.
func (s *Store) RefreshMealEntryFromSource(ctx context.Context, tx *sql.Tx, entry MealEntry, sourceNutrition NutritionFields) error {
	nutrition := scaleNutrition(sourceNutrition, entry.Servings*(entry.PercentEaten/100.0))
	_, err := tx.ExecContext(ctx, `
		UPDATE meal_entries SET
			cached_calories = ?, cached_protein = ?, cached_carbs = ?, cached_fat = ?, cached_fiber = ?,
			cached_sodium = ?, cached_sugar = ?, cached_saturated_fat = ?, cached_cholesterol = ?,
			updated_at = datetime('now')
		WHERE id = ?
	`,
		nutrition.Calories, nutrition.Protein, nutrition.Carbs, nutrition.Fat, nutrition.Fiber,
		nutrition.Sodium, nutrition.Sugar, nutrition.SaturatedFat, nutrition.Cholesterol,
		entry.ID,
	)
	return wrapStoreErr("refreshing meal entry from source", err)
}

// refreshDayTotalTx sums all of a day's meal entries' cached nutrition
// and writes the result as the day's cached total. Must run inside the
// same transaction as the meal entry write that triggered it.
func (s *Store) refreshDayTotalTx(ctx context.Context, tx *sql.Tx, dayID int64) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT cached_calories, cached_protein, cached_carbs, cached_fat, cached_fiber,
		       cached_sodium, cached_sugar, cached_saturated_fat, cached_cholesterol
		FROM meal_entries WHERE day_id = ?
	`, dayID)
	if err != nil {
		return wrapStoreErr("reading meal entries for day total", err)
	}
	defer rows.Close()

	var total NutritionFields
	for rows.Next() {
		var n NutritionFields
		if err := rows.Scan(&n.Calories, &n.Protein, &n.Carbs, &n.Fat, &n.Fiber, &n.Sodium, &n.Sugar, &n.SaturatedFat, &n.Cholesterol); err != nil {
			return wrapStoreErr("scanning meal entry nutrition", err)
		}
		total = addNutrition(total, n)
	}
	if err := rows.Err(); err != nil {
		return wrapStoreErr("iterating meal entries for day total", err)
	}

	return s.UpdateDayCachedNutrition(ctx, tx, dayID, total)
}
