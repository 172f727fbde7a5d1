package store

import (
	"context"
	"database/sql"
	"fmt"
)

const dayColumns = `
	id, date,
	cached_calories, cached_protein, cached_carbs, cached_fat, cached_fiber,
	cached_sodium, cached_sugar, cached_saturated_fat, cached_cholesterol,
	cached_calories_burned, notes, created_at, updated_at
`

func scanDay(scanner interface{ Scan(dest ...any) error }) (Day, error) {
	var d Day
	err := scanner.Scan(
		&d.ID, &d.Date,
		&d.CachedNutrition.Calories, &d.CachedNutrition.Protein, &d.CachedNutrition.Carbs,
		&d.CachedNutrition.Fat, &d.CachedNutrition.Fiber, &d.CachedNutrition.Sodium,
		&d.CachedNutrition.Sugar, &d.CachedNutrition.SaturatedFat, &d.CachedNutrition.Cholesterol,
		&d.CachedCaloriesBurned, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// GetOrCreateDay returns the day for the given ISO date, creating an
// empty one if none exists yet.
func (s *Store) GetOrCreateDay(ctx context.Context, date string) (*Day, error) {
	if d, err := s.GetDayByDate(ctx, date); err == nil {
		return d, nil
	} else if _, ok := err.(*NotFoundError); !ok {
		return nil, err
	}

	var id int64
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "INSERT INTO days (date) VALUES (?)", date)
		if err != nil {
			return wrapStoreErr("inserting day", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetDay(ctx, id)
}

// GetDay returns a day by id, or NotFoundError.
func (s *Store) GetDay(ctx context.Context, id int64) (*Day, error) {
	row := s.conn.QueryRowContext(ctx, "SELECT "+dayColumns+" FROM days WHERE id = ?", id)
	d, err := scanDay(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "day", ID: id}
	}
	if err != nil {
		return nil, wrapStoreErr("scanning day", err)
	}
	return &d, nil
}

// GetDayByDate returns a day by its ISO date, or NotFoundError.
func (s *Store) GetDayByDate(ctx context.Context, date string) (*Day, error) {
	row := s.conn.QueryRowContext(ctx, "SELECT "+dayColumns+" FROM days WHERE date = ?", date)
	d, err := scanDay(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "day", ID: 0}
	}
	if err != nil {
		return nil, wrapStoreErr("scanning day", err)
	}
	return &d, nil
}

// ListDays returns days within an optional [startDate, endDate] range,
// most recent first.
func (s *Store) ListDays(ctx context.Context, startDate, endDate string, limit, offset int64) ([]Day, error) {
	q := "SELECT " + dayColumns + " FROM days WHERE 1=1"
	var args []any
	if startDate != "" {
		q += " AND date >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		q += " AND date <= ?"
		args = append(args, endDate)
	}
	q += " ORDER BY date DESC"
	if limit <= 0 || limit > 366 {
		limit = 30
	}
	q += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStoreErr("listing days", err)
	}
	defer rows.Close()
	var out []Day
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, wrapStoreErr("scanning day row", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpdateDayNotes changes a day's freeform notes. Notes are the only
// user-editable primary field on a day; everything else is either
// identity (date) or cascade-owned (cached nutrition).
func (s *Store) UpdateDayNotes(ctx context.Context, id int64, notes *string) (*Day, error) {
	if _, err := s.GetDay(ctx, id); err != nil {
		return nil, err
	}
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE days SET notes = ?, updated_at = datetime('now') WHERE id = ?", notes, id)
		return wrapStoreErr("updating day notes", err)
	})
	if err != nil {
		return nil, err
	}
	return s.GetDay(ctx, id)
}

// UpdateDayCaloriesBurned records an optional external activity total
// for the day, independent of the nutrition cascade.
func (s *Store) UpdateDayCaloriesBurned(ctx context.Context, id int64, caloriesBurned *float64) (*Day, error) {
	if _, err := s.GetDay(ctx, id); err != nil {
		return nil, err
	}
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "UPDATE days SET cached_calories_burned = ?, updated_at = datetime('now') WHERE id = ?", caloriesBurned, id)
		return wrapStoreErr("updating day calories burned", err)
	})
	if err != nil {
		return nil, err
	}
	return s.GetDay(ctx, id)
}

// UpdateDayCachedNutrition overwrites a day's cached nutrition vector.
// This is the Cascade Engine's write path.
func (s *Store) UpdateDayCachedNutrition(ctx context.Context, tx *sql.Tx, id int64, n NutritionFields) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE days SET
			cached_calories = ?, cached_protein = ?, cached_carbs = ?, cached_fat = ?, cached_fiber = ?,
			cached_sodium = ?, cached_sugar = ?, cached_saturated_fat = ?, cached_cholesterol = ?,
			updated_at = datetime('now')
		WHERE id = ?
	`,
		n.Calories, n.Protein, n.Carbs, n.Fat, n.Fiber, n.Sodium, n.Sugar, n.SaturatedFat, n.Cholesterol, id,
	)
	return wrapStoreErr("updating day cached nutrition", err)
}

// DeleteDay removes a day, refusing when it still has meal entries —
// emptiness must be established first by deleting them.
func (s *Store) DeleteDay(ctx context.Context, id int64) error {
	if _, err := s.GetDay(ctx, id); err != nil {
		return err
	}
	entries, err := s.MealEntriesForDay(ctx, id)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		return &ModificationBlockedError{Entity: "day", Reason: "day still has logged meal entries", Blockers: []string{fmt.Sprintf("%d meal entries", len(entries))}}
	}
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM days WHERE id = ?", id)
		return wrapStoreErr("deleting day", err)
	})
}

// OrphanedDays lists days with no logged meal entries — safe deletion
// candidates surfaced by the integrity-cleanup surface, since an empty
// day carries no history and DeleteDay would otherwise refuse to
// remove a day it can't first prove is empty without a caller running
// this query themselves.
func (s *Store) OrphanedDays(ctx context.Context) ([]Day, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+dayColumns+` FROM days d
		WHERE NOT EXISTS (SELECT 1 FROM meal_entries m WHERE m.day_id = d.id)
		ORDER BY d.date
	`)
	if err != nil {
		return nil, wrapStoreErr("listing orphaned days", err)
	}
	defer rows.Close()
	var days []Day
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// AllDayIDs returns every day id, used by RecalculateAll recovery pass.
func (s *Store) AllDayIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id FROM days")
	if err != nil {
		return nil, wrapStoreErr("listing all day ids", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapStoreErr("scanning day id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
