package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nutrilog/core/internal/units"
)

// schemaVersion is the current schema version this build knows how to
// produce. Migrations are additive-only from v6 onward; downgrade is
// unsupported, matching the documented version ladder (v1 initial
// tables, v5 adds unit-engine columns, v6+ additive).
const schemaVersion = 6

// migrate brings the database schema up to schemaVersion, running
// each numbered step exactly once and recording it in
// schema_migrations. Grounded on
// original_source/src/db/migrations.rs's run_migrations /
// get_schema_version / needs_migration trio, generalized from a
// single hard-coded version to a step list.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}

	steps := []struct {
		version int
		up      func(tx *sql.Tx) error
	}{
		{1, migrateV1},
		{5, migrateV5},
		{6, migrateV6},
	}

	for _, step := range steps {
		if step.version <= current {
			continue
		}
		tx, err := s.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration v%d: %w", step.version, err)
		}
		if err := step.up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("running migration v%d: %w", step.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", step.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration v%d: %w", step.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", step.version, err)
		}
	}

	return nil
}

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(version.Int64), nil
}

// migrateV1 creates the initial tables. Grounded directly on
// original_source/src/db/migrations.rs's migrate_v1 batch: food_items,
// recipes, recipe_ingredients, days, meal_entries, with the same
// column set, defaults, and CHECK constraints.
func migrateV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE food_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			brand TEXT,
			serving_size REAL NOT NULL,
			serving_unit TEXT NOT NULL,

			calories REAL NOT NULL DEFAULT 0,
			protein REAL NOT NULL DEFAULT 0,
			carbs REAL NOT NULL DEFAULT 0,
			fat REAL NOT NULL DEFAULT 0,
			fiber REAL NOT NULL DEFAULT 0,
			sodium REAL NOT NULL DEFAULT 0,
			sugar REAL NOT NULL DEFAULT 0,
			saturated_fat REAL NOT NULL DEFAULT 0,
			cholesterol REAL NOT NULL DEFAULT 0,

			preference TEXT CHECK(preference IN ('liked', 'disliked', 'neutral')) DEFAULT 'neutral',
			notes TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX idx_food_items_name ON food_items(name);
		CREATE INDEX idx_food_items_brand ON food_items(brand);

		CREATE TABLE recipes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			servings_produced REAL NOT NULL DEFAULT 1.0,
			is_favorite INTEGER NOT NULL DEFAULT 0,

			cached_calories REAL DEFAULT 0,
			cached_protein REAL DEFAULT 0,
			cached_carbs REAL DEFAULT 0,
			cached_fat REAL DEFAULT 0,
			cached_fiber REAL DEFAULT 0,
			cached_sodium REAL DEFAULT 0,
			cached_sugar REAL DEFAULT 0,
			cached_saturated_fat REAL DEFAULT 0,
			cached_cholesterol REAL DEFAULT 0,

			notes TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX idx_recipes_name ON recipes(name);
		CREATE INDEX idx_recipes_favorite ON recipes(is_favorite);

		CREATE TABLE recipe_ingredients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			food_item_id INTEGER NOT NULL REFERENCES food_items(id) ON DELETE RESTRICT,
			quantity REAL NOT NULL,
			unit TEXT NOT NULL,

			notes TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),

			UNIQUE(recipe_id, food_item_id)
		);
		CREATE INDEX idx_recipe_ingredients_recipe ON recipe_ingredients(recipe_id);
		CREATE INDEX idx_recipe_ingredients_food ON recipe_ingredients(food_item_id);

		CREATE TABLE recipe_components (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			parent_recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			component_recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE RESTRICT,
			servings REAL NOT NULL DEFAULT 1.0,

			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),

			UNIQUE(parent_recipe_id, component_recipe_id),
			CHECK(parent_recipe_id != component_recipe_id)
		);
		CREATE INDEX idx_recipe_components_parent ON recipe_components(parent_recipe_id);
		CREATE INDEX idx_recipe_components_child ON recipe_components(component_recipe_id);

		CREATE TABLE days (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL UNIQUE,

			cached_calories REAL DEFAULT 0,
			cached_protein REAL DEFAULT 0,
			cached_carbs REAL DEFAULT 0,
			cached_fat REAL DEFAULT 0,
			cached_fiber REAL DEFAULT 0,
			cached_sodium REAL DEFAULT 0,
			cached_sugar REAL DEFAULT 0,
			cached_saturated_fat REAL DEFAULT 0,
			cached_cholesterol REAL DEFAULT 0,
			cached_calories_burned REAL,

			notes TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
		CREATE UNIQUE INDEX idx_days_date ON days(date);

		CREATE TABLE meal_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			day_id INTEGER NOT NULL REFERENCES days(id) ON DELETE CASCADE,
			meal_type TEXT NOT NULL CHECK(meal_type IN ('breakfast', 'lunch', 'dinner', 'snack', 'unspecified')),

			recipe_id INTEGER REFERENCES recipes(id) ON DELETE RESTRICT,
			food_item_id INTEGER REFERENCES food_items(id) ON DELETE RESTRICT,

			servings REAL NOT NULL DEFAULT 1.0,
			percent_eaten REAL NOT NULL DEFAULT 100.0,

			cached_calories REAL DEFAULT 0,
			cached_protein REAL DEFAULT 0,
			cached_carbs REAL DEFAULT 0,
			cached_fat REAL DEFAULT 0,
			cached_fiber REAL DEFAULT 0,
			cached_sodium REAL DEFAULT 0,
			cached_sugar REAL DEFAULT 0,
			cached_saturated_fat REAL DEFAULT 0,
			cached_cholesterol REAL DEFAULT 0,

			notes TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),

			CHECK ((recipe_id IS NOT NULL AND food_item_id IS NULL) OR
			       (recipe_id IS NULL AND food_item_id IS NOT NULL))
		);
		CREATE INDEX idx_meal_entries_day ON meal_entries(day_id);
		CREATE INDEX idx_meal_entries_type ON meal_entries(meal_type);
		CREATE INDEX idx_meal_entries_recipe ON meal_entries(recipe_id);
		CREATE INDEX idx_meal_entries_food ON meal_entries(food_item_id);
	`)
	return err
}

// migrateV5 adds the Unit Engine's supporting columns and the custom
// per-food conversion table, as documented in the schema version
// history.
func migrateV5(tx *sql.Tx) error {
	_, err := tx.Exec(`
		ALTER TABLE food_items ADD COLUMN base_unit_type TEXT CHECK(base_unit_type IN ('mass', 'volume', 'count'));
		ALTER TABLE food_items ADD COLUMN grams_per_serving REAL;
		ALTER TABLE food_items ADD COLUMN ml_per_serving REAL;

		CREATE TABLE food_item_conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			food_item_id INTEGER NOT NULL REFERENCES food_items(id) ON DELETE CASCADE,
			unit_name TEXT NOT NULL,
			grams_equivalent REAL,
			ml_equivalent REAL,

			created_at TEXT NOT NULL DEFAULT (datetime('now')),

			UNIQUE(food_item_id, unit_name),
			CHECK ((grams_equivalent IS NOT NULL AND ml_equivalent IS NULL) OR
			       (grams_equivalent IS NULL AND ml_equivalent IS NOT NULL))
		);
		CREATE INDEX idx_food_item_conversions_food ON food_item_conversions(food_item_id);
	`)
	return err
}

// migrateV6 is additive-only: it backfills base_unit_type for any
// pre-v5 rows left NULL, inferring the type from serving_unit the same
// way the Unit Engine does for new rows.
func migrateV6(tx *sql.Tx) error {
	rows, err := tx.Query(`SELECT id, serving_size, serving_unit FROM food_items WHERE base_unit_type IS NULL`)
	if err != nil {
		return err
	}
	type pending struct {
		id                       int64
		servingSize              float64
		servingUnit              string
	}
	var toFix []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.servingSize, &p.servingUnit); err != nil {
			rows.Close()
			return err
		}
		toFix = append(toFix, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	for _, p := range toFix {
		baseType := units.InferBaseUnitType(p.servingUnit)
		var grams, ml *float64
		if g, ok := units.GramsPerServing(p.servingSize, p.servingUnit); ok {
			grams = &g
		}
		if m, ok := units.MlPerServing(p.servingSize, p.servingUnit); ok {
			ml = &m
		}
		if _, err := tx.Exec(
			`UPDATE food_items SET base_unit_type = ?, grams_per_serving = COALESCE(grams_per_serving, ?), ml_per_serving = COALESCE(ml_per_serving, ?) WHERE id = ?`,
			string(baseType), grams, ml, p.id,
		); err != nil {
			return err
		}
	}
	return nil
}
