package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nutrilog/core/internal/units"
)

const foodItemColumns = `
	id, name, brand, serving_size, serving_unit,
	calories, protein, carbs, fat, fiber, sodium, sugar, saturated_fat, cholesterol,
	base_unit_type, grams_per_serving, ml_per_serving,
	preference, notes, created_at, updated_at
`

func scanFoodItem(scanner interface{ Scan(dest ...any) error }) (FoodItem, error) {
	var f FoodItem
	var baseUnitType sql.NullString
	var preference string
	err := scanner.Scan(
		&f.ID, &f.Name, &f.Brand, &f.ServingSize, &f.ServingUnit,
		&f.Nutrition.Calories, &f.Nutrition.Protein, &f.Nutrition.Carbs, &f.Nutrition.Fat,
		&f.Nutrition.Fiber, &f.Nutrition.Sodium, &f.Nutrition.Sugar,
		&f.Nutrition.SaturatedFat, &f.Nutrition.Cholesterol,
		&baseUnitType, &f.GramsPerServing, &f.MlPerServing,
		&preference, &f.Notes, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return FoodItem{}, err
	}
	f.BaseUnitType = units.BaseUnitType(baseUnitType.String)
	f.Preference = Preference(preference)
	return f, nil
}

// FoodItemCreate carries the fields needed to insert a new food item.
type FoodItemCreate struct {
	Name            string
	Brand           *string
	ServingSize     float64
	ServingUnit     string
	Nutrition       NutritionFields
	BaseUnitType    units.BaseUnitType
	GramsPerServing *float64
	MlPerServing    *float64
	Preference      Preference
	Notes           *string
}

// Validate enforces the FoodItem invariants from the data model: name
// non-empty, serving_size > 0, and the base-unit-type-specific
// gram/ml anchor requirements.
func (c *FoodItemCreate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !(c.ServingSize > 0) {
		return &ValidationError{Field: "serving_size", Reason: "must be greater than 0"}
	}
	switch c.BaseUnitType {
	case units.BaseMass:
		if c.GramsPerServing == nil {
			return &ValidationError{Field: "grams_per_serving", Reason: "required when base_unit_type is mass"}
		}
	case units.BaseVolume:
		if c.MlPerServing == nil {
			return &ValidationError{Field: "ml_per_serving", Reason: "required when base_unit_type is volume"}
		}
	case units.BaseCount:
		if c.GramsPerServing == nil {
			return &ValidationError{Field: "grams_per_serving", Reason: "required when base_unit_type is count (weight of one \"each\")"}
		}
	default:
		return &ValidationError{Field: "base_unit_type", Reason: fmt.Sprintf("unknown base unit type %q", c.BaseUnitType)}
	}
	if !nutritionNonNegative(c.Nutrition) {
		return &ValidationError{Field: "nutrition", Reason: "all fields must be non-negative"}
	}
	return nil
}

func nutritionNonNegative(n NutritionFields) bool {
	fields := [...]float64{
		n.Calories, n.Protein, n.Carbs, n.Fat, n.Fiber, n.Sodium, n.Sugar, n.SaturatedFat, n.Cholesterol,
	}
	for _, f := range fields {
		if f < 0 {
			return false
		}
	}
	return true
}

// CreateFoodItem inserts a new food item after validating it, applying
// the smart-unit parser to backfill grams/ml anchors when the caller
// omitted them but serving_unit carries a parenthetical annotation.
func (s *Store) CreateFoodItem(ctx context.Context, c FoodItemCreate) (*FoodItem, error) {
	if c.BaseUnitType == "" {
		c.BaseUnitType = units.InferBaseUnitType(c.ServingUnit)
	}
	if c.GramsPerServing == nil {
		if g, ok := units.GramsPerServing(c.ServingSize, c.ServingUnit); ok {
			c.GramsPerServing = &g
		}
	}
	if c.MlPerServing == nil {
		if m, ok := units.MlPerServing(c.ServingSize, c.ServingUnit); ok {
			c.MlPerServing = &m
		}
	}
	if c.Preference == "" {
		c.Preference = PreferenceNeutral
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var id int64
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO food_items (
				name, brand, serving_size, serving_unit,
				calories, protein, carbs, fat, fiber, sodium, sugar, saturated_fat, cholesterol,
				base_unit_type, grams_per_serving, ml_per_serving, preference, notes
			) VALUES (?,?,?,?, ?,?,?,?,?,?,?,?,?, ?,?,?,?,?)
		`,
			c.Name, c.Brand, c.ServingSize, c.ServingUnit,
			c.Nutrition.Calories, c.Nutrition.Protein, c.Nutrition.Carbs, c.Nutrition.Fat,
			c.Nutrition.Fiber, c.Nutrition.Sodium, c.Nutrition.Sugar, c.Nutrition.SaturatedFat, c.Nutrition.Cholesterol,
			string(c.BaseUnitType), c.GramsPerServing, c.MlPerServing, string(c.Preference), c.Notes,
		)
		if err != nil {
			return wrapStoreErr("inserting food item", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetFoodItem(ctx, id)
}

// GetFoodItem returns a food item by id, or NotFoundError.
func (s *Store) GetFoodItem(ctx context.Context, id int64) (*FoodItem, error) {
	return getFoodItem(ctx, s.conn, id)
}

// GetFoodItemTx is GetFoodItem run against an open transaction, for
// use by the Cascade Engine inside its own write transaction.
func (s *Store) GetFoodItemTx(ctx context.Context, tx *sql.Tx, id int64) (*FoodItem, error) {
	return getFoodItem(ctx, tx, id)
}

func getFoodItem(ctx context.Context, db dbTx, id int64) (*FoodItem, error) {
	row := db.QueryRowContext(ctx, "SELECT "+foodItemColumns+" FROM food_items WHERE id = ?", id)
	f, err := scanFoodItem(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "food_item", ID: id}
	}
	if err != nil {
		return nil, wrapStoreErr("scanning food item", err)
	}
	return &f, nil
}

// SearchFoodItems finds food items by name/brand substring,
// case-insensitive, ranked exact-prefix first, then substring.
func (s *Store) SearchFoodItems(ctx context.Context, query string, limit int64) ([]FoodItem, error) {
	pattern := "%" + query + "%"
	prefixPattern := query + "%"
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+foodItemColumns+` FROM food_items
		WHERE name LIKE ?1 COLLATE NOCASE OR brand LIKE ?1 COLLATE NOCASE
		ORDER BY
			CASE WHEN name LIKE ?2 COLLATE NOCASE THEN 0 ELSE 1 END,
			name ASC
		LIMIT ?3
	`, pattern, prefixPattern, limit)
	if err != nil {
		return nil, wrapStoreErr("searching food items", err)
	}
	defer rows.Close()
	return scanFoodItems(rows)
}

// FoodItemListFilter narrows a ListFoodItems call.
type FoodItemListFilter struct {
	Preference *Preference `json:"preference,omitempty"`
	SortBy     string      `json:"sort_by,omitempty"` // "name", "created_at", "calories"
	SortDesc   bool        `json:"sort_desc,omitempty"`
	Limit      int64       `json:"limit,omitempty"`
	Offset     int64       `json:"offset,omitempty"`
}

// ListFoodItems returns food items honoring the filter's preference,
// sort, and pagination options.
func (s *Store) ListFoodItems(ctx context.Context, f FoodItemListFilter) ([]FoodItem, error) {
	order := "ASC"
	if f.SortDesc {
		order = "DESC"
	}
	sortCol := "name"
	switch strings.ToLower(f.SortBy) {
	case "created_at":
		sortCol = "created_at"
	case "calories":
		sortCol = "calories"
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if f.Preference != nil {
		q := fmt.Sprintf("SELECT %s FROM food_items WHERE preference = ? ORDER BY %s %s LIMIT ? OFFSET ?", foodItemColumns, sortCol, order)
		rows, err = s.conn.QueryContext(ctx, q, string(*f.Preference), limit, f.Offset)
	} else {
		q := fmt.Sprintf("SELECT %s FROM food_items ORDER BY %s %s LIMIT ? OFFSET ?", foodItemColumns, sortCol, order)
		rows, err = s.conn.QueryContext(ctx, q, limit, f.Offset)
	}
	if err != nil {
		return nil, wrapStoreErr("listing food items", err)
	}
	defer rows.Close()
	return scanFoodItems(rows)
}

func scanFoodItems(rows *sql.Rows) ([]FoodItem, error) {
	var items []FoodItem
	for rows.Next() {
		f, err := scanFoodItem(rows)
		if err != nil {
			return nil, wrapStoreErr("scanning food item row", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// FoodItemUpdate carries optional field changes; nil fields are left
// untouched.
type FoodItemUpdate struct {
	Name            *string
	Brand           *string
	ServingSize     *float64
	ServingUnit     *string
	Nutrition       *NutritionFields
	BaseUnitType    *units.BaseUnitType
	GramsPerServing *float64
	MlPerServing    *float64
	Preference      *Preference
	Notes           *string
	Force           bool
}

// changesIdentity reports whether this update touches name or brand,
// the fields the usage-count guard protects.
func (u *FoodItemUpdate) changesIdentity() bool {
	return u.Name != nil || u.Brand != nil
}

// UpdateFoodItem applies the update. Identity-field changes
// (name/brand) are rejected when the item is in use unless Force is
// set. The caller (Operation Surface) is responsible for invoking the
// Cascade Engine afterward unless batch mode is active — this method
// only performs the primary-data write.
func (s *Store) UpdateFoodItem(ctx context.Context, id int64, u FoodItemUpdate) (*FoodItem, error) {
	existing, err := s.GetFoodItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.changesIdentity() && !u.Force {
		count, err := s.FoodItemUsageCount(ctx, id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			names, err := s.UsedInRecipes(ctx, id)
			if err != nil {
				return nil, err
			}
			return nil, &ModificationBlockedError{
				Entity:   "food_item",
				Reason:   "identity fields cannot change while referenced by recipes; pass force=true to override",
				Blockers: names,
			}
		}
	}

	if u.Nutrition != nil && !nutritionNonNegative(*u.Nutrition) {
		return nil, &ValidationError{Field: "nutrition", Reason: "all fields must be non-negative"}
	}

	name := existing.Name
	if u.Name != nil {
		name = *u.Name
	}
	brand := existing.Brand
	if u.Brand != nil {
		brand = u.Brand
	}
	servingSize := existing.ServingSize
	if u.ServingSize != nil {
		servingSize = *u.ServingSize
	}
	if !(servingSize > 0) {
		return nil, &ValidationError{Field: "serving_size", Reason: "must be greater than 0"}
	}
	servingUnit := existing.ServingUnit
	if u.ServingUnit != nil {
		servingUnit = *u.ServingUnit
	}
	nut := existing.Nutrition
	if u.Nutrition != nil {
		nut = *u.Nutrition
	}
	baseType := existing.BaseUnitType
	if u.BaseUnitType != nil {
		baseType = *u.BaseUnitType
	}
	grams := existing.GramsPerServing
	if u.GramsPerServing != nil {
		grams = u.GramsPerServing
	}
	ml := existing.MlPerServing
	if u.MlPerServing != nil {
		ml = u.MlPerServing
	}
	pref := existing.Preference
	if u.Preference != nil {
		pref = *u.Preference
	}
	notes := existing.Notes
	if u.Notes != nil {
		notes = u.Notes
	}

	err = s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE food_items SET
				name = ?, brand = ?, serving_size = ?, serving_unit = ?,
				calories = ?, protein = ?, carbs = ?, fat = ?, fiber = ?, sodium = ?, sugar = ?, saturated_fat = ?, cholesterol = ?,
				base_unit_type = ?, grams_per_serving = ?, ml_per_serving = ?, preference = ?, notes = ?,
				updated_at = datetime('now')
			WHERE id = ?
		`,
			name, brand, servingSize, servingUnit,
			nut.Calories, nut.Protein, nut.Carbs, nut.Fat, nut.Fiber, nut.Sodium, nut.Sugar, nut.SaturatedFat, nut.Cholesterol,
			string(baseType), grams, ml, string(pref), notes,
			id,
		)
		return wrapStoreErr("updating food item", err)
	})
	if err != nil {
		return nil, err
	}
	return s.GetFoodItem(ctx, id)
}

// DeleteFoodItem removes a food item after the integrity guard proves
// it is unreferenced by any RecipeIngredient.
func (s *Store) DeleteFoodItem(ctx context.Context, id int64) error {
	if _, err := s.GetFoodItem(ctx, id); err != nil {
		return err
	}
	count, err := s.FoodItemUsageCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		names, err := s.UsedInRecipes(ctx, id)
		if err != nil {
			return err
		}
		return &ModificationBlockedError{Entity: "food_item", Reason: "referenced by recipes", Blockers: names}
	}
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM food_items WHERE id = ?", id)
		return wrapStoreErr("deleting food item", err)
	})
}

// FoodItemUsageCount returns the number of distinct recipes
// referencing this food item as an ingredient.
func (s *Store) FoodItemUsageCount(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT recipe_id) FROM recipe_ingredients WHERE food_item_id = ?", id,
	).Scan(&count)
	return count, wrapStoreErr("counting food item usage", err)
}

// UsedInRecipes returns the names of recipes referencing this food item.
func (s *Store) UsedInRecipes(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT DISTINCT r.name FROM recipes r
		JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		WHERE ri.food_item_id = ?
		ORDER BY r.name
	`, id)
	if err != nil {
		return nil, wrapStoreErr("listing recipes using food item", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapStoreErr("scanning recipe name", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UnusedFoodItems returns food items referenced by no recipe ingredient.
func (s *Store) UnusedFoodItems(ctx context.Context) ([]FoodItem, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+foodItemColumns+` FROM food_items f
		WHERE NOT EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.food_item_id = f.id)
		ORDER BY f.name
	`)
	if err != nil {
		return nil, wrapStoreErr("listing unused food items", err)
	}
	defer rows.Close()
	return scanFoodItems(rows)
}

// FoodItemConversions returns all custom unit conversions for a food item.
func (s *Store) FoodItemConversions(ctx context.Context, foodItemID int64) ([]FoodItemConversion, error) {
	return foodItemConversions(ctx, s.conn, foodItemID)
}

// FoodItemConversionsTx is FoodItemConversions run against an open
// transaction, for use by the Cascade Engine.
func (s *Store) FoodItemConversionsTx(ctx context.Context, tx *sql.Tx, foodItemID int64) ([]FoodItemConversion, error) {
	return foodItemConversions(ctx, tx, foodItemID)
}

func foodItemConversions(ctx context.Context, db dbTx, foodItemID int64) ([]FoodItemConversion, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, food_item_id, unit_name, grams_equivalent, ml_equivalent
		FROM food_item_conversions WHERE food_item_id = ?
	`, foodItemID)
	if err != nil {
		return nil, wrapStoreErr("listing food item conversions", err)
	}
	defer rows.Close()
	var out []FoodItemConversion
	for rows.Next() {
		var c FoodItemConversion
		if err := rows.Scan(&c.ID, &c.FoodItemID, &c.UnitName, &c.GramsEquivalent, &c.MlEquivalent); err != nil {
			return nil, wrapStoreErr("scanning food item conversion", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddFoodItemConversion inserts a custom unit conversion for a food item.
func (s *Store) AddFoodItemConversion(ctx context.Context, c FoodItemConversion) (*FoodItemConversion, error) {
	if (c.GramsEquivalent == nil) == (c.MlEquivalent == nil) {
		return nil, &ValidationError{Field: "grams_equivalent/ml_equivalent", Reason: "exactly one must be set"}
	}
	if strings.TrimSpace(c.UnitName) == "" {
		return nil, &ValidationError{Field: "unit_name", Reason: "must not be empty"}
	}
	var id int64
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO food_item_conversions (food_item_id, unit_name, grams_equivalent, ml_equivalent)
			VALUES (?, ?, ?, ?)
		`, c.FoodItemID, strings.ToLower(c.UnitName), c.GramsEquivalent, c.MlEquivalent)
		if err != nil {
			return wrapStoreErr("inserting food item conversion", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	c.ID = id
	return &c, nil
}

// FoodContext builds the Unit Engine's FoodContext for f, wiring its
// custom conversions in as the CustomConversion lookup. The Cascade
// Engine uses this to resolve an ingredient
// quantity/unit against a food item's own units, never globally.
func (f *FoodItem) FoodContext(conversions []FoodItemConversion) units.FoodContext {
	byUnit := make(map[string]FoodItemConversion, len(conversions))
	for _, c := range conversions {
		byUnit[strings.ToLower(c.UnitName)] = c
	}
	return units.FoodContext{
		BaseUnitType:    f.BaseUnitType,
		ServingSize:     f.ServingSize,
		ServingUnit:     f.ServingUnit,
		GramsPerServing: f.GramsPerServing,
		MlPerServing:    f.MlPerServing,
		CustomConversion: func(unitName string) (*float64, *float64, bool) {
			c, ok := byUnit[strings.ToLower(unitName)]
			if !ok {
				return nil, nil, false
			}
			return c.GramsEquivalent, c.MlEquivalent, true
		},
	}
}
