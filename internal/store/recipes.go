package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const recipeColumns = `
	id, name, servings_produced, is_favorite,
	cached_calories, cached_protein, cached_carbs, cached_fat, cached_fiber,
	cached_sodium, cached_sugar, cached_saturated_fat, cached_cholesterol,
	notes, created_at, updated_at
`

func scanRecipe(scanner interface{ Scan(dest ...any) error }) (Recipe, error) {
	var r Recipe
	var isFavorite int
	err := scanner.Scan(
		&r.ID, &r.Name, &r.ServingsProduced, &isFavorite,
		&r.CachedNutrition.Calories, &r.CachedNutrition.Protein, &r.CachedNutrition.Carbs,
		&r.CachedNutrition.Fat, &r.CachedNutrition.Fiber, &r.CachedNutrition.Sodium,
		&r.CachedNutrition.Sugar, &r.CachedNutrition.SaturatedFat, &r.CachedNutrition.Cholesterol,
		&r.Notes, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return Recipe{}, err
	}
	r.IsFavorite = isFavorite != 0
	return r, nil
}

// RecipeCreate carries the fields needed to insert a new recipe. Cached
// nutrition always starts at zero; the caller (Operation Surface) is
// expected to call the Cascade Engine's recalculation immediately
// after creating ingredients, not before.
type RecipeCreate struct {
	Name             string
	ServingsProduced float64
	IsFavorite       bool
	Notes            *string
}

// CreateRecipe inserts a new, empty recipe.
func (s *Store) CreateRecipe(ctx context.Context, c RecipeCreate) (*Recipe, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if c.ServingsProduced <= 0 {
		c.ServingsProduced = 1.0
	}

	var id int64
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO recipes (name, servings_produced, is_favorite, notes) VALUES (?, ?, ?, ?)`,
			c.Name, c.ServingsProduced, boolToInt(c.IsFavorite), c.Notes,
		)
		if err != nil {
			return wrapStoreErr("inserting recipe", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, id)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetRecipe returns a recipe by id, or NotFoundError.
func (s *Store) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	return getRecipe(ctx, s.conn, id)
}

// GetRecipeTx is GetRecipe run against an open transaction, for use by
// the Cascade Engine inside its own write transaction.
func (s *Store) GetRecipeTx(ctx context.Context, tx *sql.Tx, id int64) (*Recipe, error) {
	return getRecipe(ctx, tx, id)
}

func getRecipe(ctx context.Context, db dbTx, id int64) (*Recipe, error) {
	row := db.QueryRowContext(ctx, "SELECT "+recipeColumns+" FROM recipes WHERE id = ?", id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "recipe", ID: id}
	}
	if err != nil {
		return nil, wrapStoreErr("scanning recipe", err)
	}
	return &r, nil
}

// RecipeIngredients returns the direct food-item ingredients of a recipe.
func (s *Store) RecipeIngredients(ctx context.Context, recipeID int64) ([]RecipeIngredient, error) {
	return recipeIngredients(ctx, s.conn, recipeID)
}

// RecipeIngredientsTx is RecipeIngredients run against an open
// transaction, for use by the Cascade Engine.
func (s *Store) RecipeIngredientsTx(ctx context.Context, tx *sql.Tx, recipeID int64) ([]RecipeIngredient, error) {
	return recipeIngredients(ctx, tx, recipeID)
}

func recipeIngredients(ctx context.Context, db dbTx, recipeID int64) ([]RecipeIngredient, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, recipe_id, food_item_id, quantity, unit, notes, created_at, updated_at
		FROM recipe_ingredients WHERE recipe_id = ? ORDER BY id
	`, recipeID)
	if err != nil {
		return nil, wrapStoreErr("listing recipe ingredients", err)
	}
	defer rows.Close()
	var out []RecipeIngredient
	for rows.Next() {
		var ri RecipeIngredient
		if err := rows.Scan(&ri.ID, &ri.RecipeID, &ri.FoodItemID, &ri.Quantity, &ri.Unit, &ri.Notes, &ri.CreatedAt, &ri.UpdatedAt); err != nil {
			return nil, wrapStoreErr("scanning recipe ingredient", err)
		}
		out = append(out, ri)
	}
	return out, rows.Err()
}

// RecipeComponents returns the direct sub-recipe components of a recipe.
func (s *Store) RecipeComponents(ctx context.Context, parentRecipeID int64) ([]RecipeComponent, error) {
	return recipeComponents(ctx, s.conn, parentRecipeID)
}

// RecipeComponentsTx is RecipeComponents run against an open
// transaction, for use by the Cascade Engine.
func (s *Store) RecipeComponentsTx(ctx context.Context, tx *sql.Tx, parentRecipeID int64) ([]RecipeComponent, error) {
	return recipeComponents(ctx, tx, parentRecipeID)
}

func recipeComponents(ctx context.Context, db dbTx, parentRecipeID int64) ([]RecipeComponent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, parent_recipe_id, component_recipe_id, servings, created_at, updated_at
		FROM recipe_components WHERE parent_recipe_id = ? ORDER BY id
	`, parentRecipeID)
	if err != nil {
		return nil, wrapStoreErr("listing recipe components", err)
	}
	defer rows.Close()
	var out []RecipeComponent
	for rows.Next() {
		var rc RecipeComponent
		if err := rows.Scan(&rc.ID, &rc.ParentRecipeID, &rc.ComponentRecipeID, &rc.Servings, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
			return nil, wrapStoreErr("scanning recipe component", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// RecipeListFilter narrows a ListRecipes call.
type RecipeListFilter struct {
	Query         string `json:"query,omitempty"`
	FavoritesOnly bool   `json:"favorites_only,omitempty"`
	SortBy        string `json:"sort_by,omitempty"` // "name", "created_at"
	SortDesc      bool   `json:"sort_desc,omitempty"`
	Limit         int64  `json:"limit,omitempty"`
	Offset        int64  `json:"offset,omitempty"`
}

// ListRecipes returns recipes honoring query/favorites/sort/pagination.
func (s *Store) ListRecipes(ctx context.Context, f RecipeListFilter) ([]Recipe, error) {
	order := "ASC"
	if f.SortDesc {
		order = "DESC"
	}
	sortCol := "name"
	if strings.ToLower(f.SortBy) == "created_at" {
		sortCol = "created_at"
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var where []string
	var args []any
	if f.Query != "" {
		where = append(where, "name LIKE ? COLLATE NOCASE")
		args = append(args, "%"+f.Query+"%")
	}
	if f.FavoritesOnly {
		where = append(where, "is_favorite = 1")
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}
	q := fmt.Sprintf("SELECT %s FROM recipes %s ORDER BY %s %s LIMIT ? OFFSET ?", recipeColumns, whereClause, sortCol, order)
	args = append(args, limit, f.Offset)

	rows, err := s.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapStoreErr("listing recipes", err)
	}
	defer rows.Close()
	var out []Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, wrapStoreErr("scanning recipe row", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecipeUpdate carries optional field changes to a recipe's primary
// data; nutrition fields are never touched here — only
// UpdateRecipeCachedNutrition writes them, from the Cascade Engine.
// Force overrides the servings_produced guard below; it has no effect
// on name/is_favorite/notes, which are never guarded.
type RecipeUpdate struct {
	Name             *string
	ServingsProduced *float64
	IsFavorite       *bool
	Notes            *string
	Force            bool
}

// UpdateRecipe applies primary-data changes to a recipe. Changing
// servings_produced rescales the per-serving cache, so it is rejected
// once the recipe has been logged in a meal entry unless Force is set
// — logged history must reflect what was actually eaten at the time,
// not a retroactively rescaled recipe. name/is_favorite/notes carry no
// such guard.
func (s *Store) UpdateRecipe(ctx context.Context, id int64, u RecipeUpdate) (*Recipe, error) {
	existing, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.ServingsProduced != nil && !u.Force {
		timesLogged, err := s.RecipeTimesLogged(ctx, id)
		if err != nil {
			return nil, err
		}
		if timesLogged > 0 {
			return nil, &ModificationBlockedError{
				Entity:   "recipe",
				Reason:   "recipe has been logged in meal entries; pass force=true to override",
				Blockers: []string{fmt.Sprintf("%d meal entries", timesLogged)},
			}
		}
	}

	name := existing.Name
	if u.Name != nil {
		name = *u.Name
	}
	servings := existing.ServingsProduced
	if u.ServingsProduced != nil {
		servings = *u.ServingsProduced
	}
	if servings <= 0 {
		return nil, &ValidationError{Field: "servings_produced", Reason: "must be greater than 0"}
	}
	isFavorite := existing.IsFavorite
	if u.IsFavorite != nil {
		isFavorite = *u.IsFavorite
	}
	notes := existing.Notes
	if u.Notes != nil {
		notes = u.Notes
	}

	err = s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE recipes SET name = ?, servings_produced = ?, is_favorite = ?, notes = ?, updated_at = datetime('now') WHERE id = ?`,
			name, servings, boolToInt(isFavorite), notes, id,
		)
		return wrapStoreErr("updating recipe", err)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, id)
}

// UpdateRecipeCachedNutrition overwrites a recipe's cached nutrition
// vector. This is the Cascade Engine's write path, never called
// directly from the Operation Surface.
func (s *Store) UpdateRecipeCachedNutrition(ctx context.Context, tx *sql.Tx, id int64, n NutritionFields) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE recipes SET
			cached_calories = ?, cached_protein = ?, cached_carbs = ?, cached_fat = ?, cached_fiber = ?,
			cached_sodium = ?, cached_sugar = ?, cached_saturated_fat = ?, cached_cholesterol = ?,
			updated_at = datetime('now')
		WHERE id = ?
	`,
		n.Calories, n.Protein, n.Carbs, n.Fat, n.Fiber, n.Sodium, n.Sugar, n.SaturatedFat, n.Cholesterol, id,
	)
	return wrapStoreErr("updating recipe cached nutrition", err)
}

// DeleteRecipe removes a recipe, refusing when it has been logged or
// is used as a component of another recipe. recipe_ingredients cascade
// automatically; recipe_components has ON DELETE RESTRICT on
// component_recipe_id, so an unguarded delete would surface as a raw
// foreign-key failure — the guard here gives a structured error first.
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	if _, err := s.GetRecipe(ctx, id); err != nil {
		return err
	}

	timesLogged, err := s.RecipeTimesLogged(ctx, id)
	if err != nil {
		return err
	}
	if timesLogged > 0 {
		return &ModificationBlockedError{
			Entity:   "recipe",
			Reason:   "recipe has been logged in meal entries",
			Blockers: []string{fmt.Sprintf("%d meal entries", timesLogged)},
		}
	}

	parents, err := s.ParentRecipes(ctx, id)
	if err != nil {
		return err
	}
	if len(parents) > 0 {
		return &ModificationBlockedError{Entity: "recipe", Reason: "used as a component of other recipes", Blockers: parents}
	}

	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
		return wrapStoreErr("deleting recipe", err)
	})
}

// RecipeTimesLogged returns how many meal entries reference this recipe.
func (s *Store) RecipeTimesLogged(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM meal_entries WHERE recipe_id = ?", id).Scan(&count)
	return count, wrapStoreErr("counting recipe usage in meal entries", err)
}

// ParentRecipes returns the names of recipes that use this recipe as a
// direct component.
func (s *Store) ParentRecipes(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT r.name FROM recipes r
		JOIN recipe_components rc ON rc.parent_recipe_id = r.id
		WHERE rc.component_recipe_id = ?
		ORDER BY r.name
	`, id)
	if err != nil {
		return nil, wrapStoreErr("listing parent recipes", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapStoreErr("scanning parent recipe name", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ParentRecipeIDs returns the ids of recipes that use this recipe as a
// direct component, the edge the Cascade Engine walks in reverse.
func (s *Store) ParentRecipeIDs(ctx context.Context, id int64) ([]int64, error) {
	return parentRecipeIDs(ctx, s.conn, id)
}

// ParentRecipeIDsTx is ParentRecipeIDs run against an open
// transaction, for use by the Cascade Engine.
func (s *Store) ParentRecipeIDsTx(ctx context.Context, tx *sql.Tx, id int64) ([]int64, error) {
	return parentRecipeIDs(ctx, tx, id)
}

func parentRecipeIDs(ctx context.Context, db dbTx, id int64) ([]int64, error) {
	return queryIDs(ctx, db, "SELECT parent_recipe_id FROM recipe_components WHERE component_recipe_id = ?", id, "parent recipe id")
}

// RecipesUsingFoodItem returns the ids of recipes that directly use a
// food item as an ingredient, the Cascade Engine's starting frontier
// for a food-item edit.
func (s *Store) RecipesUsingFoodItem(ctx context.Context, foodItemID int64) ([]int64, error) {
	return recipesUsingFoodItem(ctx, s.conn, foodItemID)
}

// RecipesUsingFoodItemTx is RecipesUsingFoodItem run against an open
// transaction, for use by the Cascade Engine.
func (s *Store) RecipesUsingFoodItemTx(ctx context.Context, tx *sql.Tx, foodItemID int64) ([]int64, error) {
	return recipesUsingFoodItem(ctx, tx, foodItemID)
}

func recipesUsingFoodItem(ctx context.Context, db dbTx, foodItemID int64) ([]int64, error) {
	return queryIDs(ctx, db, "SELECT DISTINCT recipe_id FROM recipe_ingredients WHERE food_item_id = ?", foodItemID, "recipe id")
}

// DaysUsingRecipe returns the ids of days with a meal entry logging
// this recipe directly.
func (s *Store) DaysUsingRecipe(ctx context.Context, recipeID int64) ([]int64, error) {
	return daysUsingRecipe(ctx, s.conn, recipeID)
}

// DaysUsingRecipeTx is DaysUsingRecipe run against an open transaction,
// for use by the Cascade Engine.
func (s *Store) DaysUsingRecipeTx(ctx context.Context, tx *sql.Tx, recipeID int64) ([]int64, error) {
	return daysUsingRecipe(ctx, tx, recipeID)
}

func daysUsingRecipe(ctx context.Context, db dbTx, recipeID int64) ([]int64, error) {
	return queryIDs(ctx, db, "SELECT DISTINCT day_id FROM meal_entries WHERE recipe_id = ?", recipeID, "day id")
}

// DaysUsingFoodItem returns the ids of days with a meal entry logging
// this food item directly.
func (s *Store) DaysUsingFoodItem(ctx context.Context, foodItemID int64) ([]int64, error) {
	return daysUsingFoodItem(ctx, s.conn, foodItemID)
}

// DaysUsingFoodItemTx is DaysUsingFoodItem run against an open
// transaction, for use by the Cascade Engine.
func (s *Store) DaysUsingFoodItemTx(ctx context.Context, tx *sql.Tx, foodItemID int64) ([]int64, error) {
	return daysUsingFoodItem(ctx, tx, foodItemID)
}

func daysUsingFoodItem(ctx context.Context, db dbTx, foodItemID int64) ([]int64, error) {
	return queryIDs(ctx, db, "SELECT DISTINCT day_id FROM meal_entries WHERE food_item_id = ?", foodItemID, "day id")
}

// queryIDs runs a single-column int64 query and collects the results,
// the shared shape behind the graph edge lookups the Cascade Engine walks.
func queryIDs(ctx context.Context, db dbTx, query string, arg int64, label string) ([]int64, error) {
	rows, err := db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, wrapStoreErr("listing "+label+"s", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapStoreErr("scanning "+label, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UnusedRecipes returns recipes that are logged in no meal entry and
// used as no other recipe's component.
func (s *Store) UnusedRecipes(ctx context.Context) ([]Recipe, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+recipeColumns+` FROM recipes r
		WHERE NOT EXISTS (SELECT 1 FROM meal_entries me WHERE me.recipe_id = r.id)
		  AND NOT EXISTS (SELECT 1 FROM recipe_components rc WHERE rc.component_recipe_id = r.id)
		ORDER BY r.name
	`)
	if err != nil {
		return nil, wrapStoreErr("listing unused recipes", err)
	}
	defer rows.Close()
	var out []Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, wrapStoreErr("scanning recipe row", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
