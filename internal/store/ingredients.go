package store

import (
	"context"
	"database/sql"
)

// RecipeIngredientCreate carries the fields needed to add a food item
// to a recipe.
type RecipeIngredientCreate struct {
	RecipeID   int64
	FoodItemID int64
	Quantity   float64
	Unit       string
	Notes      *string
}

// AddRecipeIngredient adds a food item to a recipe, refusing a second
// row for the same (recipe, food item) pair — the unique index
// exists so callers should combine quantities instead of duplicating
// rows, matching the schema's UNIQUE(recipe_id, food_item_id).
func (s *Store) AddRecipeIngredient(ctx context.Context, c RecipeIngredientCreate) (*RecipeIngredient, error) {
	if c.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be greater than 0"}
	}
	if c.Unit == "" {
		return nil, &ValidationError{Field: "unit", Reason: "must not be empty"}
	}
	if _, err := s.GetRecipe(ctx, c.RecipeID); err != nil {
		return nil, err
	}
	if _, err := s.GetFoodItem(ctx, c.FoodItemID); err != nil {
		return nil, err
	}

	var id int64
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, food_item_id, quantity, unit, notes)
			VALUES (?, ?, ?, ?, ?)
		`, c.RecipeID, c.FoodItemID, c.Quantity, c.Unit, c.Notes)
		if err != nil {
			return wrapStoreErr("inserting recipe ingredient", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipeIngredient(ctx, id)
}

// GetRecipeIngredient returns a recipe ingredient by id.
func (s *Store) GetRecipeIngredient(ctx context.Context, id int64) (*RecipeIngredient, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, recipe_id, food_item_id, quantity, unit, notes, created_at, updated_at
		FROM recipe_ingredients WHERE id = ?
	`, id)
	var ri RecipeIngredient
	err := row.Scan(&ri.ID, &ri.RecipeID, &ri.FoodItemID, &ri.Quantity, &ri.Unit, &ri.Notes, &ri.CreatedAt, &ri.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "recipe_ingredient", ID: id}
	}
	if err != nil {
		return nil, wrapStoreErr("scanning recipe ingredient", err)
	}
	return &ri, nil
}

// RecipeIngredientUpdate carries optional field changes.
type RecipeIngredientUpdate struct {
	Quantity *float64
	Unit     *string
	Notes    *string
}

// UpdateRecipeIngredient changes an ingredient's quantity, unit, or
// notes. The caller is responsible for recalculating the owning
// recipe's cached nutrition via the Cascade Engine afterward.
func (s *Store) UpdateRecipeIngredient(ctx context.Context, id int64, u RecipeIngredientUpdate) (*RecipeIngredient, error) {
	existing, err := s.GetRecipeIngredient(ctx, id)
	if err != nil {
		return nil, err
	}

	quantity := existing.Quantity
	if u.Quantity != nil {
		quantity = *u.Quantity
	}
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be greater than 0"}
	}
	unit := existing.Unit
	if u.Unit != nil {
		unit = *u.Unit
	}
	notes := existing.Notes
	if u.Notes != nil {
		notes = u.Notes
	}

	err = s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE recipe_ingredients SET quantity = ?, unit = ?, notes = ?, updated_at = datetime('now') WHERE id = ?`,
			quantity, unit, notes, id,
		)
		return wrapStoreErr("updating recipe ingredient", err)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipeIngredient(ctx, id)
}

// RemoveRecipeIngredient deletes a recipe ingredient. The caller is
// responsible for cascading the recalculation of the owning recipe.
func (s *Store) RemoveRecipeIngredient(ctx context.Context, id int64) error {
	ri, err := s.GetRecipeIngredient(ctx, id)
	if err != nil {
		return err
	}
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM recipe_ingredients WHERE id = ?", id)
		if err != nil {
			return wrapStoreErr("deleting recipe ingredient", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrapStoreErr("checking recipe ingredient delete", err)
		}
		if n == 0 {
			return &NotFoundError{Entity: "recipe_ingredient", ID: ri.ID}
		}
		return nil
	})
}
