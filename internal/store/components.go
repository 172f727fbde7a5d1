package store

import (
	"context"
	"database/sql"
)

// RecipeComponentCreate carries the fields needed to add a sub-recipe
// component to a parent recipe.
type RecipeComponentCreate struct {
	ParentRecipeID    int64
	ComponentRecipeID int64
	Servings          float64
}

// AddRecipeComponent links componentRecipeID into parentRecipeID's
// component list, refusing self-reference and any edge that would
// close a cycle in the component graph. Grounded on
// original_source/src/models/recipe_component.rs's would_create_cycle:
// a component recipe cannot (directly or transitively) already use
// the parent as one of its own components.
func (s *Store) AddRecipeComponent(ctx context.Context, c RecipeComponentCreate) (*RecipeComponent, error) {
	if c.ParentRecipeID == c.ComponentRecipeID {
		return nil, &ValidationError{Field: "component_recipe_id", Reason: "a recipe cannot be its own component"}
	}
	if c.Servings <= 0 {
		c.Servings = 1.0
	}
	if _, err := s.GetRecipe(ctx, c.ParentRecipeID); err != nil {
		return nil, err
	}
	if _, err := s.GetRecipe(ctx, c.ComponentRecipeID); err != nil {
		return nil, err
	}

	cycle, path, err := s.wouldCreateCycle(ctx, c.ParentRecipeID, c.ComponentRecipeID)
	if err != nil {
		return nil, err
	}
	if cycle {
		return nil, &CircularReferenceError{Path: path}
	}

	var id int64
	err = s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_components (parent_recipe_id, component_recipe_id, servings)
			VALUES (?, ?, ?)
		`, c.ParentRecipeID, c.ComponentRecipeID, c.Servings)
		if err != nil {
			return wrapStoreErr("inserting recipe component", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipeComponent(ctx, id)
}

// wouldCreateCycle reports whether adding componentID as a component
// of parentID would create a cycle: it walks the component graph
// forward from componentID (what componentID already contains,
// directly or transitively) and checks whether parentID is reachable.
// If parentID is reachable, closing the edge would make parentID an
// ancestor of itself.
func (s *Store) wouldCreateCycle(ctx context.Context, parentID, componentID int64) (bool, []int64, error) {
	visited := make(map[int64]bool)
	stack := []int64{componentID}
	path := []int64{parentID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == parentID {
			return true, append(path, parentID), nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		path = append(path, current)

		children, err := s.RecipeComponents(ctx, current)
		if err != nil {
			return false, nil, err
		}
		for _, child := range children {
			stack = append(stack, child.ComponentRecipeID)
		}
	}
	return false, nil, nil
}

// GetRecipeComponent returns a recipe component by id.
func (s *Store) GetRecipeComponent(ctx context.Context, id int64) (*RecipeComponent, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, parent_recipe_id, component_recipe_id, servings, created_at, updated_at
		FROM recipe_components WHERE id = ?
	`, id)
	var rc RecipeComponent
	err := row.Scan(&rc.ID, &rc.ParentRecipeID, &rc.ComponentRecipeID, &rc.Servings, &rc.CreatedAt, &rc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "recipe_component", ID: id}
	}
	if err != nil {
		return nil, wrapStoreErr("scanning recipe component", err)
	}
	return &rc, nil
}

// UpdateRecipeComponentServings changes how many servings of the
// component recipe the parent uses.
func (s *Store) UpdateRecipeComponentServings(ctx context.Context, id int64, servings float64) (*RecipeComponent, error) {
	if servings <= 0 {
		return nil, &ValidationError{Field: "servings", Reason: "must be greater than 0"}
	}
	if _, err := s.GetRecipeComponent(ctx, id); err != nil {
		return nil, err
	}
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE recipe_components SET servings = ?, updated_at = datetime('now') WHERE id = ?`,
			servings, id,
		)
		return wrapStoreErr("updating recipe component", err)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipeComponent(ctx, id)
}

// RemoveRecipeComponent deletes a recipe component edge. The caller is
// responsible for cascading the recalculation of the parent recipe.
func (s *Store) RemoveRecipeComponent(ctx context.Context, id int64) error {
	rc, err := s.GetRecipeComponent(ctx, id)
	if err != nil {
		return err
	}
	return s.withWriteTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM recipe_components WHERE id = ?", id)
		if err != nil {
			return wrapStoreErr("deleting recipe component", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrapStoreErr("checking recipe component delete", err)
		}
		if n == 0 {
			return &NotFoundError{Entity: "recipe_component", ID: rc.ID}
		}
		return nil
	})
}

// AllComponentRecipeIDs returns every recipe id reachable transitively
// through recipeID's component edges, i.e. the recipe's full component
// closure. Grounded on
// original_source/src/models/recipe_component.rs's get_all_component_ids.
func (s *Store) AllComponentRecipeIDs(ctx context.Context, recipeID int64) ([]int64, error) {
	visited := make(map[int64]bool)
	var all []int64
	stack := []int64{recipeID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		children, err := s.RecipeComponents(ctx, current)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			all = append(all, child.ComponentRecipeID)
			stack = append(stack, child.ComponentRecipeID)
		}
	}
	return all, nil
}
