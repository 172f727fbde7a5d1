package store

import (
	"errors"
	"testing"
)

func TestAddRecipeComponent_RejectsSelfReference(t *testing.T) {
	s := openTestStore(t)
	a := mustCreateRecipe(t, s, RecipeCreate{Name: "A", ServingsProduced: 1})
	_, err := s.AddRecipeComponent(t.Context(), RecipeComponentCreate{
		ParentRecipeID: a.ID, ComponentRecipeID: a.ID, Servings: 1,
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}

func TestAddRecipeComponent_CycleRefusal(t *testing.T) {
	// Scenario 4: A is a component of B. Attempting to add B as a
	// component of A must fail with CircularReference.
	s := openTestStore(t)
	a := mustCreateRecipe(t, s, RecipeCreate{Name: "A", ServingsProduced: 1})
	b := mustCreateRecipe(t, s, RecipeCreate{Name: "B", ServingsProduced: 1})

	if _, err := s.AddRecipeComponent(t.Context(), RecipeComponentCreate{
		ParentRecipeID: b.ID, ComponentRecipeID: a.ID, Servings: 1,
	}); err != nil {
		t.Fatalf("adding A as a component of B: %v", err)
	}

	_, err := s.AddRecipeComponent(t.Context(), RecipeComponentCreate{
		ParentRecipeID: a.ID, ComponentRecipeID: b.ID, Servings: 1,
	})
	var cre *CircularReferenceError
	if !errors.As(err, &cre) {
		t.Fatalf("expected *CircularReferenceError, got %T: %v", err, err)
	}
}

func TestAddRecipeComponent_TransitiveCycleRefusal(t *testing.T) {
	// A -> B -> C (C is a component of B, B is a component of A).
	// Adding A as a component of C must also be refused, since C
	// already transitively contains A.
	s := openTestStore(t)
	a := mustCreateRecipe(t, s, RecipeCreate{Name: "A", ServingsProduced: 1})
	b := mustCreateRecipe(t, s, RecipeCreate{Name: "B", ServingsProduced: 1})
	c := mustCreateRecipe(t, s, RecipeCreate{Name: "C", ServingsProduced: 1})

	if _, err := s.AddRecipeComponent(t.Context(), RecipeComponentCreate{
		ParentRecipeID: a.ID, ComponentRecipeID: b.ID, Servings: 1,
	}); err != nil {
		t.Fatalf("adding B as a component of A: %v", err)
	}
	if _, err := s.AddRecipeComponent(t.Context(), RecipeComponentCreate{
		ParentRecipeID: b.ID, ComponentRecipeID: c.ID, Servings: 1,
	}); err != nil {
		t.Fatalf("adding C as a component of B: %v", err)
	}

	_, err := s.AddRecipeComponent(t.Context(), RecipeComponentCreate{
		ParentRecipeID: c.ID, ComponentRecipeID: a.ID, Servings: 1,
	})
	var cre *CircularReferenceError
	if !errors.As(err, &cre) {
		t.Fatalf("expected *CircularReferenceError, got %T: %v", err, err)
	}
}

func TestAllComponentRecipeIDs(t *testing.T) {
	s := openTestStore(t)
	a := mustCreateRecipe(t, s, RecipeCreate{Name: "A", ServingsProduced: 1})
	b := mustCreateRecipe(t, s, RecipeCreate{Name: "B", ServingsProduced: 1})
	c := mustCreateRecipe(t, s, RecipeCreate{Name: "C", ServingsProduced: 1})

	if _, err := s.AddRecipeComponent(t.Context(), RecipeComponentCreate{
		ParentRecipeID: a.ID, ComponentRecipeID: b.ID, Servings: 1,
	}); err != nil {
		t.Fatalf("adding B as a component of A: %v", err)
	}
	if _, err := s.AddRecipeComponent(t.Context(), RecipeComponentCreate{
		ParentRecipeID: b.ID, ComponentRecipeID: c.ID, Servings: 1,
	}); err != nil {
		t.Fatalf("adding C as a component of B: %v", err)
	}

	ids, err := s.AllComponentRecipeIDs(t.Context(), a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[int64]bool{b.ID: true, c.ID: true}
	if len(ids) != len(want) {
		t.Fatalf("AllComponentRecipeIDs = %v, want ids for B and C", ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected id %d in closure", id)
		}
	}
}
