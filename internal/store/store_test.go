package store

import "testing"

// openTestStore opens an in-memory store with the real migration
// ladder applied, per Ekats-Mycelica's internal/db test helpers.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateFoodItem(t *testing.T, s *Store, c FoodItemCreate) *FoodItem {
	t.Helper()
	f, err := s.CreateFoodItem(t.Context(), c)
	if err != nil {
		t.Fatalf("creating food item %q: %v", c.Name, err)
	}
	return f
}

func mustCreateRecipe(t *testing.T, s *Store, c RecipeCreate) *Recipe {
	t.Helper()
	r, err := s.CreateRecipe(t.Context(), c)
	if err != nil {
		t.Fatalf("creating recipe %q: %v", c.Name, err)
	}
	return r
}

func f64ptr(v float64) *float64 { return &v }
