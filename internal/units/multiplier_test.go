package units

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMultiplier_ServingAlias(t *testing.T) {
	ctx := FoodContext{BaseUnitType: BaseMass, ServingSize: 100, ServingUnit: "g"}
	got, err := Multiplier(2.5, "servings", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got, 2.5) {
		t.Errorf("Multiplier = %v, want 2.5", got)
	}
}

func TestMultiplier_SameServingUnit(t *testing.T) {
	// A recipe ingredient quantified in the food's own serving unit
	// (e.g. "3 tbsp" against a food whose serving is "1 tbsp") divides
	// straight through, without needing grams_per_serving at all.
	ctx := FoodContext{BaseUnitType: BaseVolume, ServingSize: 1, ServingUnit: "tbsp"}
	got, err := Multiplier(3, "tbsp", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got, 3) {
		t.Errorf("Multiplier = %v, want 3", got)
	}
}

func TestMultiplier_MassAcrossUnits(t *testing.T) {
	gramsPerServing := 50.0
	ctx := FoodContext{
		BaseUnitType:    BaseMass,
		ServingSize:     50,
		ServingUnit:     "g",
		GramsPerServing: &gramsPerServing,
	}
	// 0.1 kg of a food whose serving is 50g -> 100g -> 2 servings.
	got, err := Multiplier(0.1, "kg", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got, 2) {
		t.Errorf("Multiplier = %v, want 2", got)
	}
}

func TestMultiplier_EightTbspBug(t *testing.T) {
	// Regression: a food item whose serving_unit is a compound
	// gram-annotated volume token ("tbsp (14.5g)") must resolve a
	// quantity given in a plain mass unit against grams_per_serving,
	// not against the volume factor of "tbsp": 116 g at 14.5 g per
	// serving is exactly 8 servings.
	gramsPerServing := 14.5
	ctx := FoodContext{
		BaseUnitType:    BaseMass,
		ServingSize:     1,
		ServingUnit:     "tbsp (14.5g)",
		GramsPerServing: &gramsPerServing,
	}
	got, err := Multiplier(116, "g", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got, 8) {
		t.Errorf("Multiplier = %v, want 8 (116g / 14.5g per serving)", got)
	}
}

func TestMultiplier_VolumeAcrossUnits(t *testing.T) {
	mlPerServing := 240.0
	ctx := FoodContext{
		BaseUnitType: BaseVolume,
		ServingSize:  1,
		ServingUnit:  "cup",
		MlPerServing: &mlPerServing,
	}
	got, err := Multiplier(2, "cup", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got, 2) {
		t.Errorf("Multiplier = %v, want 2", got)
	}

	got, err = Multiplier(480, "ml", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got, 2) {
		t.Errorf("Multiplier = %v, want 2", got)
	}
}

func TestMultiplier_CustomConversion(t *testing.T) {
	gramsPerServing := 45.0
	scoopGrams := 30.0
	ctx := FoodContext{
		BaseUnitType:    BaseMass,
		ServingSize:     45,
		ServingUnit:     "g",
		GramsPerServing: &gramsPerServing,
		CustomConversion: func(unitName string) (*float64, *float64, bool) {
			if unitName == "scoop" {
				return &scoopGrams, nil, true
			}
			return nil, nil, false
		},
	}
	got, err := Multiplier(1.5, "scoop", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (1.5 * 30.0) / 45.0
	if !approxEqual(got, want) {
		t.Errorf("Multiplier = %v, want %v", got, want)
	}
}

func TestMultiplier_CountUnit(t *testing.T) {
	gramsPerServing := 55.0
	ctx := FoodContext{
		BaseUnitType:    BaseCount,
		ServingSize:     1,
		ServingUnit:     "each",
		GramsPerServing: &gramsPerServing,
	}
	got, err := Multiplier(3, "each", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got, 3) {
		t.Errorf("Multiplier = %v, want 3", got)
	}
}

func TestMultiplier_Incompatible(t *testing.T) {
	ctx := FoodContext{BaseUnitType: BaseMass, ServingSize: 100, ServingUnit: "g"}
	_, err := Multiplier(1, "cup", ctx)
	if err == nil {
		t.Fatal("expected an error for a volume unit against a mass-only food")
	}
	var incompatible *Incompatible
	if !errors.As(err, &incompatible) {
		t.Fatalf("expected *Incompatible, got %T: %v", err, err)
	}
	if incompatible.GivenUnit != "cup" || incompatible.FoodBase != BaseMass {
		t.Errorf("Incompatible = %+v, want GivenUnit=cup FoodBase=mass", incompatible)
	}
}

func TestConvertSameCategory_Mass(t *testing.T) {
	got, err := ConvertSameCategory(1, "kg", "g")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got, 1000) {
		t.Errorf("ConvertSameCategory = %v, want 1000", got)
	}
}

func TestConvertSameCategory_Volume(t *testing.T) {
	got, err := ConvertSameCategory(2, "cup", "ml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got, 473.176) {
		t.Errorf("ConvertSameCategory = %v, want 473.176", got)
	}
}

func TestConvertSameCategory_CrossCategoryRejected(t *testing.T) {
	_, err := ConvertSameCategory(1, "kg", "ml")
	if err == nil {
		t.Fatal("expected an error converting mass to volume")
	}
}
