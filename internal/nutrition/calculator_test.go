package nutrition

import (
	"errors"
	"testing"

	"github.com/nutrilog/core/internal/units"
)

func TestForFoodConsumption_RoundTrip(t *testing.T) {
	// Round-trip law: consuming exactly one gram-serving of a
	// mass-based food yields its per-serving vector unchanged, and
	// twice the grams yields twice the vector.
	perServing := Vector{Calories: 150, Protein: 5}
	grams := 40.0
	ctx := units.FoodContext{
		BaseUnitType:    units.BaseMass,
		ServingSize:     40,
		ServingUnit:     "g",
		GramsPerServing: &grams,
	}

	got, err := ForFoodConsumption(perServing, 40, "g", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != perServing {
		t.Errorf("consuming exactly one serving in grams = %+v, want %+v", got, perServing)
	}

	got, err = ForFoodConsumption(perServing, 80, "g", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := perServing.Scale(2)
	if got != want {
		t.Errorf("consuming double = %+v, want %+v", got, want)
	}
}

func TestForFoodConsumption_UnitEquivalence(t *testing.T) {
	// Unit equivalence law: consuming (F, 1, "cup") equals consuming
	// (F, 236.588, "ml") within tolerance.
	perServing := Vector{Calories: 150}
	ml := 240.0
	ctx := units.FoodContext{
		BaseUnitType: units.BaseVolume,
		ServingSize:  240,
		ServingUnit:  "ml",
		MlPerServing: &ml,
	}

	cupResult, err := ForFoodConsumption(perServing, 1, "cup", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mlResult, err := ForFoodConsumption(perServing, 236.588, "ml", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cupResult.WithinTolerance(mlResult, 1e-6) {
		t.Errorf("cup result %+v not within tolerance of ml result %+v", cupResult, mlResult)
	}
}

func TestForRecipeConsumption_OatmealScenario(t *testing.T) {
	// Oatmeal recipe: 40g Rolled Oats (150 cal/40g serving) plus 120ml
	// Whole Milk (150 cal/240ml serving) totals 150 + 75 = 225 calories.
	oatsGrams := 40.0
	oatsCtx := units.FoodContext{
		BaseUnitType:    units.BaseMass,
		ServingSize:     40,
		ServingUnit:     "g",
		GramsPerServing: &oatsGrams,
	}
	milkMl := 240.0
	milkCtx := units.FoodContext{
		BaseUnitType: units.BaseVolume,
		ServingSize:  240,
		ServingUnit:  "ml",
		MlPerServing: &milkMl,
	}

	ingredients := []IngredientLine{
		{Quantity: 40, Unit: "g", PerServing: Vector{Calories: 150}, FoodCtx: oatsCtx},
		{Quantity: 120, Unit: "ml", PerServing: Vector{Calories: 150}, FoodCtx: milkCtx},
	}

	total, err := ForRecipeConsumption(ingredients, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(total.Calories, 225.0) {
		t.Errorf("Oatmeal total calories = %v, want 225.0", total.Calories)
	}

	perServing, err := PerServingForRecipe(total, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(perServing.Calories, 225.0) {
		t.Errorf("Oatmeal per-serving calories = %v, want 225.0", perServing.Calories)
	}
}

func TestForFoodConsumption_CompoundUnitBugRegression(t *testing.T) {
	// Peanut Butter: serving_unit "2 tbsp (20g)", 190 cal/serving.
	// The compound serving records grams_per_serving=20 and a custom
	// tbsp->grams conversion of 10g/tbsp (2 tbsp = 20g means 1
	// tbsp = 10g, distinct from the generic volume factor for tbsp).
	// Consuming 8 tbsp = 8*10g = 80g = 4 servings = 760 calories, not
	// the 1520 an earlier version of this engine produced by treating
	// each tbsp as one whole serving.
	pbGrams := 20.0
	tbspGrams := 10.0
	ctx := units.FoodContext{
		BaseUnitType:    units.BaseMass,
		ServingSize:     2,
		ServingUnit:     "2 tbsp (20g)",
		GramsPerServing: &pbGrams,
		CustomConversion: func(unitName string) (*float64, *float64, bool) {
			if unitName == "tbsp" {
				return &tbspGrams, nil, true
			}
			return nil, nil, false
		},
	}

	perServing := Vector{Calories: 190}
	got, err := ForFoodConsumption(perServing, 8, "tbsp", ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(got.Calories, 760) {
		t.Errorf("compound-unit consumption = %v calories, want 760", got.Calories)
	}
}

func TestForRecipeConsumption_ComponentCascade(t *testing.T) {
	// Sauce: Olive Oil (30 ml) -> 267 cal/serving (30ml @ 890cal/100ml).
	oilMl := 100.0
	oilCtx := units.FoodContext{
		BaseUnitType: units.BaseVolume,
		ServingSize:  100,
		ServingUnit:  "ml",
		MlPerServing: &oilMl,
	}
	sauceIngredients := []IngredientLine{
		{Quantity: 30, Unit: "ml", PerServing: Vector{Calories: 890}, FoodCtx: oilCtx},
	}
	sauceTotal, err := ForRecipeConsumption(sauceIngredients, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saucePerServing, err := PerServingForRecipe(sauceTotal, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(saucePerServing.Calories, 267) {
		t.Errorf("Sauce per-serving calories = %v, want 267", saucePerServing.Calories)
	}

	// Salad: Sauce (1 serving) + Lettuce (100g @ 15 cal/100g serving).
	lettuceGrams := 100.0
	lettuceCtx := units.FoodContext{
		BaseUnitType:    units.BaseMass,
		ServingSize:     100,
		ServingUnit:     "g",
		GramsPerServing: &lettuceGrams,
	}
	saladIngredients := []IngredientLine{
		{Quantity: 100, Unit: "g", PerServing: Vector{Calories: 15}, FoodCtx: lettuceCtx},
	}
	saladComponents := []ComponentLine{
		{Servings: 1, PerServing: saucePerServing},
	}
	saladTotal, err := ForRecipeConsumption(saladIngredients, saladComponents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(saladTotal.Calories, 282) {
		t.Errorf("Salad total calories = %v, want 282 (267 + 15)", saladTotal.Calories)
	}

	// Updating Olive Oil from 890 to 900 cal/100ml recomputes Sauce to
	// 270 cal/serving and Salad reflects the change transitively.
	sauceIngredients[0].PerServing = Vector{Calories: 900}
	sauceTotal, err = ForRecipeConsumption(sauceIngredients, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saucePerServing, err = PerServingForRecipe(sauceTotal, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(saucePerServing.Calories, 270) {
		t.Errorf("Sauce per-serving calories after update = %v, want 270", saucePerServing.Calories)
	}

	saladComponents[0].PerServing = saucePerServing
	saladTotal, err = ForRecipeConsumption(saladIngredients, saladComponents)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(saladTotal.Calories, 285) {
		t.Errorf("Salad total calories after cascade = %v, want 285 (270 + 15)", saladTotal.Calories)
	}
}

func TestForFoodConsumption_RejectsNegativeSourceVector(t *testing.T) {
	// A corrupted per-serving vector (negative calories) must be
	// rejected by the calculator itself, not merely at the store's
	// write boundary — a defense-in-depth check against any caller
	// that bypasses store.CreateFoodItem/UpdateFoodItem validation.
	grams := 40.0
	ctx := units.FoodContext{
		BaseUnitType:    units.BaseMass,
		ServingSize:     40,
		ServingUnit:     "g",
		GramsPerServing: &grams,
	}
	_, err := ForFoodConsumption(Vector{Calories: -1}, 40, "g", ctx)
	var neg *ErrNegativeInput
	if !errors.As(err, &neg) {
		t.Fatalf("expected *ErrNegativeInput for a negative source vector, got %T: %v", err, err)
	}
}

func TestForRecipeConsumption_RejectsNegativeComponentVector(t *testing.T) {
	components := []ComponentLine{
		{Servings: 1, PerServing: Vector{Calories: -50}},
	}
	_, err := ForRecipeConsumption(nil, components)
	var neg *ErrNegativeInput
	if !errors.As(err, &neg) {
		t.Fatalf("expected *ErrNegativeInput for a negative component vector, got %T: %v", err, err)
	}
}

func TestPerServingForRecipe_RejectsZeroServings(t *testing.T) {
	_, err := PerServingForRecipe(Vector{Calories: 100}, 0)
	if err == nil {
		t.Fatal("expected an error for servings_produced=0")
	}
}

func TestForMealEntry_PercentEaten(t *testing.T) {
	sourcePerServing := Vector{Calories: 200}

	// percent_eaten=0 is allowed and yields a zero vector.
	got := ForMealEntry(sourcePerServing, 1, 0)
	if got != (Vector{}) {
		t.Errorf("ForMealEntry with percent_eaten=0 = %+v, want zero vector", got)
	}

	// Half a serving at 50% eaten: 200 * 0.5 * 0.5 = 50.
	got = ForMealEntry(sourcePerServing, 0.5, 50)
	if !approxEqual(got.Calories, 50) {
		t.Errorf("ForMealEntry(0.5 servings, 50%%) = %v calories, want 50", got.Calories)
	}

	// Full serving at 100%.
	got = ForMealEntry(sourcePerServing, 1, 100)
	if !approxEqual(got.Calories, 200) {
		t.Errorf("ForMealEntry(1 serving, 100%%) = %v calories, want 200", got.Calories)
	}
}
