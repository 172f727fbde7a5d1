package nutrition

import "github.com/nutrilog/core/internal/units"

// IngredientLine is one food-item ingredient contribution to a
// recipe's nutrition total: how much of a food (quantity/unit) and
// that food's own per-serving vector and unit context.
type IngredientLine struct {
	Quantity   float64
	Unit       string
	PerServing Vector
	FoodCtx    units.FoodContext
}

// ComponentLine is one sub-recipe contribution to a parent recipe's
// nutrition total: how many servings of the child recipe, and the
// child's current per-serving cached vector.
type ComponentLine struct {
	Servings   float64
	PerServing Vector
}

// ForFoodConsumption computes the nutrition contributed by consuming
// quantity of unit of a food item with the given per-serving vector
// and unit context, using the Unit Engine's multiplier algorithm. A
// negative or non-finite source vector indicates corrupted input and
// is rejected rather than silently propagated into the result.
func ForFoodConsumption(perServing Vector, quantity float64, unit string, ctx units.FoodContext) (Vector, error) {
	if !perServing.IsNonNegative() {
		return Vector{}, &ErrNegativeInput{Detail: "food item per-serving vector has a negative or non-finite field"}
	}
	multiplier, err := units.Multiplier(quantity, unit, ctx)
	if err != nil {
		return Vector{}, err
	}
	if multiplier < 0 || isNaNOrInf(multiplier) {
		return Vector{}, &ErrNegativeInput{Detail: "unit multiplier is negative or non-finite"}
	}
	return perServing.Scale(multiplier), nil
}

// ForRecipeConsumption computes a recipe's total nutrition (not yet
// divided by servings produced) from its direct ingredient and
// component lines.
func ForRecipeConsumption(ingredients []IngredientLine, components []ComponentLine) (Vector, error) {
	total := Zero()
	for _, ing := range ingredients {
		contribution, err := ForFoodConsumption(ing.PerServing, ing.Quantity, ing.Unit, ing.FoodCtx)
		if err != nil {
			return Vector{}, err
		}
		total = total.Add(contribution)
	}
	for _, comp := range components {
		if !comp.PerServing.IsNonNegative() {
			return Vector{}, &ErrNegativeInput{Detail: "component recipe per-serving vector has a negative or non-finite field"}
		}
		total = total.Add(comp.PerServing.Scale(comp.Servings))
	}
	return total, nil
}

// PerServingForRecipe divides a recipe's total nutrition by the number
// of servings it produces, yielding the cached per-serving vector.
func PerServingForRecipe(total Vector, servingsProduced float64) (Vector, error) {
	if servingsProduced <= 0 {
		return Vector{}, &ErrNegativeInput{Detail: "servings_produced must be greater than 0"}
	}
	return total.Scale(1.0 / servingsProduced), nil
}

// ForMealEntry computes a meal entry's cached vector from its
// source's current per-serving vector, servings consumed, and percent
// eaten.
func ForMealEntry(sourcePerServing Vector, servings, percentEaten float64) Vector {
	return sourcePerServing.Scale(servings * (percentEaten / 100.0))
}
