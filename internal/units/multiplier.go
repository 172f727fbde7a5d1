package units

import "fmt"

// Incompatible is returned when a quantity's unit cannot be reconciled
// with a food item's base category — no known conversion, no custom
// conversion row, and no serving-unit match.
type Incompatible struct {
	GivenUnit string
	FoodBase  BaseUnitType
}

func (e *Incompatible) Error() string {
	return fmt.Sprintf("unit %q is incompatible with food base type %q", e.GivenUnit, e.FoodBase)
}

// FoodContext carries the food-item-specific facts the Unit Engine
// needs to resolve a quantity/unit pair into a scaling multiplier.
// Unit resolution is always per-food-item, never global, because
// custom units and count semantics are defined relative to one food's
// serving (spec: "Unit resolution is per-food-item, not global").
type FoodContext struct {
	BaseUnitType     BaseUnitType
	ServingSize      float64
	ServingUnit      string
	GramsPerServing  *float64
	MlPerServing     *float64

	// CustomConversion looks up a FoodItemConversion row for this food
	// item by unit name (case-insensitive). Returns (grams, ml, ok) —
	// exactly one of grams/ml is meaningful when ok is true, mirroring
	// the FoodItemConversion invariant that exactly one is set.
	CustomConversion func(unitName string) (gramsEquivalent *float64, mlEquivalent *float64, ok bool)
}

// Multiplier resolves (quantity, unit) against a food's context into
// the scaling factor to apply to that food's per-serving nutrition
// vector. The cases are tried in the order they appear below; the
// custom-conversion case (4) is checked ahead of the category cases (3, 5).
func Multiplier(quantity float64, unit string, ctx FoodContext) (float64, error) {
	trimmed := normalize(unit)

	// Case 1: the "serving" alias — multiplier is the quantity itself.
	if trimmed == "serving" || trimmed == "servings" {
		return quantity, nil
	}

	parsed := Parse(unit)

	// Case 2: base unit token matches the food's own serving unit
	// exactly (e.g. ingredient "tbsp" against a food whose serving_unit
	// parses to base "tbsp"). The user is stating quantity in the same
	// unit the serving is labelled in.
	foodParsed := Parse(ctx.ServingUnit)
	if parsed.BaseUnit == foodParsed.BaseUnit && ctx.ServingSize > 0 {
		return quantity / ctx.ServingSize, nil
	}

	// Case 4: a food-specific custom conversion. Checked ahead of the
	// generic category tables because a custom conversion is a fact
	// about this one food item and overrides what the unit token would
	// otherwise mean generically — the compound-serving case ("2 tbsp
	// (20g)" recording 1 tbsp = 10g for this food) registers a custom
	// conversion under a token, tbsp, that also has a generic volume
	// factor, and the food-specific fact must win.
	if ctx.CustomConversion != nil {
		if grams, ml, ok := ctx.CustomConversion(parsed.BaseUnit); ok {
			if grams != nil && ctx.GramsPerServing != nil {
				return (quantity * *grams) / *ctx.GramsPerServing, nil
			}
			if ml != nil && ctx.MlPerServing != nil {
				return (quantity * *ml) / *ctx.MlPerServing, nil
			}
		}
	}

	switch parsed.Category {
	case CategoryMass:
		// Case 3: both sides are mass — convert to grams and divide by
		// the food's canonical per-serving gram amount.
		if ctx.GramsPerServing != nil {
			if grams, ok := ToGrams(quantity, unit); ok {
				return grams / *ctx.GramsPerServing, nil
			}
		}
	case CategoryVolume:
		// Case 3 (volume variant): both sides are volume.
		if ctx.MlPerServing != nil {
			if ml, ok := ToMl(quantity, unit); ok {
				return ml / *ctx.MlPerServing, nil
			}
		}
		if foodParsed.Category == CategoryVolume {
			if ml, ok := ToMl(quantity, unit); ok {
				if factor, ok := MlPerUnit(foodParsed.BaseUnit); ok {
					foodMl := ctx.ServingSize * factor
					if foodMl > 0 {
						return ml / foodMl, nil
					}
				}
			}
		}
	case CategoryCount:
		// Case 5: count units resolve via grams_per_serving of a
		// single "each" — when the food's serving already equals one
		// count unit this reduces to the quantity itself.
		if ctx.GramsPerServing != nil && ctx.BaseUnitType == BaseCount {
			return quantity, nil
		}
	}

	return 0, &Incompatible{GivenUnit: unit, FoodBase: ctx.BaseUnitType}
}

// ConvertSameCategory converts a value between two unit strings of the
// same category (mass<->mass or volume<->volume only). It is the
// implementation behind the standalone convert_unit operation, which
// spec.md restricts to in-category conversion since it has no
// food-item context to resolve custom or count units.
func ConvertSameCategory(value float64, from, to string) (float64, error) {
	fromCat := Categorize(from)
	toCat := Categorize(to)

	if fromCat == CategoryMass && toCat == CategoryMass {
		fromFactor, _ := GramsPerUnit(from)
		toFactor, _ := GramsPerUnit(to)
		return value * fromFactor / toFactor, nil
	}
	if fromCat == CategoryVolume && toCat == CategoryVolume {
		fromFactor, _ := MlPerUnit(from)
		toFactor, _ := MlPerUnit(to)
		return value * fromFactor / toFactor, nil
	}
	return 0, fmt.Errorf("units: cannot convert %q to %q across categories (%s -> %s)", from, to, fromCat, toCat)
}
