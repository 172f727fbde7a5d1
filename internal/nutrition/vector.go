// Package nutrition implements the nine-field nutrition vector and the
// scaling arithmetic used to turn a food item or recipe serving into the
// nutrition contributed by a specific consumption event.
package nutrition

import "fmt"

// Vector holds nutritional values for one unit of account (a serving,
// a recipe's per-serving cache, or a logged meal entry's contribution).
// All fields are non-negative and accumulated in double precision;
// callers round for presentation, never for storage.
type Vector struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbs         float64 `json:"carbs"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
	Sodium        float64 `json:"sodium"`
	Sugar         float64 `json:"sugar"`
	SaturatedFat  float64 `json:"saturated_fat"`
	Cholesterol   float64 `json:"cholesterol"`
}

// Zero returns the additive identity vector.
func Zero() Vector { return Vector{} }

// Scale multiplies every field by multiplier.
func (v Vector) Scale(multiplier float64) Vector {
	return Vector{
		Calories:     v.Calories * multiplier,
		Protein:      v.Protein * multiplier,
		Carbs:        v.Carbs * multiplier,
		Fat:          v.Fat * multiplier,
		Fiber:        v.Fiber * multiplier,
		Sodium:       v.Sodium * multiplier,
		Sugar:        v.Sugar * multiplier,
		SaturatedFat: v.SaturatedFat * multiplier,
		Cholesterol:  v.Cholesterol * multiplier,
	}
}

// Add returns the field-wise sum of v and other.
func (v Vector) Add(other Vector) Vector {
	return Vector{
		Calories:     v.Calories + other.Calories,
		Protein:      v.Protein + other.Protein,
		Carbs:        v.Carbs + other.Carbs,
		Fat:          v.Fat + other.Fat,
		Fiber:        v.Fiber + other.Fiber,
		Sodium:       v.Sodium + other.Sodium,
		Sugar:        v.Sugar + other.Sugar,
		SaturatedFat: v.SaturatedFat + other.SaturatedFat,
		Cholesterol:  v.Cholesterol + other.Cholesterol,
	}
}

// Sum folds a slice of vectors with Add, starting from Zero.
func Sum(vs []Vector) Vector {
	total := Zero()
	for _, v := range vs {
		total = total.Add(v)
	}
	return total
}

// IsNonNegative reports whether every field is >= 0 and finite.
func (v Vector) IsNonNegative() bool {
	fields := [...]float64{
		v.Calories, v.Protein, v.Carbs, v.Fat, v.Fiber,
		v.Sodium, v.Sugar, v.SaturatedFat, v.Cholesterol,
	}
	for _, f := range fields {
		if f < 0 || isNaNOrInf(f) {
			return false
		}
	}
	return true
}

func isNaNOrInf(f float64) bool {
	return f != f || f > maxFinite || f < -maxFinite
}

const maxFinite = 1.7976931348623157e+308

// WithinTolerance reports whether v and other agree within abs on every field.
func (v Vector) WithinTolerance(other Vector, abs float64) bool {
	diff := func(a, b float64) bool {
		d := a - b
		if d < 0 {
			d = -d
		}
		return d <= abs
	}
	return diff(v.Calories, other.Calories) &&
		diff(v.Protein, other.Protein) &&
		diff(v.Carbs, other.Carbs) &&
		diff(v.Fat, other.Fat) &&
		diff(v.Fiber, other.Fiber) &&
		diff(v.Sodium, other.Sodium) &&
		diff(v.Sugar, other.Sugar) &&
		diff(v.SaturatedFat, other.SaturatedFat) &&
		diff(v.Cholesterol, other.Cholesterol)
}

// ErrNegativeInput is returned by calculator functions when a source
// nutrition vector or a computed multiplier would produce a negative field.
type ErrNegativeInput struct {
	Detail string
}

func (e *ErrNegativeInput) Error() string {
	return fmt.Sprintf("nutrition: negative or non-finite value rejected: %s", e.Detail)
}
