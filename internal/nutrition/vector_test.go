package nutrition

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVector_Scale(t *testing.T) {
	v := Vector{Calories: 100, Protein: 10, Carbs: 20, Fat: 5}
	got := v.Scale(2.5)
	want := Vector{Calories: 250, Protein: 25, Carbs: 50, Fat: 12.5}
	if got != want {
		t.Errorf("Scale = %+v, want %+v", got, want)
	}
}

func TestVector_Add(t *testing.T) {
	a := Vector{Calories: 100, Sodium: 50}
	b := Vector{Calories: 50, Sugar: 5}
	got := a.Add(b)
	want := Vector{Calories: 150, Sodium: 50, Sugar: 5}
	if got != want {
		t.Errorf("Add = %+v, want %+v", got, want)
	}
}

func TestSum(t *testing.T) {
	vs := []Vector{
		{Calories: 100},
		{Calories: 200, Protein: 10},
		{Calories: 50},
	}
	got := Sum(vs)
	want := Vector{Calories: 350, Protein: 10}
	if got != want {
		t.Errorf("Sum = %+v, want %+v", got, want)
	}
}

func TestVector_IsNonNegative(t *testing.T) {
	if !(Vector{Calories: 0, Protein: 1}).IsNonNegative() {
		t.Error("expected zero and positive fields to be non-negative")
	}
	if (Vector{Calories: -1}).IsNonNegative() {
		t.Error("expected a negative field to fail")
	}
	if (Vector{Calories: math.Inf(1)}).IsNonNegative() {
		t.Error("expected +Inf to fail")
	}
	if (Vector{Calories: math.NaN()}).IsNonNegative() {
		t.Error("expected NaN to fail")
	}
}

func TestVector_WithinTolerance(t *testing.T) {
	a := Vector{Calories: 100.0004, Protein: 10}
	b := Vector{Calories: 100.0001, Protein: 10}
	if !a.WithinTolerance(b, 0.001) {
		t.Error("expected values within tolerance to match")
	}
	if a.WithinTolerance(b, 0.00001) {
		t.Error("expected values outside a tight tolerance to differ")
	}
}

func TestErrNegativeInput_IsError(t *testing.T) {
	var err error = &ErrNegativeInput{Detail: "servings_produced must be greater than 0"}
	var target *ErrNegativeInput
	if !errors.As(err, &target) {
		t.Fatalf("expected errors.As to match, got %T", err)
	}
	if target.Detail == "" {
		t.Error("expected a non-empty detail message")
	}
}
