package ops

import (
	"context"

	"github.com/nutrilog/core/internal/units"
)

// ConvertUnitResult is the convert_unit verb's result.
type ConvertUnitResult struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ConvertUnit converts value between two unit strings of the same
// category (mass<->mass or volume<->volume). Per spec.md §9's "unit
// resolution is per-food-item, not global," this utility has no food
// context and is restricted to in-category conversion.
func (s *Surface) ConvertUnit(ctx context.Context, value float64, from, to string) (*ConvertUnitResult, error) {
	if err := requireFinite("value", value); err != nil {
		return nil, err
	}
	converted, err := units.ConvertSameCategory(value, from, to)
	if err != nil {
		return nil, wrapf("convert_unit", err)
	}
	return &ConvertUnitResult{Value: converted, Unit: to}, nil
}
