// Package units implements the Unit Engine: classification of unit
// strings into mass, volume, count, or custom categories, and the
// per-food-item scaling multiplier algorithm the nutrition calculator
// depends on. Category tables, the parenthetical smart-unit parser,
// and the multiplier algorithm are restructured around an explicit
// FoodContext instead of loose positional arguments.
package units

import (
	"strconv"
	"strings"
)

// Category is the coarse classification of a unit string.
type Category int

const (
	CategoryMass Category = iota
	CategoryVolume
	CategoryCount
	CategoryCustom
)

func (c Category) String() string {
	switch c {
	case CategoryMass:
		return "mass"
	case CategoryVolume:
		return "volume"
	case CategoryCount:
		return "count"
	default:
		return "custom"
	}
}

// BaseUnitType is a food item's canonical storage classification.
type BaseUnitType string

const (
	BaseMass  BaseUnitType = "mass"
	BaseVolume BaseUnitType = "volume"
	BaseCount BaseUnitType = "count"
)

// Mass conversion factors, to grams.
var gramsPerUnit = map[string]float64{
	"g": 1, "gram": 1, "grams": 1,
	"mg": 0.001, "milligram": 0.001, "milligrams": 0.001,
	"kg": 1000, "kilogram": 1000, "kilograms": 1000,
	"oz": 28.3495, "ounce": 28.3495, "ounces": 28.3495,
	"lb": 453.592, "lbs": 453.592, "pound": 453.592, "pounds": 453.592,
}

// Volume conversion factors, to milliliters.
var mlPerUnit = map[string]float64{
	"ml": 1, "milliliter": 1, "milliliters": 1, "millilitre": 1, "millilitres": 1,
	"l": 1000, "liter": 1000, "liters": 1000, "litre": 1000, "litres": 1000,
	"tsp": 4.92892, "teaspoon": 4.92892, "teaspoons": 4.92892,
	"tbsp": 14.7868, "tablespoon": 14.7868, "tablespoons": 14.7868,
	"fl oz": 29.5735, "floz": 29.5735, "fluid ounce": 29.5735, "fluid ounces": 29.5735,
	"cup": 236.588, "cups": 236.588,
	"pint": 473.176, "pints": 473.176,
	"quart": 946.353, "quarts": 946.353,
	"gallon": 3785.41, "gallons": 3785.41,
}

var countTokens = map[string]bool{
	"each": true, "piece": true, "pieces": true, "slice": true, "slices": true,
	"item": true, "items": true, "count": true, "unit": true, "units": true,
}

// GramsPerUnit returns the gram factor for a recognized mass unit token.
func GramsPerUnit(unit string) (float64, bool) {
	f, ok := gramsPerUnit[normalize(unit)]
	return f, ok
}

// MlPerUnit returns the milliliter factor for a recognized volume unit token.
func MlPerUnit(unit string) (float64, bool) {
	f, ok := mlPerUnit[normalize(unit)]
	return f, ok
}

func normalize(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// Categorize classifies a bare unit token (no parenthetical annotation).
func Categorize(unit string) Category {
	n := normalize(unit)
	if _, ok := gramsPerUnit[n]; ok {
		return CategoryMass
	}
	if _, ok := mlPerUnit[n]; ok {
		return CategoryVolume
	}
	if countTokens[n] {
		return CategoryCount
	}
	return CategoryCustom
}

// ParsedUnit is the result of parsing a (possibly annotated) unit string
// such as "2 tbsp (20g)" or a bare token such as "tbsp".
type ParsedUnit struct {
	BaseUnit    string
	GramWeight  *float64
	MlAmount    *float64
	Category    Category
}

// Parse extracts a parenthetical mass/volume annotation from a unit
// string, if present, and classifies the base unit token.
//
// Examples: "g" -> {BaseUnit: "g"}; "tbsp (20g)" -> {BaseUnit: "tbsp",
// GramWeight: 20}; "cup (240ml)" -> {BaseUnit: "cup", MlAmount: 240}.
func Parse(unitStr string) ParsedUnit {
	trimmed := strings.TrimSpace(unitStr)

	if open := strings.Index(trimmed, "("); open >= 0 {
		if closeIdx := strings.Index(trimmed, ")"); closeIdx > open {
			base := strings.ToLower(strings.TrimSpace(trimmed[:open]))
			annotation := trimmed[open+1 : closeIdx]

			gramWeight := parseAnnotation(annotation, gramSuffixes)
			mlAmount := parseAnnotation(annotation, mlSuffixes)

			return ParsedUnit{
				BaseUnit:   base,
				GramWeight: gramWeight,
				MlAmount:   mlAmount,
				Category:   Categorize(base),
			}
		}
	}

	base := strings.ToLower(trimmed)
	return ParsedUnit{BaseUnit: base, Category: Categorize(base)}
}

var gramSuffixes = []string{"g", "gram", "grams"}
var mlSuffixes = []string{"ml", "milliliter", "milliliters", "millilitre", "millilitres"}

func parseAnnotation(s string, suffixes []string) *float64 {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, suffix) {
			numPart := strings.TrimSpace(lower[:len(lower)-len(suffix)])
			if val, err := strconv.ParseFloat(numPart, 64); err == nil {
				return &val
			}
		}
	}
	return nil
}

// ToGrams converts a quantity in the given unit string to grams,
// using any parenthetical annotation or a known mass-unit factor.
// Returns ok=false if the conversion needs information this unit
// string does not carry (e.g. a bare volume or custom token).
func ToGrams(quantity float64, unit string) (float64, bool) {
	p := Parse(unit)
	if p.GramWeight != nil {
		return quantity * *p.GramWeight, true
	}
	if factor, ok := GramsPerUnit(p.BaseUnit); ok {
		return quantity * factor, true
	}
	return 0, false
}

// ToMl converts a quantity in the given unit string to milliliters.
func ToMl(quantity float64, unit string) (float64, bool) {
	p := Parse(unit)
	if p.MlAmount != nil {
		return quantity * *p.MlAmount, true
	}
	if factor, ok := MlPerUnit(p.BaseUnit); ok {
		return quantity * factor, true
	}
	return 0, false
}

// InferBaseUnitType infers a food item's base_unit_type from its
// serving_unit label, per the smart-unit parsing rule: an annotated
// compound unit fixes the type from its annotation; otherwise the type
// follows the bare unit's category (custom tokens default to mass,
// matching a food item's serving expressed in an unlisted unit like
// "scoop" or "patty" being weighed in practice).
func InferBaseUnitType(servingUnit string) BaseUnitType {
	p := Parse(servingUnit)
	if p.GramWeight != nil {
		return BaseMass
	}
	if p.MlAmount != nil {
		return BaseVolume
	}
	switch p.Category {
	case CategoryMass:
		return BaseMass
	case CategoryVolume:
		return BaseVolume
	case CategoryCount:
		return BaseCount
	default:
		return BaseMass
	}
}

// GramsPerServing derives grams_per_serving from serving_size and
// serving_unit, when the unit string carries enough information.
func GramsPerServing(servingSize float64, servingUnit string) (float64, bool) {
	p := Parse(servingUnit)
	if p.GramWeight != nil {
		return servingSize * *p.GramWeight, true
	}
	if factor, ok := GramsPerUnit(p.BaseUnit); ok {
		return servingSize * factor, true
	}
	return 0, false
}

// MlPerServing derives ml_per_serving from serving_size and serving_unit.
func MlPerServing(servingSize float64, servingUnit string) (float64, bool) {
	p := Parse(servingUnit)
	if p.MlAmount != nil {
		return servingSize * *p.MlAmount, true
	}
	if factor, ok := MlPerUnit(p.BaseUnit); ok {
		return servingSize * factor, true
	}
	return 0, false
}
