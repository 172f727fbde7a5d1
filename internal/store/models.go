package store

import "github.com/nutrilog/core/internal/units"

// Preference is a user's disposition toward a food item.
type Preference string

const (
	PreferenceLiked    Preference = "liked"
	PreferenceDisliked Preference = "disliked"
	PreferenceNeutral  Preference = "neutral"
)

// MealType classifies when in the day a MealEntry was logged.
type MealType string

const (
	MealBreakfast   MealType = "breakfast"
	MealLunch       MealType = "lunch"
	MealDinner      MealType = "dinner"
	MealSnack       MealType = "snack"
	MealUnspecified MealType = "unspecified"
)

// NutritionFields is the nine per-serving/per-day nutrition columns
// shared by FoodItem, Recipe (cached), Day (cached), and MealEntry
// (cached), named to match the migration's column set directly.
type NutritionFields struct {
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	Fiber        float64 `json:"fiber"`
	Sodium       float64 `json:"sodium"`
	Sugar        float64 `json:"sugar"`
	SaturatedFat float64 `json:"saturated_fat"`
	Cholesterol  float64 `json:"cholesterol"`
}

// FoodItem is a base ingredient with per-serving nutrition.
type FoodItem struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"`
	Brand           *string            `json:"brand,omitempty"`
	ServingSize     float64            `json:"serving_size"`
	ServingUnit     string             `json:"serving_unit"`
	Nutrition       NutritionFields    `json:"nutrition"`
	BaseUnitType    units.BaseUnitType `json:"base_unit_type"`
	GramsPerServing *float64           `json:"grams_per_serving,omitempty"`
	MlPerServing    *float64           `json:"ml_per_serving,omitempty"`
	Preference      Preference         `json:"preference"`
	Notes           *string            `json:"notes,omitempty"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

// FoodItemConversion is a food-specific custom unit conversion, e.g.
// "1 scoop = 30g" for a particular protein powder.
type FoodItemConversion struct {
	ID              int64    `json:"id"`
	FoodItemID      int64    `json:"food_item_id"`
	UnitName        string   `json:"unit_name"`
	GramsEquivalent *float64 `json:"grams_equivalent,omitempty"`
	MlEquivalent    *float64 `json:"ml_equivalent,omitempty"`
}

// Recipe is a named composition of ingredients and sub-recipe
// components with a cached per-serving nutrition vector.
type Recipe struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	ServingsProduced float64         `json:"servings_produced"`
	IsFavorite       bool            `json:"is_favorite"`
	CachedNutrition  NutritionFields `json:"cached_nutrition"`
	Notes            *string         `json:"notes,omitempty"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// RecipeIngredient is a food→recipe edge: a quantity of a food item
// used in a recipe.
type RecipeIngredient struct {
	ID         int64   `json:"id"`
	RecipeID   int64   `json:"recipe_id"`
	FoodItemID int64   `json:"food_item_id"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Notes      *string `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// RecipeComponent is a recipe→recipe edge: a child recipe used as a
// sub-component of a parent recipe.
type RecipeComponent struct {
	ID                int64   `json:"id"`
	ParentRecipeID    int64   `json:"parent_recipe_id"`
	ComponentRecipeID int64   `json:"component_recipe_id"`
	Servings          float64 `json:"servings"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// Day is the container for a calendar date's logged meals.
type Day struct {
	ID                   int64           `json:"id"`
	Date                 string          `json:"date"`
	CachedNutrition      NutritionFields `json:"cached_nutrition"`
	CachedCaloriesBurned *float64        `json:"cached_calories_burned,omitempty"`
	Notes                *string         `json:"notes,omitempty"`
	CreatedAt            string          `json:"created_at"`
	UpdatedAt            string          `json:"updated_at"`
}

// MealSource is the tagged variant a MealEntry consumes from: exactly
// one of RecipeID or FoodItemID is set, modeled explicitly rather than
// as two loosely related nullable fields.
type MealSource struct {
	RecipeID   *int64 `json:"recipe_id,omitempty"`
	FoodItemID *int64 `json:"food_item_id,omitempty"`
}

// IsRecipe reports whether the source is a recipe.
func (s MealSource) IsRecipe() bool { return s.RecipeID != nil }

// IsFoodItem reports whether the source is a food item.
func (s MealSource) IsFoodItem() bool { return s.FoodItemID != nil }

// MealEntry records a specific consumption event on a Day.
type MealEntry struct {
	ID              int64           `json:"id"`
	DayID           int64           `json:"day_id"`
	MealType        MealType        `json:"meal_type"`
	Source          MealSource      `json:"source"`
	Servings        float64         `json:"servings"`
	PercentEaten    float64         `json:"percent_eaten"`
	CachedNutrition NutritionFields `json:"cached_nutrition"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}
