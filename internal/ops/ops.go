// Package ops implements the Operation Surface: the externally
// callable verbs of spec.md §4.5, each a transaction-scoped wrapper
// that validates inputs, mutates the Graph Store, invokes the Cascade
// Engine when applicable, and returns a structured result.
//
// Grounded on internal/orchestrate/orchestrate.go's top-level
// "validate, call collaborators, build a structured result" shape
// (RunOrchestration: fail-fast validation, delegate to collaborators,
// assemble a typed *Result) and on
// original_source/src/tools/{recipes,food_items,days}.rs's verb
// functions for the exact validation-then-mutate-then-cascade
// sequencing per verb.
package ops

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/nutrilog/core/internal/cascade"
	"github.com/nutrilog/core/internal/store"
)

// Surface wraps the Graph Store and Cascade Engine behind the verbs of
// spec.md §4.5. It is the boundary the RPC transport and CLI both call
// through; neither holds any domain logic of its own.
type Surface struct {
	Store   *store.Store
	Cascade *cascade.Engine
	Log     *slog.Logger
}

// New builds a Surface over an already-open store.
func New(s *store.Store, log *slog.Logger) *Surface {
	if log == nil {
		log = slog.Default()
	}
	return &Surface{Store: s, Cascade: cascade.New(s), Log: log}
}

// CascadeCounts is embedded in every write verb's result that can
// trigger a cascade, per spec.md §4.5's "all write verbs return ...
// {recipes_recalculated, days_recalculated} counts where applicable."
type CascadeCounts struct {
	RecipesRecalculated int `json:"recipes_recalculated"`
	DaysRecalculated    int `json:"days_recalculated"`
}

func countsFrom(r cascade.Result) CascadeCounts {
	return CascadeCounts{RecipesRecalculated: r.RecipesRecalculated, DaysRecalculated: r.DaysRecalculated}
}

// cascadeFoodItem runs the food-item cascade unless batch mode is
// active, in which case the store has already queued the id and the
// verb reports zero counts — the eventual FinishBatchUpdate call
// reports the coalesced total instead.
func (s *Surface) cascadeFoodItem(ctx context.Context, foodItemID int64) (CascadeCounts, error) {
	res, err := s.Cascade.FromFoodItem(ctx, foodItemID)
	if err != nil {
		return CascadeCounts{}, err
	}
	return countsFrom(res), nil
}

// cascadeRecipe runs the recipe cascade unconditionally: batch mode
// (spec.md §4.4) defers only update_food_item, never a direct
// ingredient/component/servings_produced edit made straight to a
// recipe.
func (s *Surface) cascadeRecipe(ctx context.Context, recipeID int64) (CascadeCounts, error) {
	res, err := s.Cascade.FromRecipe(ctx, recipeID)
	if err != nil {
		return CascadeCounts{}, err
	}
	return countsFrom(res), nil
}

// requireFinite rejects NaN/Inf quantities, per spec.md §4.5's "reject
// non-finite or negative quantities."
func requireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &store.ValidationError{Field: field, Reason: "must be a finite number"}
	}
	return nil
}

func requirePositive(field string, v float64) error {
	if err := requireFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return &store.ValidationError{Field: field, Reason: "must be greater than 0"}
	}
	return nil
}

func requireNonEmpty(field, v string) error {
	if v == "" {
		return &store.ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

// newRunID mints an observability token for a batch epoch or a manual
// recalculation pass, per SPEC_FULL.md's domain-stack wiring of
// google/uuid for run tracking rather than row identity.
func newRunID() string {
	return uuid.NewString()
}

// wrapf adds verb context to a collaborator error without discarding
// its type, so callers can still errors.As into the typed kinds of
// spec.md §7.
func wrapf(verb string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", verb, err)
}
