package store

import (
	"context"
	"log/slog"
)

// batchState is the volatile, process-wide batch-mode state described
// in the Cascade Engine's batch mode: while active, leaf mutations
// record their food item id instead of triggering an immediate
// cascade, and FinishBatch runs the deferred cascades once, coalesced.
//
// It lives on Store rather than internal/cascade because writeMu
// already serializes every caller that could observe or mutate it;
// giving cascade its own lock would just be a second lock protecting
// the same critical section.
type batchState struct {
	active           bool
	pendingFoodItems map[int64]struct{}
}

// BeginBatch turns on batch mode. Leaf mutations made after this call
// (and before EndBatch) accumulate their affected food items instead
// of cascading immediately. Calling it while already active is
// idempotent: it logs a warning and leaves the pending set untouched,
// per spec's "no-op with a warning" rule — nesting is not supported.
func (s *Store) BeginBatch(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.batch.active {
		slog.WarnContext(ctx, "batch update already active, ignoring nested start_batch_update")
		return nil
	}
	s.batch.active = true
	s.batch.pendingFoodItems = make(map[int64]struct{})
	return nil
}

// BatchActive reports whether batch mode is currently on.
func (s *Store) BatchActive() bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.batch.active
}

// NotePendingCascade records that foodItemID changed. If batch mode is
// active the id is queued for EndBatch's coalesced pass and the caller
// should skip its immediate cascade; otherwise it reports false and
// the caller must cascade right away. Does not itself take writeMu:
// callers reach it from outside any withWriteTx, and the single-writer
// model means no concurrent mutation of s.batch can be in flight.
func (s *Store) NotePendingCascade(foodItemID int64) (deferred bool) {
	if s.batch.active {
		s.batch.pendingFoodItems[foodItemID] = struct{}{}
		return true
	}
	return false
}

// EndBatch turns off batch mode and returns the accumulated set of
// affected food item ids so the caller (the Operation Surface, via the
// Cascade Engine) can run one coalesced recalculation pass over their
// union of dependents. Returns InvariantViolationError if batch mode
// was not active.
func (s *Store) EndBatch(ctx context.Context) ([]int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if !s.batch.active {
		return nil, &InvariantViolationError{Detail: "batch mode is not active"}
	}
	ids := make([]int64, 0, len(s.batch.pendingFoodItems))
	for id := range s.batch.pendingFoodItems {
		ids = append(ids, id)
	}
	s.batch.active = false
	s.batch.pendingFoodItems = nil
	return ids, nil
}
