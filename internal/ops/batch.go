package ops

import "context"

// BatchUpdateResult reports the epoch token assigned to a batch run
// and, for FinishBatchUpdate, the coalesced cascade counts.
type BatchUpdateResult struct {
	RunID string `json:"run_id"`
	CascadeCounts
}

// StartBatchUpdate turns on batch mode: subsequent update_food_item
// calls defer their cascades until FinishBatchUpdate. Idempotent per
// spec.md §4.4 — calling it while already active logs a warning and
// changes nothing.
func (s *Surface) StartBatchUpdate(ctx context.Context) (*BatchUpdateResult, error) {
	if err := s.Store.BeginBatch(ctx); err != nil {
		return nil, wrapf("start_batch_update", err)
	}
	return &BatchUpdateResult{RunID: newRunID()}, nil
}

// FinishBatchUpdate ends batch mode and runs one coalesced cascade
// over every food item queued during the batch.
func (s *Surface) FinishBatchUpdate(ctx context.Context) (*BatchUpdateResult, error) {
	res, err := s.Cascade.FinishBatch(ctx)
	if err != nil {
		return nil, wrapf("finish_batch_update", err)
	}
	return &BatchUpdateResult{RunID: newRunID(), CascadeCounts: countsFrom(res)}, nil
}

// RecalculateAllResult reports the recovery pass's cache-rebuild counts.
type RecalculateAllResult struct {
	RunID string `json:"run_id"`
	CascadeCounts
}

// RecalculateAll rebuilds every recipe and day cache from primary
// data — the recovery operation for a batch left dangling by a crash,
// per spec.md §4.4's crash-recovery policy.
func (s *Surface) RecalculateAll(ctx context.Context) (*RecalculateAllResult, error) {
	res, err := s.Cascade.RecalculateAll(ctx)
	if err != nil {
		return nil, wrapf("recalculate_all", err)
	}
	return &RecalculateAllResult{RunID: newRunID(), CascadeCounts: countsFrom(res)}, nil
}
