package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pitchstats/goalvalue/internal/models"
	"github.com/pitchstats/goalvalue/internal/wintable"
	"github.com/pitchstats/goalvalue/pkg/database"
)

const (
	// writeBatchSize rows are applied per savepoint, commitEveryRows per
	// transaction. A failed batch rolls back alone; the rest of the run
	// keeps going.
	writeBatchSize  = 1000
	commitEveryRows = 10000

	// errorSampleSize caps how many diagnostics a run summary prints and
	// how many get persisted with the rebuild metadata.
	errorSampleSize = 10
)

// valueResult is the tagged outcome of computing one event: a value, a
// missing-data skip, or a diagnostic. Folding these after the loop replaces
// per-row exception swallowing.
type valueResult struct {
	eventID uint
	value   *float64
	missing bool
	diag    string
}

// AssignSummary reports one assigner run. Callers can detect partial failure
// here even when no error was returned.
type AssignSummary struct {
	Processed   int
	Written     int
	MissingData int
	BatchErrors int
	Diagnostics []string
}

// ValueAssigner computes the goal value (win-probability delta) of scoring
// events and writes it back onto the event rows.
type ValueAssigner struct {
	db     *database.DB
	store  *LookupStore
	logger *logrus.Logger

	// table is lazy-loaded on first use and cached for the lifetime of
	// the assigner.
	table *wintable.Table
}

// NewValueAssigner creates a new value assigner
func NewValueAssigner(db *database.DB, store *LookupStore, logger *logrus.Logger) *ValueAssigner {
	return &ValueAssigner{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// Run recomputes the goal value of every goal and own-goal event. Batch
// persistence failures are logged and counted but never abort the run.
func (a *ValueAssigner) Run() (*AssignSummary, error) {
	if err := a.ensureTable(); err != nil {
		return nil, err
	}

	var events []models.GoalEvent
	err := a.db.Where("kind IN ?", models.ScoringKinds).Order("id").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring events: %w", err)
	}

	results, summary := a.computeAll(events)
	written, batchErrors, _ := a.writeResults(results, true)
	summary.Written = written
	summary.BatchErrors = batchErrors

	a.logSummary("full goal value run", summary)
	return summary, nil
}

// UpdateForEvents recomputes only the given event ids, still filtered to
// scoring kinds. Unlike Run, a persistence failure is returned to the caller
// after logging so the ingestion job can react to a missed correction.
func (a *ValueAssigner) UpdateForEvents(eventIDs []uint) (*AssignSummary, error) {
	if len(eventIDs) == 0 {
		return &AssignSummary{}, nil
	}
	if err := a.ensureTable(); err != nil {
		return nil, err
	}

	var events []models.GoalEvent
	err := a.db.Where("id IN ? AND kind IN ?", eventIDs, models.ScoringKinds).
		Order("id").Find(&events).Error
	if err != nil {
		err = fmt.Errorf("failed to load targeted events: %w", err)
		a.logger.Errorf("Targeted goal value update: %v", err)
		return nil, err
	}

	results, summary := a.computeAll(events)
	written, batchErrors, writeErr := a.writeResults(results, false)
	summary.Written = written
	summary.BatchErrors = batchErrors
	if writeErr != nil {
		a.logger.Errorf("Targeted goal value update failed: %v", writeErr)
		return summary, writeErr
	}

	a.logSummary("targeted goal value update", summary)
	return summary, nil
}

func (a *ValueAssigner) ensureTable() error {
	if a.table != nil {
		return nil
	}
	table, err := a.store.Load()
	if err != nil {
		return err
	}
	a.table = table
	return nil
}

// compute produces the tagged result for one event
func (a *ValueAssigner) compute(e *models.GoalEvent) valueResult {
	res := valueResult{eventID: e.ID}

	if !e.HasScoreCounts() {
		res.missing = true
		return res
	}

	side, ok := scoringSide(e)
	if !ok {
		res.diag = fmt.Sprintf("event %d: cannot attribute scoring side (home %d->%d, away %d->%d)",
			e.ID, *e.HomeGoalsBefore, *e.HomeGoalsAfter, *e.AwayGoalsBefore, *e.AwayGoalsAfter)
		return res
	}

	before, after := scoreDiffs(e, side)
	pBefore := a.table.Probability(e.Minute, before)
	pAfter := a.table.Probability(e.Minute, after)

	v := wintable.Round3(pAfter - pBefore)
	res.value = &v
	return res
}

func (a *ValueAssigner) computeAll(events []models.GoalEvent) ([]valueResult, *AssignSummary) {
	results := make([]valueResult, 0, len(events))
	summary := &AssignSummary{Processed: len(events)}
	for i := range events {
		res := a.compute(&events[i])
		if res.missing {
			summary.MissingData++
		}
		if res.diag != "" {
			summary.Diagnostics = append(summary.Diagnostics, res.diag)
		}
		results = append(results, res)
	}
	return results, summary
}

// writeResults persists computed values, nulls included so stale values
// converge. With continueOnError, a failed batch rolls back to its savepoint
// and the run moves on; otherwise the first failure rolls back the open
// transaction and is returned.
func (a *ValueAssigner) writeResults(results []valueResult, continueOnError bool) (written, batchErrors int, err error) {
	var tx *gorm.DB
	pending := 0

	commit := func() error {
		if tx == nil {
			return nil
		}
		commitErr := tx.Commit().Error
		tx = nil
		if commitErr == nil {
			written += pending
		}
		pending = 0
		return commitErr
	}

	for start := 0; start < len(results); start += writeBatchSize {
		end := start + writeBatchSize
		if end > len(results) {
			end = len(results)
		}
		chunk := results[start:end]

		if tx == nil {
			tx = a.db.Begin()
			if tx.Error != nil {
				beginErr := fmt.Errorf("failed to begin goal value transaction: %w", tx.Error)
				tx = nil
				if !continueOnError {
					return written, batchErrors, beginErr
				}
				a.logger.Errorf("Goal value batch skipped: %v", beginErr)
				batchErrors++
				continue
			}
		}

		sp := fmt.Sprintf("goal_value_batch_%d", start)
		tx.SavePoint(sp)
		if applyErr := applyValueChunk(tx, chunk); applyErr != nil {
			tx.RollbackTo(sp)
			if !continueOnError {
				tx.Rollback()
				return written, batchErrors, fmt.Errorf("failed to write goal value batch: %w", applyErr)
			}
			a.logger.Errorf("Goal value batch failed, skipping %d rows: %v", len(chunk), applyErr)
			batchErrors++
			continue
		}
		pending += len(chunk)

		if pending >= commitEveryRows {
			if commitErr := commit(); commitErr != nil {
				if !continueOnError {
					return written, batchErrors, fmt.Errorf("failed to commit goal value batch: %w", commitErr)
				}
				a.logger.Errorf("Goal value commit failed: %v", commitErr)
				batchErrors++
			}
		}
	}

	if commitErr := commit(); commitErr != nil {
		if !continueOnError {
			return written, batchErrors, fmt.Errorf("failed to commit goal value batch: %w", commitErr)
		}
		a.logger.Errorf("Goal value commit failed: %v", commitErr)
		batchErrors++
	}
	return written, batchErrors, nil
}

func applyValueChunk(tx *gorm.DB, chunk []valueResult) error {
	for _, r := range chunk {
		err := tx.Model(&models.GoalEvent{}).
			Where("id = ?", r.eventID).
			Update("goal_value", r.value).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *ValueAssigner) logSummary(label string, s *AssignSummary) {
	a.logger.Infof("Completed %s: %d events, %d written, %d missing data, %d diagnostics, %d batch errors",
		label, s.Processed, s.Written, s.MissingData, len(s.Diagnostics), s.BatchErrors)
	for i, d := range s.Diagnostics {
		if i >= errorSampleSize {
			a.logger.Warnf("... and %d more diagnostics", len(s.Diagnostics)-errorSampleSize)
			break
		}
		a.logger.Warnf("%s", d)
	}
}

// ErrorSample returns at most the first errorSampleSize diagnostics, the
// slice persisted with rebuild metadata.
func (s *AssignSummary) ErrorSample() []string {
	if len(s.Diagnostics) <= errorSampleSize {
		return s.Diagnostics
	}
	return s.Diagnostics[:errorSampleSize]
}
