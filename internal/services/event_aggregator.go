package services

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pitchstats/goalvalue/internal/models"
	"github.com/pitchstats/goalvalue/internal/wintable"
	"github.com/pitchstats/goalvalue/pkg/database"
)

// EventAggregator folds historical scoring events into outcome buckets keyed
// by (minute, score differential), the raw material for the lookup table.
type EventAggregator struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewEventAggregator creates a new event aggregator
func NewEventAggregator(db *database.DB, logger *logrus.Logger) *EventAggregator {
	return &EventAggregator{
		db:     db,
		logger: logger,
	}
}

// AggregationResult carries the bucket fold plus run bookkeeping
type AggregationResult struct {
	Buckets   wintable.Buckets
	Processed int
	Skipped   int
	SeasonIDs []int64
}

// Run loads every goal and own-goal event with its match and aggregates them
func (a *EventAggregator) Run() (*AggregationResult, error) {
	var events []models.GoalEvent
	err := a.db.Preload("Match").
		Where("kind IN ?", models.ScoringKinds).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load scoring events: %w", err)
	}

	result := a.Aggregate(events)
	a.logger.Infof("Aggregated %d scoring events into %d buckets (%d skipped for missing data)",
		result.Processed, len(result.Buckets), result.Skipped)
	return result, nil
}

// Aggregate folds already-loaded events into buckets. Events with any missing
// scoreboard snapshot or final score are skipped without error, as are events
// whose scoring side cannot be attributed.
func (a *EventAggregator) Aggregate(events []models.GoalEvent) *AggregationResult {
	buckets := make(wintable.Buckets)
	seasons := make(map[int64]struct{})
	processed, skipped := 0, 0

	for i := range events {
		e := &events[i]
		if e.Match == nil || !e.Match.HasFinalScore() || !e.HasScoreCounts() {
			skipped++
			continue
		}
		side, ok := scoringSide(e)
		if !ok {
			skipped++
			continue
		}

		_, diffAfter := scoreDiffs(e, side)

		scorerFinal, opponentFinal := *e.Match.HomeScore, *e.Match.AwayScore
		if side == sideAway {
			scorerFinal, opponentFinal = opponentFinal, scorerFinal
		}
		outcome := wintable.OutcomeDraw
		switch {
		case scorerFinal > opponentFinal:
			outcome = wintable.OutcomeWin
		case scorerFinal < opponentFinal:
			outcome = wintable.OutcomeLoss
		}

		buckets.Record(e.Minute, diffAfter, outcome)
		seasons[int64(e.Match.SeasonID)] = struct{}{}
		processed++
	}

	result := &AggregationResult{
		Buckets:   buckets,
		Processed: processed,
		Skipped:   skipped,
	}
	for id := range seasons {
		result.SeasonIDs = append(result.SeasonIDs, id)
	}
	sort.Slice(result.SeasonIDs, func(i, j int) bool { return result.SeasonIDs[i] < result.SeasonIDs[j] })
	return result
}
