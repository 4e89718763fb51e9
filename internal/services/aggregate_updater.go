package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pitchstats/goalvalue/internal/models"
	"github.com/pitchstats/goalvalue/pkg/database"
)

// aggregateBatchSize groups rollup writes for progress reporting. Rows are
// written individually so one bad row never takes down its neighbours.
const aggregateBatchSize = 5000

// AggregateKey identifies one player/season/team combination
type AggregateKey struct {
	PlayerID uint
	SeasonID uint
	TeamID   uint
}

// RollupSummary reports one aggregate-updater run
type RollupSummary struct {
	Aggregates    int
	EventsRolled  int
	EventsSkipped int
	Written       int
	RowErrors     int
	ComboErrors   int
	MissingRows   int
}

type runningTotal struct {
	total float64
	count int
}

// AggregateUpdater rolls per-event goal values up to player/season/team
// totals. It never creates or deletes aggregate rows; the ingestion layer
// owns the row set.
type AggregateUpdater struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewAggregateUpdater creates a new aggregate updater
func NewAggregateUpdater(db *database.DB, logger *logrus.Logger) *AggregateUpdater {
	return &AggregateUpdater{
		db:     db,
		logger: logger,
	}
}

// Run recomputes every aggregate from scratch. All pre-existing rows start
// from zero so combinations whose goals no longer qualify converge to zero
// instead of keeping stale totals. Own goals are excluded; an event with a
// null goal value still counts a goal but contributes no value.
func (u *AggregateUpdater) Run() (*RollupSummary, error) {
	var aggregates []models.PlayerSeasonTeamAggregate
	if err := u.db.Find(&aggregates).Error; err != nil {
		return nil, fmt.Errorf("failed to load aggregates: %w", err)
	}

	totals := make(map[AggregateKey]*runningTotal, len(aggregates))
	for _, agg := range aggregates {
		totals[AggregateKey{agg.PlayerID, agg.SeasonID, agg.TeamID}] = &runningTotal{}
	}

	var events []models.GoalEvent
	err := u.db.Preload("Match").
		Where("kind = ?", models.EventKindGoal).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load goal events: %w", err)
	}

	summary := &RollupSummary{Aggregates: len(aggregates)}
	for i := range events {
		e := &events[i]
		if e.PlayerID == nil || e.Match == nil || !e.HasScoreCounts() {
			summary.EventsSkipped++
			continue
		}
		side, ok := scoringSide(e)
		if !ok {
			summary.EventsSkipped++
			continue
		}
		key := AggregateKey{
			PlayerID: *e.PlayerID,
			SeasonID: e.Match.SeasonID,
			TeamID:   scoringTeamID(e.Match, side),
		}
		t, ok := totals[key]
		if !ok {
			summary.EventsSkipped++
			continue
		}
		if e.GoalValue != nil {
			t.total += *e.GoalValue
		}
		t.count++
		summary.EventsRolled++
	}

	for i := range aggregates {
		agg := &aggregates[i]
		t := totals[AggregateKey{agg.PlayerID, agg.SeasonID, agg.TeamID}]
		agg.TotalGoalValue = t.total
		agg.GoalCount = t.count
		agg.GvAvg = 0
		if t.count > 0 {
			agg.GvAvg = t.total / float64(t.count)
		}
	}

	u.persistAll(aggregates, summary)
	u.logger.Infof("Completed aggregate rollup: %d aggregates, %d events rolled up, %d skipped, %d written, %d row errors",
		summary.Aggregates, summary.EventsRolled, summary.EventsSkipped, summary.Written, summary.RowErrors)
	return summary, nil
}

// persistAll writes every aggregate row, batch by batch. Row failures are
// logged and counted without stopping the remaining batches.
func (u *AggregateUpdater) persistAll(aggregates []models.PlayerSeasonTeamAggregate, summary *RollupSummary) {
	for start := 0; start < len(aggregates); start += aggregateBatchSize {
		end := start + aggregateBatchSize
		if end > len(aggregates) {
			end = len(aggregates)
		}
		for i := start; i < end; i++ {
			agg := &aggregates[i]
			err := u.db.Model(&models.PlayerSeasonTeamAggregate{}).
				Where("id = ?", agg.ID).
				Updates(map[string]interface{}{
					"total_goal_value": agg.TotalGoalValue,
					"goal_count":       agg.GoalCount,
					"gv_avg":           agg.GvAvg,
				}).Error
			if err != nil {
				u.logger.Errorf("Failed to update aggregate %d (player %d season %d team %d): %v",
					agg.ID, agg.PlayerID, agg.SeasonID, agg.TeamID, err)
				summary.RowErrors++
				continue
			}
			summary.Written++
		}
		u.logger.Debugf("Aggregate rollup progress: %d/%d", end, len(aggregates))
	}
}

type pendingAggregate struct {
	id    uint
	total float64
	count int
	avg   float64
}

// UpdateForCombinations recomputes only the given player/season/team
// combinations, typically right after the scraper lands a small batch of
// matches. A combination without a pre-existing aggregate row is skipped
// silently; one with a row but no qualifying goals is written back as zero.
// Per-combination failures are logged and counted; a failure of the final
// batched write rolls back and is returned.
func (u *AggregateUpdater) UpdateForCombinations(combos []AggregateKey) (*RollupSummary, error) {
	summary := &RollupSummary{}
	writes := make([]pendingAggregate, 0, len(combos))

	for _, combo := range combos {
		var agg models.PlayerSeasonTeamAggregate
		err := u.db.Where("player_id = ? AND season_id = ? AND team_id = ?",
			combo.PlayerID, combo.SeasonID, combo.TeamID).First(&agg).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			summary.MissingRows++
			continue
		}
		if err != nil {
			u.logger.Errorf("Failed to load aggregate for player %d season %d team %d: %v",
				combo.PlayerID, combo.SeasonID, combo.TeamID, err)
			summary.ComboErrors++
			continue
		}

		total, count, err := u.sumCombination(combo)
		if err != nil {
			u.logger.Errorf("Failed to roll up player %d season %d team %d: %v",
				combo.PlayerID, combo.SeasonID, combo.TeamID, err)
			summary.ComboErrors++
			continue
		}

		avg := 0.0
		if count > 0 {
			avg = total / float64(count)
		}
		writes = append(writes, pendingAggregate{id: agg.ID, total: total, count: count, avg: avg})
		summary.Aggregates++
	}

	err := u.db.Transaction(func(tx *gorm.DB) error {
		for _, w := range writes {
			err := tx.Model(&models.PlayerSeasonTeamAggregate{}).
				Where("id = ?", w.id).
				Updates(map[string]interface{}{
					"total_goal_value": w.total,
					"goal_count":       w.count,
					"gv_avg":           w.avg,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.logger.Errorf("Targeted aggregate write failed, rolled back %d rows: %v", len(writes), err)
		return summary, fmt.Errorf("failed to persist targeted aggregates: %w", err)
	}
	summary.Written = len(writes)

	u.logger.Infof("Completed targeted aggregate update: %d combinations, %d written, %d without rows, %d errors",
		len(combos), summary.Written, summary.MissingRows, summary.ComboErrors)
	return summary, nil
}

// sumCombination totals the qualifying regular goals of one combination:
// the player's goals in that season whose derived scoring team matches.
func (u *AggregateUpdater) sumCombination(combo AggregateKey) (float64, int, error) {
	var events []models.GoalEvent
	err := u.db.Joins("Match").
		Where("goal_events.kind = ? AND goal_events.player_id = ?", models.EventKindGoal, combo.PlayerID).
		Where(`"Match".season_id = ?`, combo.SeasonID).
		Find(&events).Error
	if err != nil {
		return 0, 0, err
	}

	total, count := 0.0, 0
	for i := range events {
		e := &events[i]
		if e.Match == nil || !e.HasScoreCounts() {
			continue
		}
		side, ok := scoringSide(e)
		if !ok {
			continue
		}
		if scoringTeamID(e.Match, side) != combo.TeamID {
			continue
		}
		if e.GoalValue != nil {
			total += *e.GoalValue
		}
		count++
	}
	return total, count, nil
}
