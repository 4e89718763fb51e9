package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// WinProbability is one cell of the persisted win-probability lookup table:
// the empirical chance that a team leading by ScoreDiff goals at Minute goes
// on to win. The table is replaced wholesale on every rebuild, never patched.
type WinProbability struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Minute      int     `gorm:"not null;uniqueIndex:idx_minute_diff,priority:1" json:"minute"`
	ScoreDiff   int     `gorm:"not null;uniqueIndex:idx_minute_diff,priority:2" json:"score_diff"`
	Probability float64 `gorm:"not null" json:"probability"`
}

// TableName specifies the table name for GORM
func (WinProbability) TableName() string {
	return "win_probabilities"
}

// RebuildRun is an append-only record of one full lookup-table rebuild.
type RebuildRun struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TotalGoalsProcessed int            `gorm:"not null" json:"total_goals_processed"`
	Version             string         `gorm:"type:varchar(20);not null" json:"version"`
	SeasonIDs           pq.Int64Array  `gorm:"type:integer[]" json:"season_ids"`
	ErrorSample         datatypes.JSON `json:"error_sample"`
	CreatedAt           time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM
func (RebuildRun) TableName() string {
	return "rebuild_runs"
}
