package models

import (
	"time"
)

// PlayerSeasonTeamAggregate holds a player's goal-value totals for one season
// with one team. The ingestion layer creates one row per known combination;
// this module only writes the three value fields and never inserts or deletes.
type PlayerSeasonTeamAggregate struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PlayerID uint `gorm:"not null;uniqueIndex:idx_player_season_team,priority:1" json:"player_id"`
	SeasonID uint `gorm:"not null;uniqueIndex:idx_player_season_team,priority:2" json:"season_id"`
	TeamID   uint `gorm:"not null;uniqueIndex:idx_player_season_team,priority:3" json:"team_id"`

	TotalGoalValue float64 `gorm:"not null;default:0" json:"total_goal_value"`
	GoalCount      int     `gorm:"not null;default:0" json:"goal_count"`
	GvAvg          float64 `gorm:"not null;default:0" json:"gv_avg"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PlayerSeasonTeamAggregate) TableName() string {
	return "player_season_team_aggregates"
}
