package models

import (
	"time"
)

// EventKind classifies a raw match event row
type EventKind string

const (
	EventKindGoal    EventKind = "goal"
	EventKindOwnGoal EventKind = "own_goal"
	EventKindAssist  EventKind = "assist"
	EventKindOther   EventKind = "other"
)

// ScoringKinds are the event kinds that move the scoreboard
var ScoringKinds = []EventKind{EventKindGoal, EventKindOwnGoal}

// Match represents one played fixture. Rows are created and maintained by the
// ingestion scraper; this module only reads them.
type Match struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	SeasonID   uint `gorm:"not null;index" json:"season_id"`
	HomeTeamID uint `gorm:"not null;index" json:"home_team_id"`
	AwayTeamID uint `gorm:"not null;index" json:"away_team_id"`

	// Final scores are nullable: fixtures can be ingested before full time.
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Match) TableName() string {
	return "matches"
}

// HasFinalScore reports whether both full-time scores are present
func (m *Match) HasFinalScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// GoalEvent represents a single scoreboard event within a match. The scraper
// writes everything except GoalValue, which is owned by the value assigner.
type GoalEvent struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	MatchID  uint      `gorm:"not null;index" json:"match_id"`
	Match    *Match    `gorm:"foreignKey:MatchID" json:"match,omitempty"`
	PlayerID *uint     `gorm:"index" json:"player_id"`
	Kind     EventKind `gorm:"type:varchar(20);not null;index" json:"kind"`

	// Minute is 1-based and uncapped; extra time shows up as 90+.
	Minute int `gorm:"not null" json:"minute"`

	// Scoreboard snapshots immediately before and after the event.
	HomeGoalsBefore *int `json:"home_goals_before"`
	HomeGoalsAfter  *int `json:"home_goals_after"`
	AwayGoalsBefore *int `json:"away_goals_before"`
	AwayGoalsAfter  *int `json:"away_goals_after"`

	// GoalValue is the win-probability delta attributed to this event.
	// Null until computed, and re-nulled when the inputs are unusable.
	GoalValue *float64 `json:"goal_value"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (GoalEvent) TableName() string {
	return "goal_events"
}

// HasScoreCounts reports whether all four scoreboard snapshots are present
func (e *GoalEvent) HasScoreCounts() bool {
	return e.HomeGoalsBefore != nil && e.HomeGoalsAfter != nil &&
		e.AwayGoalsBefore != nil && e.AwayGoalsAfter != nil
}
