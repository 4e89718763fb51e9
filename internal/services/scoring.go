package services

import (
	"github.com/pitchstats/goalvalue/internal/models"
)

// matchSide distinguishes the two teams of a fixture
type matchSide int

const (
	sideHome matchSide = iota
	sideAway
)

// scoringSide determines which side's goal count increased between the pre-
// and post-event scoreboard snapshots. ok is false when neither or both
// sides increased; the caller decides whether that is a skip or a diagnostic.
// Callers must check HasScoreCounts first.
func scoringSide(e *models.GoalEvent) (matchSide, bool) {
	homeScored := *e.HomeGoalsAfter > *e.HomeGoalsBefore
	awayScored := *e.AwayGoalsAfter > *e.AwayGoalsBefore
	if homeScored == awayScored {
		return 0, false
	}
	if homeScored {
		return sideHome, true
	}
	return sideAway, true
}

// scoreDiffs returns the pre- and post-event goal differentials from the
// scoring side's perspective.
func scoreDiffs(e *models.GoalEvent, side matchSide) (before, after int) {
	if side == sideHome {
		return *e.HomeGoalsBefore - *e.AwayGoalsBefore, *e.HomeGoalsAfter - *e.AwayGoalsAfter
	}
	return *e.AwayGoalsBefore - *e.HomeGoalsBefore, *e.AwayGoalsAfter - *e.HomeGoalsAfter
}

// scoringTeamID maps the derived side onto the match's team ids
func scoringTeamID(m *models.Match, side matchSide) uint {
	if side == sideHome {
		return m.HomeTeamID
	}
	return m.AwayTeamID
}
