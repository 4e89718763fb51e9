package services

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pitchstats/goalvalue/internal/models"
	"github.com/pitchstats/goalvalue/pkg/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.Match{},
		&models.GoalEvent{},
		&models.WinProbability{},
		&models.RebuildRun{},
		&models.PlayerSeasonTeamAggregate{},
	))

	return &database.DB{DB: gdb}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }

func floatPtr(v float64) *float64 { return &v }

// homeGoal builds a goal event where the home side scores, moving the
// scoreboard from (homeBefore, awayBefore) to (homeBefore+1, awayBefore).
func homeGoal(matchID uint, playerID uint, minute, homeBefore, awayBefore int) models.GoalEvent {
	return models.GoalEvent{
		MatchID:         matchID,
		PlayerID:        uintPtr(playerID),
		Kind:            models.EventKindGoal,
		Minute:          minute,
		HomeGoalsBefore: intPtr(homeBefore),
		HomeGoalsAfter:  intPtr(homeBefore + 1),
		AwayGoalsBefore: intPtr(awayBefore),
		AwayGoalsAfter:  intPtr(awayBefore),
	}
}

// awayGoal is the mirror of homeGoal
func awayGoal(matchID uint, playerID uint, minute, homeBefore, awayBefore int) models.GoalEvent {
	return models.GoalEvent{
		MatchID:         matchID,
		PlayerID:        uintPtr(playerID),
		Kind:            models.EventKindGoal,
		Minute:          minute,
		HomeGoalsBefore: intPtr(homeBefore),
		HomeGoalsAfter:  intPtr(homeBefore),
		AwayGoalsBefore: intPtr(awayBefore),
		AwayGoalsAfter:  intPtr(awayBefore + 1),
	}
}
