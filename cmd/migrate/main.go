package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pitchstats/goalvalue/internal/models"
	"github.com/pitchstats/goalvalue/pkg/config"
	"github.com/pitchstats/goalvalue/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	// Auto migrate all models. Match, event and aggregate tables are owned
	// by the ingestion scraper in production; migrating them here keeps
	// development databases self-contained.
	if err := db.AutoMigrate(
		&models.Match{},
		&models.GoalEvent{},
		&models.WinProbability{},
		&models.RebuildRun{},
		&models.PlayerSeasonTeamAggregate{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	// Create indexes
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_goal_events_match ON goal_events(match_id)",
		"CREATE INDEX IF NOT EXISTS idx_goal_events_player_kind ON goal_events(player_id, kind)",
		"CREATE INDEX IF NOT EXISTS idx_matches_season ON matches(season_id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Drop tables in reverse order to handle foreign key constraints
	tables := []string{
		"rebuild_runs",
		"win_probabilities",
		"player_season_team_aggregates",
		"goal_events",
		"matches",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func intPtr(v int) *int { return &v }

func uintPtr(v uint) *uint { return &v }

func seedData(db *database.DB) error {
	// Two finished fixtures with scoreboard snapshots, enough to exercise a
	// full rebuild end to end against a development database.
	matches := []models.Match{
		{SeasonID: 1, HomeTeamID: 10, AwayTeamID: 20, HomeScore: intPtr(2), AwayScore: intPtr(1)},
		{SeasonID: 1, HomeTeamID: 30, AwayTeamID: 10, HomeScore: intPtr(2), AwayScore: intPtr(1)},
	}
	if err := db.Create(&matches).Error; err != nil {
		return fmt.Errorf("failed to create matches: %w", err)
	}

	events := []models.GoalEvent{
		{MatchID: matches[0].ID, PlayerID: uintPtr(101), Kind: models.EventKindGoal, Minute: 45,
			HomeGoalsBefore: intPtr(0), HomeGoalsAfter: intPtr(1), AwayGoalsBefore: intPtr(0), AwayGoalsAfter: intPtr(0)},
		{MatchID: matches[0].ID, PlayerID: uintPtr(201), Kind: models.EventKindGoal, Minute: 60,
			HomeGoalsBefore: intPtr(1), HomeGoalsAfter: intPtr(1), AwayGoalsBefore: intPtr(0), AwayGoalsAfter: intPtr(1)},
		{MatchID: matches[0].ID, PlayerID: uintPtr(102), Kind: models.EventKindGoal, Minute: 78,
			HomeGoalsBefore: intPtr(1), HomeGoalsAfter: intPtr(2), AwayGoalsBefore: intPtr(1), AwayGoalsAfter: intPtr(1)},
		{MatchID: matches[1].ID, PlayerID: uintPtr(301), Kind: models.EventKindGoal, Minute: 45,
			HomeGoalsBefore: intPtr(0), HomeGoalsAfter: intPtr(1), AwayGoalsBefore: intPtr(0), AwayGoalsAfter: intPtr(0)},
		{MatchID: matches[1].ID, PlayerID: uintPtr(302), Kind: models.EventKindOwnGoal, Minute: 70,
			HomeGoalsBefore: intPtr(1), HomeGoalsAfter: intPtr(2), AwayGoalsBefore: intPtr(0), AwayGoalsAfter: intPtr(0)},
		{MatchID: matches[1].ID, PlayerID: uintPtr(103), Kind: models.EventKindGoal, Minute: 88,
			HomeGoalsBefore: intPtr(2), HomeGoalsAfter: intPtr(2), AwayGoalsBefore: intPtr(0), AwayGoalsAfter: intPtr(1)},
	}
	if err := db.Create(&events).Error; err != nil {
		return fmt.Errorf("failed to create goal events: %w", err)
	}

	aggregates := []models.PlayerSeasonTeamAggregate{
		{PlayerID: 101, SeasonID: 1, TeamID: 10},
		{PlayerID: 102, SeasonID: 1, TeamID: 10},
		{PlayerID: 103, SeasonID: 1, TeamID: 10},
		{PlayerID: 201, SeasonID: 1, TeamID: 20},
		{PlayerID: 301, SeasonID: 1, TeamID: 30},
	}
	if err := db.Create(&aggregates).Error; err != nil {
		return fmt.Errorf("failed to create aggregates: %w", err)
	}

	logrus.Infof("Seeded %d matches, %d events and %d aggregates", len(matches), len(events), len(aggregates))
	return nil
}
