package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pitchstats/goalvalue/internal/models"
	"github.com/pitchstats/goalvalue/internal/wintable"
	"github.com/pitchstats/goalvalue/pkg/database"
)

const persistChunkSize = 500

// LookupStore persists and reloads the win-probability table and records
// rebuild-run metadata. Writes are always a full replace; the table is never
// patched in place.
type LookupStore struct {
	db       *database.DB
	cache    *CacheService
	cacheTTL time.Duration
	logger   *logrus.Logger
}

// NewLookupStore creates a new lookup store. cache may be nil to run without
// the redis mirror.
func NewLookupStore(db *database.DB, cache *CacheService, cacheTTL time.Duration, logger *logrus.Logger) *LookupStore {
	return &LookupStore{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Persist replaces the stored table with the given one: delete-all plus bulk
// insert inside a single transaction, then a best-effort refresh of the redis
// mirror.
func (s *LookupStore) Persist(table *wintable.Table) error {
	rows := make([]models.WinProbability, 0, table.Len())
	table.Each(func(minute, scoreDiff int, p float64) {
		rows = append(rows, models.WinProbability{
			Minute:      minute,
			ScoreDiff:   scoreDiff,
			Probability: p,
		})
	})

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM win_probabilities").Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, persistChunkSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to persist win probability table: %w", err)
	}

	s.refreshCache(rows)
	s.logger.Infof("Persisted win probability table with %d entries", len(rows))
	return nil
}

// Load reloads the table, preferring the redis mirror and falling back to the
// database. Malformed rows are dropped by the bounds check in Table.Set.
func (s *LookupStore) Load() (*wintable.Table, error) {
	var rows []models.WinProbability
	if !s.loadFromCache(&rows) {
		if err := s.db.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load win probability table: %w", err)
		}
	}

	table := wintable.NewTable()
	for _, row := range rows {
		table.Set(row.Minute, row.ScoreDiff, row.Probability)
	}
	return table, nil
}

// SaveMetadata appends one rebuild-run record. errSample carries at most the
// first few diagnostics of the run; the full list only lives in the logs.
func (s *LookupStore) SaveMetadata(totalGoals int, version string, seasonIDs []int64, errSample []string) error {
	sample, err := json.Marshal(errSample)
	if err != nil {
		return fmt.Errorf("failed to encode error sample: %w", err)
	}

	run := models.RebuildRun{
		ID:                  uuid.New(),
		TotalGoalsProcessed: totalGoals,
		Version:             version,
		SeasonIDs:           pq.Int64Array(seasonIDs),
		ErrorSample:         datatypes.JSON(sample),
	}
	if err := s.db.Create(&run).Error; err != nil {
		return fmt.Errorf("failed to save rebuild metadata: %w", err)
	}
	return nil
}

func (s *LookupStore) refreshCache(rows []models.WinProbability) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSimple(LookupTableCacheKey(), rows, s.cacheTTL); err != nil {
		s.logger.Warnf("Failed to refresh lookup table cache: %v", err)
	}
}

func (s *LookupStore) loadFromCache(rows *[]models.WinProbability) bool {
	if s.cache == nil {
		return false
	}
	if err := s.cache.GetSimple(LookupTableCacheKey(), rows); err != nil {
		return false
	}
	return len(*rows) > 0
}
