package services

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/pitchstats/goalvalue/internal/wintable"
)

// RebuildScheduler sequences the five pipeline stages — aggregate, build,
// persist, assign, roll up — and optionally runs them on a cron schedule
// after the nightly scrape. The stages themselves are single-threaded; the
// scheduler only guards against overlapping triggers.
type RebuildScheduler struct {
	aggregator *EventAggregator
	store      *LookupStore
	assigner   *ValueAssigner
	updater    *AggregateUpdater
	logger     *logrus.Logger
	version    string
	schedule   string

	cron      *cron.Cron
	runMu     sync.Mutex
	stateMu   sync.Mutex
	isRunning bool
}

// NewRebuildScheduler creates a new rebuild scheduler
func NewRebuildScheduler(
	aggregator *EventAggregator,
	store *LookupStore,
	assigner *ValueAssigner,
	updater *AggregateUpdater,
	logger *logrus.Logger,
	version string,
	schedule string,
) *RebuildScheduler {
	return &RebuildScheduler{
		aggregator: aggregator,
		store:      store,
		assigner:   assigner,
		updater:    updater,
		logger:     logger,
		version:    version,
		schedule:   schedule,
		cron:       cron.New(),
	}
}

// Start begins scheduled rebuilds
func (s *RebuildScheduler) Start() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.isRunning {
		return fmt.Errorf("rebuild scheduler is already running")
	}

	_, err := s.cron.AddFunc(s.schedule, s.runScheduled)
	if err != nil {
		return fmt.Errorf("failed to schedule rebuild: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Infof("Rebuild scheduler started (schedule %q)", s.schedule)
	return nil
}

// Stop halts scheduled rebuilds, waiting for an in-flight run to finish
func (s *RebuildScheduler) Stop() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Rebuild scheduler stopped")
}

// RunOnce executes the full pipeline immediately, blocking until done
func (s *RebuildScheduler) RunOnce() error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.runPipeline()
}

func (s *RebuildScheduler) runScheduled() {
	if !s.runMu.TryLock() {
		s.logger.Warn("Rebuild already in progress, skipping scheduled run")
		return
	}
	defer s.runMu.Unlock()

	if err := s.runPipeline(); err != nil {
		s.logger.Errorf("Scheduled rebuild failed: %v", err)
	}
}

// runPipeline is the full-rebuild sequence. Every stage is a pure function
// of already-persisted inputs, so a failed run can simply be retried.
func (s *RebuildScheduler) runPipeline() error {
	s.logger.Info("Starting full goal value rebuild")

	aggregation, err := s.aggregator.Run()
	if err != nil {
		return fmt.Errorf("aggregation stage failed: %w", err)
	}

	table := wintable.Build(aggregation.Buckets)
	if err := s.store.Persist(table); err != nil {
		return fmt.Errorf("lookup persist stage failed: %w", err)
	}

	assignment, err := s.assigner.Run()
	if err != nil {
		return fmt.Errorf("value assignment stage failed: %w", err)
	}

	err = s.store.SaveMetadata(aggregation.Processed, s.version, aggregation.SeasonIDs, assignment.ErrorSample())
	if err != nil {
		return fmt.Errorf("metadata stage failed: %w", err)
	}

	if _, err := s.updater.Run(); err != nil {
		return fmt.Errorf("aggregate rollup stage failed: %w", err)
	}

	s.logger.Info("Completed full goal value rebuild")
	return nil
}
