// Package scheduler drives periodic reference data refreshes. A
// refresh builds a complete new snapshot before swapping it in; on any
// loader error the previous snapshot stays in use (fail closed).
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/nishkal/triage-api/interfaces"
	"github.com/nishkal/triage-api/logging"
	"github.com/nishkal/triage-api/metrics"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles snapshot refreshes and staleness monitoring using
// dependency injection.
type Scheduler struct {
	dataStore interfaces.DataStore
	loader    interfaces.Loader
	scheduler *gocron.Scheduler
	interval  time.Duration
	done      chan struct{}
}

// NewScheduler creates a scheduler refreshing every interval.
func NewScheduler(dataStore interfaces.DataStore, loader interfaces.Loader, interval time.Duration) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		loader:    loader,
		scheduler: gocron.NewScheduler(time.Local),
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Start performs the initial load and schedules periodic refreshes.
// The initial load must succeed; later failures only log and keep the
// previous snapshot.
func (s *Scheduler) Start() error {
	if err := s.Refresh(); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		return fmt.Errorf("initial data load failed: %w", err)
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if err := s.Refresh(); err != nil {
			logging.Error("Failed to refresh reference data", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule refreshes", "error", err)
		return fmt.Errorf("failed to schedule refreshes: %w", err)
	}

	s.scheduler.StartAsync()
	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler and the staleness watchdog.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	close(s.done)
}

// Refresh builds a new snapshot and swaps it in atomically. Concurrent
// refreshes are skipped via the container's CAS guard.
func (s *Scheduler) Refresh() error {
	if !s.dataStore.BeginUpdate() {
		logging.Info("Refresh already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	start := time.Now()

	snapshot, err := s.loader.Load()
	if err != nil {
		// Keep serving the previous snapshot
		metrics.SnapshotRefreshTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("reference data load failed: %w", err)
	}

	s.dataStore.UpdateSnapshot(snapshot)
	metrics.SnapshotRefreshTotal.WithLabelValues("success").Inc()

	logging.Info("Reference data refresh completed",
		"duration", time.Since(start).String(),
		"medications", len(snapshot.Medications),
		"pharmacies", len(snapshot.Pharmacies),
		"inventory_rows", len(snapshot.Inventory),
	)

	return nil
}

// startStalenessMonitoring warns when the snapshot missed two refresh
// windows.
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				lastUpdate := s.dataStore.GetLastUpdated()
				if time.Since(lastUpdate) > 2*s.interval {
					logging.Warn("Reference data is stale",
						"last_update", lastUpdate.Format(time.RFC3339),
						"refresh_interval", s.interval.String(),
					)
				}
			}
		}
	}()
}
