// Package interfaces defines the core abstractions of the triage API
// so components can be wired through dependency injection and tested
// against small mocks.
package interfaces

import (
	"time"

	"github.com/nishkal/triage-api/refdata/entities"
)

// DataStore provides thread-safe access to the reference data
// snapshot. Readers always see one complete snapshot; refreshes swap
// the whole snapshot atomically.
type DataStore interface {
	GetSnapshot() *entities.Snapshot
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time
	SetServerStartTime(startTime time.Time)

	UpdateSnapshot(snapshot *entities.Snapshot)
	BeginUpdate() bool
	EndUpdate()
}

// Loader builds a validated snapshot from the reference datasets.
type Loader interface {
	Load() (*entities.Snapshot, error)
}

// Scheduler manages periodic snapshot refreshes and staleness
// monitoring.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker reports service health derived from snapshot state.
type HealthChecker interface {
	HealthCheck() (status string, data map[string]any, httpStatus int)
}
