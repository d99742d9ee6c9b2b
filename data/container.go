// Package data provides thread-safe storage for the reference data
// snapshot. The container holds a single atomic pointer so a refresh
// replaces the whole snapshot in one swap, never field by field.
package data

import (
	"sync/atomic"
	"time"

	"github.com/nishkal/triage-api/interfaces"
	"github.com/nishkal/triage-api/logging"
	"github.com/nishkal/triage-api/refdata/entities"
)

// Compile-time check to ensure Container implements DataStore
var _ interfaces.DataStore = (*Container)(nil)

// Container holds the current snapshot with atomic access for
// zero-downtime updates.
type Container struct {
	snapshot        atomic.Value // *entities.Snapshot
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewContainer creates a container holding an empty snapshot.
func NewContainer() *Container {
	c := &Container{}
	c.snapshot.Store(entities.EmptySnapshot())
	c.lastUpdated.Store(time.Time{})
	c.serverStartTime.Store(time.Time{})
	return c
}

// GetSnapshot returns the current snapshot. The returned value is
// immutable and safe to read from any number of goroutines.
func (c *Container) GetSnapshot() *entities.Snapshot {
	if v := c.snapshot.Load(); v != nil {
		if snapshot, ok := v.(*entities.Snapshot); ok {
			return snapshot
		}
	}

	logging.Warn("Snapshot is empty or invalid")
	return entities.EmptySnapshot()
}

// GetLastUpdated returns the timestamp of the last snapshot swap.
func (c *Container) GetLastUpdated() time.Time {
	if v := c.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsUpdating returns true while a refresh is in progress.
func (c *Container) IsUpdating() bool {
	return c.updating.Load()
}

// SetServerStartTime sets the server start time.
func (c *Container) SetServerStartTime(startTime time.Time) {
	c.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time.
func (c *Container) GetServerStartTime() time.Time {
	if v := c.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateSnapshot atomically replaces the current snapshot.
func (c *Container) UpdateSnapshot(snapshot *entities.Snapshot) {
	if snapshot == nil {
		logging.Error("Refusing to store nil snapshot")
		return
	}

	c.snapshot.Store(snapshot)
	c.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a refresh. Returns false when another
// refresh is already in progress.
func (c *Container) BeginUpdate() bool {
	return c.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a refresh.
func (c *Container) EndUpdate() {
	c.updating.Store(false)
}
