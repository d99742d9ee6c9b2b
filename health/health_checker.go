// Package health reports service health derived from the reference
// data snapshot.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/nishkal/triage-api/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore       interfaces.DataStore
	refreshInterval time.Duration
}

// NewHealthChecker creates a health checker. Staleness thresholds are
// derived from the configured refresh cadence.
func NewHealthChecker(dataStore interfaces.DataStore, refreshInterval time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore:       dataStore,
		refreshInterval: refreshInterval,
	}
}

// HealthCheck returns health status for the /health endpoint. The
// service degrades when a snapshot misses two refresh windows and goes
// unhealthy after four, or when no data is loaded at all.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	snapshot := h.dataStore.GetSnapshot()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()

	dataAge := time.Since(lastUpdate)

	switch {
	case len(snapshot.Medications) == 0 || len(snapshot.Pharmacies) == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 4*h.refreshInterval:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 2*h.refreshInterval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":      lastUpdate.Format(time.RFC3339),
		"data_age_minutes": math.Round(dataAge.Minutes()*10) / 10,
		"medications":      len(snapshot.Medications),
		"pharmacies":       len(snapshot.Pharmacies),
		"inventory_rows":   len(snapshot.Inventory),
		"doctors":          len(snapshot.Doctors),
		"is_updating":      isUpdating,
	}

	return status, data, httpStatus
}
