// Package entities defines the typed records the triage pipeline works
// on: the reference datasets (medications, pharmacies, inventory,
// doctors), the patient input, and the derived decision outputs.
package entities

import "time"

// Snapshot is an immutable point-in-time copy of all reference data.
// It is built in one piece by the loader and swapped atomically by the
// data container, so a reader can never observe pharmacies from one
// load and inventory from another.
type Snapshot struct {
	Medications []MedicationRecord
	Pharmacies  []PharmacyRecord
	Inventory   []InventoryRecord
	Doctors     []DoctorRecord

	MedicationBySKU map[string]MedicationRecord
	PharmacyByID    map[string]PharmacyRecord

	LoadedAt time.Time
}

// EmptySnapshot returns a usable zero snapshot for process start-up,
// before the first load has completed.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		MedicationBySKU: make(map[string]MedicationRecord),
		PharmacyByID:    make(map[string]PharmacyRecord),
	}
}
