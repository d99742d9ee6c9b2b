// Package matching finds nearby pharmacies with eligible stock. The
// index is built once per snapshot and the matcher ranks candidates by
// great-circle distance with deterministic tie-breaking.
package matching

import (
	"strings"

	"github.com/nishkal/triage-api/refdata/entities"
)

// stockEntry pairs an inventory row with its pharmacy, preserving
// dataset order.
type stockEntry struct {
	Pharmacy  entities.PharmacyRecord
	Inventory entities.InventoryRecord
}

// Index is a read-only lookup over one snapshot's pharmacy and stock
// data, keyed case-insensitively by sku and by drug name.
type Index struct {
	bySKU  map[string][]stockEntry
	byName map[string][]stockEntry
}

// NewIndex builds the lookup structure for a snapshot. Rows whose
// pharmacy is unknown were already rejected at load time.
func NewIndex(snapshot *entities.Snapshot) *Index {
	idx := &Index{
		bySKU:  make(map[string][]stockEntry),
		byName: make(map[string][]stockEntry),
	}

	for _, row := range snapshot.Inventory {
		pharmacy, ok := snapshot.PharmacyByID[row.PharmacyID]
		if !ok {
			continue
		}
		entry := stockEntry{Pharmacy: pharmacy, Inventory: row}
		skuKey := strings.ToLower(row.SKU)
		idx.bySKU[skuKey] = append(idx.bySKU[skuKey], entry)
		nameKey := strings.ToLower(row.DrugName)
		if nameKey != "" && nameKey != skuKey {
			idx.byName[nameKey] = append(idx.byName[nameKey], entry)
		}
	}

	return idx
}

// Lookup returns all in-stock rows matching the given sku or drug
// name, case-insensitively, in dataset order. Rows with qty 0 are not
// eligible.
func (idx *Index) Lookup(skuOrName string) []stockEntry {
	key := strings.ToLower(strings.TrimSpace(skuOrName))
	if key == "" {
		return nil
	}

	entries := idx.bySKU[key]
	if len(entries) == 0 {
		entries = idx.byName[key]
	}

	inStock := make([]stockEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Inventory.Qty > 0 {
			inStock = append(inStock, entry)
		}
	}
	return inStock
}
