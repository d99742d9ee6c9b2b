package matching

import (
	"math"
	"sort"

	"github.com/nishkal/triage-api/geodist"
	"github.com/nishkal/triage-api/refdata/entities"
)

const (
	// DefaultMaxDistanceKm bounds the search radius when the caller
	// does not provide one.
	DefaultMaxDistanceKm = 100.0
	// DefaultLimit caps the result list when the caller does not
	// provide one.
	DefaultLimit = 3
	// DefaultDeliveryFee is the flat delivery fee policy value.
	DefaultDeliveryFee = 20
)

// Matcher ranks pharmacies with eligible stock by distance.
type Matcher struct {
	index       *Index
	deliveryFee int
}

// NewMatcher builds a matcher over a snapshot. A non-positive
// deliveryFee selects the default policy value.
func NewMatcher(snapshot *entities.Snapshot, deliveryFee int) *Matcher {
	if deliveryFee <= 0 {
		deliveryFee = DefaultDeliveryFee
	}
	return &Matcher{
		index:       NewIndex(snapshot),
		deliveryFee: deliveryFee,
	}
}

// Find returns up to limit offers for itemKey within maxDistanceKm of
// origin, sorted by ascending distance with ties broken by pharmacy id
// so repeated calls yield identical output. An empty result means no
// pharmacy in range, which is a normal outcome, not an error.
func (m *Matcher) Find(itemKey string, origin geodist.Coordinate, maxDistanceKm float64, limit int) ([]entities.PharmacyOffer, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxDistanceKm
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	// First matching row per pharmacy wins, in dataset order.
	seen := make(map[string]bool)
	var offers []entities.PharmacyOffer
	for _, entry := range m.index.Lookup(itemKey) {
		if seen[entry.Pharmacy.ID] {
			continue
		}
		seen[entry.Pharmacy.ID] = true

		distance := geodist.Distance(origin.Lat, origin.Lon, entry.Pharmacy.Lat, entry.Pharmacy.Lon)
		if distance > maxDistanceKm {
			continue
		}

		offers = append(offers, entities.PharmacyOffer{
			PharmacyID:   entry.Pharmacy.ID,
			PharmacyName: entry.Pharmacy.Name,
			SKU:          entry.Inventory.SKU,
			DrugName:     entry.Inventory.DrugName,
			DistanceKm:   round2(distance),
			Price:        entry.Inventory.Price,
			DeliveryFee:  m.deliveryFee,
			AvailableQty: entry.Inventory.Qty,
			EtaMin:       round2(distance * 2),
		})
	}

	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].DistanceKm != offers[j].DistanceKm {
			return offers[i].DistanceKm < offers[j].DistanceKm
		}
		return offers[i].PharmacyID < offers[j].PharmacyID
	})

	if len(offers) > limit {
		offers = offers[:limit]
	}
	return offers, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
