package entities

// PharmacyRecord is one entry of the pharmacy directory.
type PharmacyRecord struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// InventoryRecord is one row of the stock snapshot. The
// (PharmacyID, SKU) pair is unique within a snapshot.
type InventoryRecord struct {
	PharmacyID string `json:"pharmacy_id"`
	SKU        string `json:"sku"`
	DrugName   string `json:"drug_name"`
	Price      int    `json:"price"`
	Qty        int    `json:"qty"`
}

// PharmacyOffer is a ranked match result. Offers are recomputed per
// query and never persisted.
type PharmacyOffer struct {
	PharmacyID   string  `json:"pharmacy_id"`
	PharmacyName string  `json:"pharmacy_name"`
	SKU          string  `json:"sku"`
	DrugName     string  `json:"drug_name"`
	DistanceKm   float64 `json:"distance_km"`
	Price        int     `json:"price"`
	DeliveryFee  int     `json:"delivery_fee"`
	AvailableQty int     `json:"available_qty"`
	EtaMin       float64 `json:"eta_min"`
}
