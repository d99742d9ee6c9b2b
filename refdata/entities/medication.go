package entities

// MedicationRecord is one row of the OTC medication catalog.
type MedicationRecord struct {
	SKU                   string   `json:"sku"`
	DrugName              string   `json:"drug_name"`
	Indication            string   `json:"indication"`
	AgeMin                int      `json:"age_min"`
	ContraAllergyKeywords []string `json:"contra_allergy_keywords"`
	Dose                  string   `json:"dose"`
	Freq                  string   `json:"freq"`
}

// MedicationOption is a catalog row annotated for one patient.
// Contraindicated options are surfaced with the flag set, never dropped,
// so the warning is not lost.
type MedicationOption struct {
	SKU             string   `json:"sku"`
	DrugName        string   `json:"drug_name"`
	Dose            string   `json:"dose"`
	Freq            string   `json:"freq"`
	Contraindicated bool     `json:"contraindicated"`
	Warnings        []string `json:"warnings"`
}
