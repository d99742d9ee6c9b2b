package refdata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validMeds = `sku,drug_name,indication,age_min,contra_allergy_keywords,dose,freq
MED001,Amoxicillin 500mg,pneumonia,12,penicillin;amoxicillin,500 mg,3x daily for 7 days
MED002,Paracetamol 650mg,covid_suspect,6,,650 mg,every 6 hours as needed
`

const validPharmacies = `[
  {"id": "PH001", "name": "Colaba Chemists", "lat": 18.9151, "lon": 72.8258},
  {"id": "PH002", "name": "Fort Medical Stores", "lat": 18.9343, "lon": 72.8356}
]`

const validInventory = `pharmacy_id,sku,drug_name,price,qty
PH001,MED001,Amoxicillin 500mg,120,40
PH002,MED001,Amoxicillin 500mg,115,25
PH002,MED002,Paracetamol 650mg,30,200
`

const validDoctors = `doctor_id,name,specialty
DOC001,Dr. Asha Menon,Pulmonology
DOC002,Dr. Rohan Kulkarni,General Medicine
`

// writeDataDir lays out a complete data directory, with optional
// overrides per file. An empty override string keeps the valid default;
// the literal "-" removes the file.
func writeDataDir(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	defaults := map[string]string{
		"meds.csv":        validMeds,
		"pharmacies.json": validPharmacies,
		"inventory.csv":   validInventory,
		"doctors.csv":     validDoctors,
	}

	for name, content := range defaults {
		if override, ok := overrides[name]; ok {
			if override == "-" {
				continue
			}
			content = override
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	return dir
}

func TestLoad(t *testing.T) {
	loader := NewLoader(writeDataDir(t, nil))

	snapshot, err := loader.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(snapshot.Medications) != 2 {
		t.Errorf("Expected 2 medications, got %d", len(snapshot.Medications))
	}
	if len(snapshot.Pharmacies) != 2 {
		t.Errorf("Expected 2 pharmacies, got %d", len(snapshot.Pharmacies))
	}
	if len(snapshot.Inventory) != 3 {
		t.Errorf("Expected 3 inventory rows, got %d", len(snapshot.Inventory))
	}
	if len(snapshot.Doctors) != 2 {
		t.Errorf("Expected 2 doctors, got %d", len(snapshot.Doctors))
	}

	med, ok := snapshot.MedicationBySKU["med001"]
	if !ok {
		t.Fatal("Expected med001 in the sku lookup map")
	}
	if med.AgeMin != 12 {
		t.Errorf("Expected age_min 12, got %d", med.AgeMin)
	}
	if len(med.ContraAllergyKeywords) != 2 {
		t.Errorf("Expected 2 contra keywords, got %v", med.ContraAllergyKeywords)
	}

	if _, ok := snapshot.PharmacyByID["PH002"]; !ok {
		t.Error("Expected PH002 in the pharmacy lookup map")
	}
	if snapshot.LoadedAt.IsZero() {
		t.Error("Expected LoadedAt to be set")
	}
}

func TestLoadFailsClosed(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		wantIn    string
	}{
		{
			name: "duplicate sku",
			overrides: map[string]string{
				"meds.csv": validMeds + "MED001,Duplicate,pneumonia,0,,1 mg,daily\n",
			},
			wantIn: "meds.csv",
		},
		{
			name: "negative age_min",
			overrides: map[string]string{
				"meds.csv": "sku,drug_name,indication,age_min,contra_allergy_keywords,dose,freq\nMED001,Amoxicillin,pneumonia,-5,,500 mg,daily\n",
			},
			wantIn: "meds.csv",
		},
		{
			name: "missing sku",
			overrides: map[string]string{
				"meds.csv": "sku,drug_name,indication,age_min,contra_allergy_keywords,dose,freq\n,Amoxicillin,pneumonia,12,,500 mg,daily\n",
			},
			wantIn: "meds.csv",
		},
		{
			name: "duplicate pharmacy id",
			overrides: map[string]string{
				"pharmacies.json": `[
  {"id": "PH001", "name": "A", "lat": 18.9, "lon": 72.8},
  {"id": "PH001", "name": "B", "lat": 18.9, "lon": 72.8}
]`,
				"inventory.csv": "pharmacy_id,sku,drug_name,price,qty\nPH001,MED001,Amoxicillin 500mg,120,40\n",
			},
			wantIn: "pharmacies.json",
		},
		{
			name: "pharmacy coordinates out of range",
			overrides: map[string]string{
				"pharmacies.json": `[{"id": "PH001", "name": "A", "lat": 99.0, "lon": 72.8}]`,
				"inventory.csv":   "pharmacy_id,sku,drug_name,price,qty\nPH001,MED001,Amoxicillin 500mg,120,40\n",
			},
			wantIn: "pharmacies.json",
		},
		{
			name: "inventory references unknown pharmacy",
			overrides: map[string]string{
				"inventory.csv": validInventory + "PH999,MED001,Amoxicillin 500mg,100,5\n",
			},
			wantIn: "inventory.csv",
		},
		{
			name: "duplicate inventory pair",
			overrides: map[string]string{
				"inventory.csv": validInventory + "PH001,MED001,Amoxicillin 500mg,130,10\n",
			},
			wantIn: "inventory.csv",
		},
		{
			name: "negative qty",
			overrides: map[string]string{
				"inventory.csv": "pharmacy_id,sku,drug_name,price,qty\nPH001,MED001,Amoxicillin 500mg,120,-1\n",
			},
			wantIn: "inventory.csv",
		},
		{
			name: "malformed inventory csv",
			overrides: map[string]string{
				"inventory.csv": "pharmacy_id,sku,drug_name,price,qty\nPH001,\"MED001,120\n",
			},
			wantIn: "inventory.csv",
		},
		{
			name: "malformed pharmacies json",
			overrides: map[string]string{
				"pharmacies.json": "{not json",
			},
			wantIn: "pharmacies.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(writeDataDir(t, tt.overrides))

			snapshot, err := loader.Load()
			if err == nil {
				t.Fatal("Expected an integrity error, got nil")
			}
			if snapshot != nil {
				t.Error("A failed load must not return a partial snapshot")
			}

			var integrityErr *IntegrityError
			if !errors.As(err, &integrityErr) {
				t.Fatalf("Expected IntegrityError, got %T: %v", err, err)
			}
			if integrityErr.Dataset != tt.wantIn {
				t.Errorf("Expected error in %s, got %s", tt.wantIn, integrityErr.Dataset)
			}
		})
	}
}

func TestLoadMissingMedicationsFile(t *testing.T) {
	loader := NewLoader(writeDataDir(t, map[string]string{"meds.csv": "-"}))

	if _, err := loader.Load(); err == nil {
		t.Fatal("Expected an error for a missing medication catalog")
	}
}

func TestLoadMissingDoctorsFileIsOptional(t *testing.T) {
	loader := NewLoader(writeDataDir(t, map[string]string{"doctors.csv": "-"}))

	snapshot, err := loader.Load()
	if err != nil {
		t.Fatalf("Doctor directory is optional, got error: %v", err)
	}
	if len(snapshot.Doctors) != 0 {
		t.Errorf("Expected no doctors, got %d", len(snapshot.Doctors))
	}
}

func TestLoadDecodesLatin1(t *testing.T) {
	// "Théophylline" with an ISO-8859-1 encoded é (0xE9)
	meds := "sku,drug_name,indication,age_min,contra_allergy_keywords,dose,freq\n" +
		"MED001,Th\xe9ophylline,pneumonia,12,,200 mg,2x daily\n"
	loader := NewLoader(writeDataDir(t, map[string]string{
		"meds.csv":      meds,
		"inventory.csv": "pharmacy_id,sku,drug_name,price,qty\nPH001,MED001,Theophylline,150,10\n",
	}))

	snapshot, err := loader.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !strings.Contains(snapshot.Medications[0].DrugName, "é") {
		t.Errorf("Expected drug name decoded to UTF-8, got %q", snapshot.Medications[0].DrugName)
	}
}
