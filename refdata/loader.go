// Package refdata loads the flat reference datasets (medication
// catalog, pharmacy directory, inventory snapshot, doctor directory)
// from a data directory and builds one immutable entities.Snapshot.
// A load is all-or-nothing: any integrity violation fails the whole
// load so the previous snapshot stays in use.
package refdata

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/nishkal/triage-api/logging"
	"github.com/nishkal/triage-api/refdata/entities"
)

const (
	medicationsFile = "meds.csv"
	pharmaciesFile  = "pharmacies.json"
	inventoryFile   = "inventory.csv"
	doctorsFile     = "doctors.csv"
)

// IntegrityError marks a reference dataset that cannot be served:
// duplicate keys, dangling foreign keys, or malformed rows. The load
// that produced it must be discarded.
type IntegrityError struct {
	Dataset string
	Reason  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity error in %s: %s", e.Dataset, e.Reason)
}

// Loader reads reference datasets from a single directory.
type Loader struct {
	dataDir string
}

// NewLoader creates a loader rooted at dataDir.
func NewLoader(dataDir string) *Loader {
	return &Loader{dataDir: dataDir}
}

// Load reads and validates all four datasets and returns a complete
// snapshot with prebuilt lookup maps.
func (l *Loader) Load() (*entities.Snapshot, error) {
	start := time.Now()

	medications, err := l.loadMedications()
	if err != nil {
		return nil, err
	}

	pharmacies, err := l.loadPharmacies()
	if err != nil {
		return nil, err
	}

	inventory, err := l.loadInventory()
	if err != nil {
		return nil, err
	}

	doctors, err := l.loadDoctors()
	if err != nil {
		return nil, err
	}

	medicationBySKU := make(map[string]entities.MedicationRecord, len(medications))
	for _, med := range medications {
		key := strings.ToLower(med.SKU)
		if _, exists := medicationBySKU[key]; exists {
			return nil, &IntegrityError{Dataset: medicationsFile, Reason: fmt.Sprintf("duplicate sku %q", med.SKU)}
		}
		medicationBySKU[key] = med
	}

	pharmacyByID := make(map[string]entities.PharmacyRecord, len(pharmacies))
	for _, pharm := range pharmacies {
		if _, exists := pharmacyByID[pharm.ID]; exists {
			return nil, &IntegrityError{Dataset: pharmaciesFile, Reason: fmt.Sprintf("duplicate pharmacy id %q", pharm.ID)}
		}
		pharmacyByID[pharm.ID] = pharm
	}

	seenPairs := make(map[string]bool, len(inventory))
	for _, row := range inventory {
		if _, exists := pharmacyByID[row.PharmacyID]; !exists {
			return nil, &IntegrityError{
				Dataset: inventoryFile,
				Reason:  fmt.Sprintf("row for sku %q references unknown pharmacy %q", row.SKU, row.PharmacyID),
			}
		}
		pair := row.PharmacyID + "\x00" + strings.ToLower(row.SKU)
		if seenPairs[pair] {
			return nil, &IntegrityError{
				Dataset: inventoryFile,
				Reason:  fmt.Sprintf("duplicate (pharmacy_id, sku) pair (%q, %q)", row.PharmacyID, row.SKU),
			}
		}
		seenPairs[pair] = true
	}

	logging.Info("Reference data loaded",
		"medications", len(medications),
		"pharmacies", len(pharmacies),
		"inventory_rows", len(inventory),
		"doctors", len(doctors),
		"duration", time.Since(start).String(),
	)

	return &entities.Snapshot{
		Medications:     medications,
		Pharmacies:      pharmacies,
		Inventory:       inventory,
		Doctors:         doctors,
		MedicationBySKU: medicationBySKU,
		PharmacyByID:    pharmacyByID,
		LoadedAt:        time.Now(),
	}, nil
}

// readFile reads a dataset file and normalizes it to UTF-8. Some
// exports arrive as ISO-8859-1, so invalid UTF-8 content is passed
// through the charmap decoder first.
func (l *Loader) readFile(name string) ([]byte, error) {
	path := filepath.Clean(filepath.Join(l.dataDir, name))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if !utf8.Valid(raw) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s as ISO-8859-1: %w", name, err)
		}
		logging.Warn("Dataset was not valid UTF-8, decoded as ISO-8859-1", "file", name)
		raw = decoded
	}

	return raw, nil
}

// readCSV parses a headed CSV dataset and checks the column count of
// every row against the header.
func (l *Loader) readCSV(name string, minColumns int) ([][]string, error) {
	raw, err := l.readFile(name)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &IntegrityError{Dataset: name, Reason: fmt.Sprintf("malformed csv: %v", err)}
	}
	if len(records) < 1 {
		return nil, &IntegrityError{Dataset: name, Reason: "missing header row"}
	}
	if len(records[0]) < minColumns {
		return nil, &IntegrityError{
			Dataset: name,
			Reason:  fmt.Sprintf("expected at least %d columns, header has %d", minColumns, len(records[0])),
		}
	}

	return records[1:], nil
}

func (l *Loader) loadMedications() ([]entities.MedicationRecord, error) {
	rows, err := l.readCSV(medicationsFile, 7)
	if err != nil {
		return nil, err
	}

	medications := make([]entities.MedicationRecord, 0, len(rows))
	for i, row := range rows {
		ageMin, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil || ageMin < 0 {
			return nil, &IntegrityError{
				Dataset: medicationsFile,
				Reason:  fmt.Sprintf("row %d: invalid age_min %q", i+2, row[3]),
			}
		}

		med := entities.MedicationRecord{
			SKU:        strings.TrimSpace(row[0]),
			DrugName:   strings.TrimSpace(row[1]),
			Indication: strings.TrimSpace(row[2]),
			AgeMin:     ageMin,
			Dose:       strings.TrimSpace(row[5]),
			Freq:       strings.TrimSpace(row[6]),
		}
		if med.SKU == "" || med.DrugName == "" || med.Indication == "" {
			return nil, &IntegrityError{
				Dataset: medicationsFile,
				Reason:  fmt.Sprintf("row %d: missing sku, drug_name or indication", i+2),
			}
		}

		// contra_allergy_keywords is a ;-delimited list, possibly empty
		for _, keyword := range strings.Split(row[4], ";") {
			keyword = strings.TrimSpace(keyword)
			if keyword != "" {
				med.ContraAllergyKeywords = append(med.ContraAllergyKeywords, keyword)
			}
		}

		medications = append(medications, med)
	}

	return medications, nil
}

func (l *Loader) loadPharmacies() ([]entities.PharmacyRecord, error) {
	raw, err := l.readFile(pharmaciesFile)
	if err != nil {
		return nil, err
	}

	var pharmacies []entities.PharmacyRecord
	if err := json.Unmarshal(raw, &pharmacies); err != nil {
		return nil, &IntegrityError{Dataset: pharmaciesFile, Reason: fmt.Sprintf("malformed json: %v", err)}
	}

	for i, pharm := range pharmacies {
		if pharm.ID == "" || pharm.Name == "" {
			return nil, &IntegrityError{
				Dataset: pharmaciesFile,
				Reason:  fmt.Sprintf("entry %d: missing id or name", i),
			}
		}
		if pharm.Lat < -90 || pharm.Lat > 90 || pharm.Lon < -180 || pharm.Lon > 180 {
			return nil, &IntegrityError{
				Dataset: pharmaciesFile,
				Reason:  fmt.Sprintf("pharmacy %q: coordinates out of range (%v, %v)", pharm.ID, pharm.Lat, pharm.Lon),
			}
		}
	}

	return pharmacies, nil
}

func (l *Loader) loadInventory() ([]entities.InventoryRecord, error) {
	rows, err := l.readCSV(inventoryFile, 5)
	if err != nil {
		return nil, err
	}

	inventory := make([]entities.InventoryRecord, 0, len(rows))
	for i, row := range rows {
		price, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil || price < 0 {
			return nil, &IntegrityError{
				Dataset: inventoryFile,
				Reason:  fmt.Sprintf("row %d: invalid price %q", i+2, row[3]),
			}
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil || qty < 0 {
			return nil, &IntegrityError{
				Dataset: inventoryFile,
				Reason:  fmt.Sprintf("row %d: invalid qty %q", i+2, row[4]),
			}
		}

		record := entities.InventoryRecord{
			PharmacyID: strings.TrimSpace(row[0]),
			SKU:        strings.TrimSpace(row[1]),
			DrugName:   strings.TrimSpace(row[2]),
			Price:      price,
			Qty:        qty,
		}
		if record.PharmacyID == "" || record.SKU == "" {
			return nil, &IntegrityError{
				Dataset: inventoryFile,
				Reason:  fmt.Sprintf("row %d: missing pharmacy_id or sku", i+2),
			}
		}

		inventory = append(inventory, record)
	}

	return inventory, nil
}

func (l *Loader) loadDoctors() ([]entities.DoctorRecord, error) {
	rows, err := l.readCSV(doctorsFile, 3)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// The doctor directory is optional; tele-consult is simply
			// unavailable without it.
			logging.Warn("Doctor directory not found, tele-consult disabled")
			return nil, nil
		}
		return nil, err
	}

	doctors := make([]entities.DoctorRecord, 0, len(rows))
	for i, row := range rows {
		doctor := entities.DoctorRecord{
			ID:        strings.TrimSpace(row[0]),
			Name:      strings.TrimSpace(row[1]),
			Specialty: strings.TrimSpace(row[2]),
		}
		if doctor.ID == "" || doctor.Name == "" {
			return nil, &IntegrityError{
				Dataset: doctorsFile,
				Reason:  fmt.Sprintf("row %d: missing doctor_id or name", i+2),
			}
		}
		doctors = append(doctors, doctor)
	}

	return doctors, nil
}
