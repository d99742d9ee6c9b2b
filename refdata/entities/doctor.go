package entities

// DoctorRecord is one entry of the tele-consult directory.
type DoctorRecord struct {
	ID        string `json:"doctor_id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}
