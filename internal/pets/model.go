package pets

import (
	"strings"
	"time"
)

// Species enumerates the patient species the clinic records.
type Species string

const (
	SpeciesDog   Species = "Dog"
	SpeciesCat   Species = "Cat"
	SpeciesBird  Species = "Bird"
	SpeciesOther Species = "Other"
)

// ParseSpecies normalizes free input to a supported species, defaulting to
// Other.
func ParseSpecies(raw string) Species {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dog":
		return SpeciesDog
	case "cat":
		return SpeciesCat
	case "bird":
		return SpeciesBird
	default:
		return SpeciesOther
	}
}

// Pet is a clinic patient. The QR code token defaults to the pet id.
type Pet struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Species      Species   `json:"species"`
	Breed        string    `json:"breed"`
	AgeYears     int       `json:"age"`
	WeightLbs    float64   `json:"weight"`
	OwnerName    string    `json:"owner_name"`
	OwnerContact string    `json:"owner_contact"`
	OwnerEmail   string    `json:"owner_email,omitempty"`
	LastVisit    time.Time `json:"last_visit"`
	ProfileImage string    `json:"profile_img,omitempty"`
	QRCode       string    `json:"qr_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MedicalRecord is one visit entry. Immutable once created.
type MedicalRecord struct {
	ID           string    `json:"id"`
	PetID        string    `json:"pet_id"`
	Date         time.Time `json:"date"`
	Description  string    `json:"description"`
	Treatment    string    `json:"treatment"`
	Medication   string    `json:"medication"`
	Veterinarian string    `json:"veterinarian"`
	FollowUp     string    `json:"follow_up,omitempty"`
	ImageKey     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// VaccineRecord tracks one administered vaccine. Immutable once created.
type VaccineRecord struct {
	ID           string    `json:"id"`
	PetID        string    `json:"pet_id"`
	Date         time.Time `json:"date"`
	VaccineName  string    `json:"vaccine_name"`
	Manufacturer string    `json:"manufacturer"`
	LotNumber    string    `json:"lot_number"`
	Expiration   time.Time `json:"expiration_date"`
	Veterinarian string    `json:"veterinarian"`
	NextDue      time.Time `json:"next_due_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// Note is a free-form staff note. Private notes are hidden from owners.
type Note struct {
	ID        string    `json:"id"`
	PetID     string    `json:"pet_id"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Private   bool      `json:"private"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePetRequest is the request body for registering a pet.
type CreatePetRequest struct {
	Name         string  `json:"name"`
	Species      string  `json:"species"`
	Breed        string  `json:"breed"`
	AgeYears     int     `json:"age"`
	WeightLbs    float64 `json:"weight"`
	OwnerName    string  `json:"owner_name"`
	OwnerContact string  `json:"owner_contact"`
	OwnerEmail   string  `json:"owner_email"`
	ProfileImage string  `json:"profile_img"`
}

// Validate checks required fields.
func (r *CreatePetRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if r.AgeYears < 0 {
		return ErrInvalidAge
	}
	if r.WeightLbs < 0 {
		return ErrInvalidWeight
	}
	if strings.TrimSpace(r.OwnerName) == "" {
		return ErrMissingOwner
	}
	return nil
}
