package events

import "time"

// Event type names stored in the outbox.
const (
	TypeAppointmentBooked = "appointment.booked.v1"
	TypePetUpserted       = "pet.upserted.v1"
)

// AppointmentBookedV1 is emitted after a booking commits. The sync worker
// mirrors it into the CRM as a contact upsert plus an appointment.
type AppointmentBookedV1 struct {
	EventID         string    `json:"event_id"`
	AppointmentID   string    `json:"appointment_id"`
	PetID           string    `json:"pet_id"`
	PetName         string    `json:"pet_name"`
	OwnerName       string    `json:"owner_name"`
	RequesterEmail  string    `json:"requester_email"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason,omitempty"`
	BookedAt        time.Time `json:"booked_at"`
}

// PetUpsertedV1 is emitted when staff ask for a pet's owner contact to be
// pushed to the CRM.
type PetUpsertedV1 struct {
	EventID    string    `json:"event_id"`
	PetID      string    `json:"pet_id"`
	PetName    string    `json:"pet_name"`
	Species    string    `json:"species"`
	Breed      string    `json:"breed"`
	AgeYears   int       `json:"age_years"`
	OwnerName  string    `json:"owner_name"`
	OwnerEmail string    `json:"owner_email"`
	OwnerPhone string    `json:"owner_phone,omitempty"`
	UpsertedAt time.Time `json:"upserted_at"`
}
