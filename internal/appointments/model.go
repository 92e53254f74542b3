package appointments

import "time"

// DateLayout is the wire format for appointment days.
const DateLayout = "2006-01-02"

// TimeLayout is the wire format for slot start times, 24-hour clock.
const TimeLayout = "15:04"

// Appointment is one booked visit. Date is the clinic day at midnight UTC;
// StartTime is the slot label within that day.
type Appointment struct {
	ID               string    `json:"id"`
	PetID            string    `json:"pet_id"`
	PetName          string    `json:"pet_name"`
	OwnerName        string    `json:"owner_name"`
	RequesterEmail   string    `json:"requester_email"`
	Date             time.Time `json:"date"`
	StartTime        string    `json:"start_time"`
	DurationMinutes  int       `json:"duration_minutes"`
	Reason           string    `json:"reason,omitempty"`
	Status           string    `json:"status"`
	CRMAppointmentID string    `json:"crm_appointment_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

// BookingRequest is the request body for booking an appointment.
type BookingRequest struct {
	PetID           string `json:"pet_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	RequesterEmail  string `json:"requester_email"`
	Reason          string `json:"reason"`
}

// Slot is one candidate start time on the day's grid.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
