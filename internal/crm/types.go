package crm

// ContactRequest is the CRM contact upsert payload. Pet details travel as
// custom fields on the owner's contact record.
type ContactRequest struct {
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName,omitempty"`
	LocationID  string     `json:"locationId,omitempty"`
	CustomField ContactPet `json:"customField"`
}

// ContactPet carries the pet profile on the contact record.
type ContactPet struct {
	PetName    string `json:"pet_name"`
	PetSpecies string `json:"pet_species"`
	PetBreed   string `json:"pet_breed"`
	PetAge     int    `json:"pet_age"`
	PetID      string `json:"pet_id"`
}

// Contact is the CRM's contact representation.
type Contact struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AppointmentRequest is the CRM appointment payload.
type AppointmentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	ContactID   string `json:"contactId"`
}

// CRMAppointment is the CRM's appointment representation.
type CRMAppointment struct {
	ID string `json:"id"`
}
