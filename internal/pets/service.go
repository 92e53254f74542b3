package pets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vetsuite/clinic-crm/internal/identity"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

// Service owns pet lifecycle and role-scoped record access.
type Service struct {
	repo   Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewService constructs a pets service.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("pets: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create registers a new pet. The QR token defaults to the pet id.
func (s *Service) Create(ctx context.Context, req *CreatePetRequest) (*Pet, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	pet := &Pet{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Species:      ParseSpecies(req.Species),
		Breed:        strings.TrimSpace(req.Breed),
		AgeYears:     req.AgeYears,
		WeightLbs:    req.WeightLbs,
		OwnerName:    strings.TrimSpace(req.OwnerName),
		OwnerContact: strings.TrimSpace(req.OwnerContact),
		OwnerEmail:   strings.TrimSpace(req.OwnerEmail),
		ProfileImage: req.ProfileImage,
		LastVisit:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	pet.QRCode = pet.ID

	if err := s.repo.Create(ctx, pet); err != nil {
		return nil, err
	}
	s.logger.Info("pet registered", "pet_id", pet.ID, "name", pet.Name, "species", pet.Species)
	return pet, nil
}

// Update applies staff edits to an existing pet.
func (s *Service) Update(ctx context.Context, id string, req *CreatePetRequest) (*Pet, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	pet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pet.Name = strings.TrimSpace(req.Name)
	pet.Species = ParseSpecies(req.Species)
	pet.Breed = strings.TrimSpace(req.Breed)
	pet.AgeYears = req.AgeYears
	pet.WeightLbs = req.WeightLbs
	pet.OwnerName = strings.TrimSpace(req.OwnerName)
	pet.OwnerContact = strings.TrimSpace(req.OwnerContact)
	pet.OwnerEmail = strings.TrimSpace(req.OwnerEmail)
	if req.ProfileImage != "" {
		pet.ProfileImage = req.ProfileImage
	}
	pet.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

// GetForCaller fetches a pet, enforcing owner scoping: an owner may only view
// pets in their owned-pet-id set.
func (s *Service) GetForCaller(ctx context.Context, caller identity.Identity, petID string) (*Pet, error) {
	if !caller.IsStaff() && !caller.Owns(petID) {
		return nil, ErrNotAuthorized
	}
	return s.repo.GetByID(ctx, petID)
}

// GetByQRCode resolves a pet from a scanned QR token.
func (s *Service) GetByQRCode(ctx context.Context, code string) (*Pet, error) {
	return s.repo.GetByQRCode(ctx, code)
}

// ListForCaller returns the pets the caller may see: all for staff, the
// owned set for owners.
func (s *Service) ListForCaller(ctx context.Context, caller identity.Identity) ([]*Pet, error) {
	if caller.IsStaff() {
		return s.repo.List(ctx)
	}
	return s.repo.ListByOwnerEmail(ctx, caller.Email)
}

// SetProfileImage records the stored image key on the pet.
func (s *Service) SetProfileImage(ctx context.Context, id, key string) (*Pet, error) {
	pet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pet.ProfileImage = key
	if err := s.repo.Update(ctx, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

// Count reports the number of registered pets.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// AddMedicalRecord appends an immutable visit entry and refreshes last-visit.
func (s *Service) AddMedicalRecord(ctx context.Context, petID string, rec *MedicalRecord) (*MedicalRecord, error) {
	pet, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return nil, err
	}

	rec.ID = uuid.NewString()
	rec.PetID = petID
	if rec.Date.IsZero() {
		rec.Date = s.now()
	}
	rec.CreatedAt = s.now()

	if err := s.repo.AddMedicalRecord(ctx, rec); err != nil {
		return nil, err
	}

	pet.LastVisit = rec.Date
	pet.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, pet); err != nil {
		s.logger.Error("last-visit refresh failed", "error", err, "pet_id", petID)
	}
	return rec, nil
}

// AddVaccineRecord appends an immutable vaccine entry.
func (s *Service) AddVaccineRecord(ctx context.Context, petID string, rec *VaccineRecord) (*VaccineRecord, error) {
	if _, err := s.repo.GetByID(ctx, petID); err != nil {
		return nil, err
	}

	rec.ID = uuid.NewString()
	rec.PetID = petID
	if rec.Date.IsZero() {
		rec.Date = s.now()
	}
	rec.CreatedAt = s.now()

	if err := s.repo.AddVaccineRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AddNote appends a staff note.
func (s *Service) AddNote(ctx context.Context, petID string, note *Note) (*Note, error) {
	if _, err := s.repo.GetByID(ctx, petID); err != nil {
		return nil, err
	}

	note.ID = uuid.NewString()
	note.PetID = petID
	if note.Date.IsZero() {
		note.Date = s.now()
	}
	note.CreatedAt = s.now()

	if err := s.repo.AddNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// MedicalRecords returns a pet's medical history, most recent first.
func (s *Service) MedicalRecords(ctx context.Context, caller identity.Identity, petID string) ([]*MedicalRecord, error) {
	if !caller.IsStaff() && !caller.Owns(petID) {
		return nil, ErrNotAuthorized
	}
	return s.repo.ListMedicalRecords(ctx, petID)
}

// VaccineRecords returns a pet's vaccine history, most recent first.
func (s *Service) VaccineRecords(ctx context.Context, caller identity.Identity, petID string) ([]*VaccineRecord, error) {
	if !caller.IsStaff() && !caller.Owns(petID) {
		return nil, ErrNotAuthorized
	}
	return s.repo.ListVaccineRecords(ctx, petID)
}

// VisibleNotes returns a pet's notes filtered by role: owners never see
// private notes.
func (s *Service) VisibleNotes(ctx context.Context, caller identity.Identity, petID string) ([]*Note, error) {
	if !caller.IsStaff() && !caller.Owns(petID) {
		return nil, ErrNotAuthorized
	}
	notes, err := s.repo.ListNotes(ctx, petID)
	if err != nil {
		return nil, err
	}
	return FilterNotes(caller.Role, notes), nil
}

// FilterNotes applies the private-note visibility rule for a role.
func FilterNotes(role identity.Role, notes []*Note) []*Note {
	if role == identity.RoleVeterinary {
		return notes
	}
	out := make([]*Note, 0, len(notes))
	for _, note := range notes {
		if !note.Private {
			out = append(out, note)
		}
	}
	return out
}
