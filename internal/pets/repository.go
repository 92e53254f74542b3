package pets

import (
	"context"
	"sort"
	"sync"
)

// Repository defines pet and record persistence. Record sequences are
// append-only and returned most recent first; pets are never hard-deleted.
type Repository interface {
	Create(ctx context.Context, pet *Pet) error
	Update(ctx context.Context, pet *Pet) error
	GetByID(ctx context.Context, id string) (*Pet, error)
	GetByQRCode(ctx context.Context, code string) (*Pet, error)
	List(ctx context.Context) ([]*Pet, error)
	ListByOwnerEmail(ctx context.Context, email string) ([]*Pet, error)
	Count(ctx context.Context) (int, error)

	AddMedicalRecord(ctx context.Context, rec *MedicalRecord) error
	ListMedicalRecords(ctx context.Context, petID string) ([]*MedicalRecord, error)
	AddVaccineRecord(ctx context.Context, rec *VaccineRecord) error
	ListVaccineRecords(ctx context.Context, petID string) ([]*VaccineRecord, error)
	AddNote(ctx context.Context, note *Note) error
	ListNotes(ctx context.Context, petID string) ([]*Note, error)
}

// InMemoryRepository keeps everything in maps. Used for development and tests.
// Mutating calls store copies and reads return copies, so callers never share
// aliased state.
type InMemoryRepository struct {
	mu       sync.RWMutex
	pets     map[string]*Pet
	medical  map[string][]*MedicalRecord
	vaccines map[string][]*VaccineRecord
	notes    map[string][]*Note
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		pets:     make(map[string]*Pet),
		medical:  make(map[string][]*MedicalRecord),
		vaccines: make(map[string][]*VaccineRecord),
		notes:    make(map[string][]*Note),
	}
}

func (r *InMemoryRepository) Create(_ context.Context, pet *Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pet
	r.pets[pet.ID] = &cp
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, pet *Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[pet.ID]; !ok {
		return ErrPetNotFound
	}
	cp := *pet
	r.pets[pet.ID] = &cp
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pet, ok := r.pets[id]
	if !ok {
		return nil, ErrPetNotFound
	}
	cp := *pet
	return &cp, nil
}

func (r *InMemoryRepository) GetByQRCode(_ context.Context, code string) (*Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pet := range r.pets {
		if pet.QRCode == code {
			cp := *pet
			return &cp, nil
		}
	}
	return nil, ErrPetNotFound
}

func (r *InMemoryRepository) List(_ context.Context) ([]*Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Pet, 0, len(r.pets))
	for _, pet := range r.pets {
		cp := *pet
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) ListByOwnerEmail(_ context.Context, email string) ([]*Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Pet
	for _, pet := range r.pets {
		if pet.OwnerEmail == email {
			cp := *pet
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pets), nil
}

func (r *InMemoryRepository) AddMedicalRecord(_ context.Context, rec *MedicalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[rec.PetID]; !ok {
		return ErrPetNotFound
	}
	cp := *rec
	// Newest entries go in front.
	r.medical[rec.PetID] = append([]*MedicalRecord{&cp}, r.medical[rec.PetID]...)
	return nil
}

func (r *InMemoryRepository) ListMedicalRecords(_ context.Context, petID string) ([]*MedicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs := r.medical[petID]
	out := make([]*MedicalRecord, 0, len(recs))
	for _, rec := range recs {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *InMemoryRepository) AddVaccineRecord(_ context.Context, rec *VaccineRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[rec.PetID]; !ok {
		return ErrPetNotFound
	}
	cp := *rec
	r.vaccines[rec.PetID] = append([]*VaccineRecord{&cp}, r.vaccines[rec.PetID]...)
	return nil
}

func (r *InMemoryRepository) ListVaccineRecords(_ context.Context, petID string) ([]*VaccineRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs := r.vaccines[petID]
	out := make([]*VaccineRecord, 0, len(recs))
	for _, rec := range recs {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *InMemoryRepository) AddNote(_ context.Context, note *Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[note.PetID]; !ok {
		return ErrPetNotFound
	}
	cp := *note
	r.notes[note.PetID] = append([]*Note{&cp}, r.notes[note.PetID]...)
	return nil
}

func (r *InMemoryRepository) ListNotes(_ context.Context, petID string) ([]*Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs := r.notes[petID]
	out := make([]*Note, 0, len(recs))
	for _, rec := range recs {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}
