package appointments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository stores appointments.
type Repository interface {
	Insert(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	ListByDate(ctx context.Context, day time.Time) ([]*Appointment, error)
	ListByRequester(ctx context.Context, email string) ([]*Appointment, error)
	ListRecent(ctx context.Context, limit int) ([]*Appointment, error)
	CountByDate(ctx context.Context, day time.Time) (int, error)
	SetCRMAppointmentID(ctx context.Context, id, crmID string) error
}

// InMemoryRepository is a mutex-guarded map store for tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Appointment
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: map[string]*Appointment{}}
}

func (r *InMemoryRepository) Insert(_ context.Context, appt *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *appt
	r.items[appt.ID] = &copied
	return nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	appt, ok := r.items[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := *appt
	return &copied, nil
}

func (r *InMemoryRepository) ListByDate(_ context.Context, day time.Time) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Appointment
	for _, appt := range r.items {
		if sameDay(appt.Date, day) {
			copied := *appt
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *InMemoryRepository) ListByRequester(_ context.Context, email string) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Appointment
	for _, appt := range r.items {
		if appt.RequesterEmail == email {
			copied := *appt
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *InMemoryRepository) ListRecent(_ context.Context, limit int) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Appointment, 0, len(r.items))
	for _, appt := range r.items {
		copied := *appt
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) CountByDate(ctx context.Context, day time.Time) (int, error) {
	appts, err := r.ListByDate(ctx, day)
	if err != nil {
		return 0, err
	}
	return len(appts), nil
}

func (r *InMemoryRepository) SetCRMAppointmentID(_ context.Context, id, crmID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.items[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	appt.CRMAppointmentID = crmID
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
