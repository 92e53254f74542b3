package appointments

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetsuite/clinic-crm/internal/clinic"
	"github.com/vetsuite/clinic-crm/internal/events"
	"github.com/vetsuite/clinic-crm/internal/identity"
	"github.com/vetsuite/clinic-crm/internal/pets"
)

type staticSettings struct {
	settings *clinic.Settings
}

func (s *staticSettings) Get(context.Context) (*clinic.Settings, error) {
	return s.settings, nil
}

type recordingOutbox struct {
	types    []string
	payloads []json.RawMessage
}

func (o *recordingOutbox) Insert(_ context.Context, eventType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, err
	}
	o.types = append(o.types, eventType)
	o.payloads = append(o.payloads, data)
	return uuid.New(), nil
}

type bookingFixture struct {
	service *Service
	repo    *InMemoryRepository
	pets    *pets.InMemoryRepository
	outbox  *recordingOutbox
}

// newBookingFixture pins "now" to Monday 2024-06-10 09:00 UTC.
func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	repo := NewInMemoryRepository()
	petRepo := pets.NewInMemoryRepository()
	outbox := &recordingOutbox{}
	svc := NewService(repo, petRepo, &staticSettings{settings: clinic.DefaultSettings()}, outbox, nil, nil)
	svc.now = func() time.Time {
		return time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)
	}
	return &bookingFixture{service: svc, repo: repo, pets: petRepo, outbox: outbox}
}

func (f *bookingFixture) addPet(t *testing.T, id, name, ownerEmail string) {
	t.Helper()
	require.NoError(t, f.pets.Create(context.Background(), &pets.Pet{
		ID:         id,
		Name:       name,
		Species:    pets.SpeciesDog,
		OwnerName:  "Owner of " + name,
		OwnerEmail: ownerEmail,
		QRCode:     id,
	}))
}

func TestBookHappyPath(t *testing.T) {
	f := newBookingFixture(t)
	f.addPet(t, "p003", "Buddy", "mike@example.com")

	appt, err := f.service.Book(context.Background(), &BookingRequest{
		PetID:          "p003",
		Date:           "2024-06-11",
		StartTime:      "14:00",
		RequesterEmail: "mike@example.com",
		Reason:         "annual exam",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, "Buddy", appt.PetName)
	assert.Equal(t, "14:00", appt.StartTime)
	assert.Equal(t, 30, appt.DurationMinutes, "duration defaults from policy")
	assert.Equal(t, StatusScheduled, appt.Status)

	stored, err := f.repo.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, "mike@example.com", stored.RequesterEmail)
}

func TestBookEnqueuesCRMMirror(t *testing.T) {
	f := newBookingFixture(t)
	f.addPet(t, "p003", "Buddy", "mike@example.com")

	appt, err := f.service.Book(context.Background(), &BookingRequest{
		PetID:          "p003",
		Date:           "2024-06-11",
		StartTime:      "14:00",
		RequesterEmail: "mike@example.com",
	})
	require.NoError(t, err)

	require.Len(t, f.outbox.types, 1)
	assert.Equal(t, events.TypeAppointmentBooked, f.outbox.types[0])

	var event events.AppointmentBookedV1
	require.NoError(t, json.Unmarshal(f.outbox.payloads[0], &event))
	assert.Equal(t, appt.ID, event.AppointmentID)
	assert.Equal(t, "2024-06-11", event.Date)
	assert.Equal(t, "14:00", event.StartTime)
}

func TestBookRejectsPastDate(t *testing.T) {
	f := newBookingFixture(t)
	f.addPet(t, "p003", "Buddy", "mike@example.com")

	_, err := f.service.Book(context.Background(), &BookingRequest{
		PetID:          "p003",
		Date:           "2024-06-09",
		StartTime:      "14:00",
		RequesterEmail: "mike@example.com",
	})
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Empty(t, f.outbox.types)
}

func TestBookRejectsDisabledWeekday(t *testing.T) {
	f := newBookingFixture(t)
	f.addPet(t, "p003", "Buddy", "mike@example.com")

	// 2024-06-16 is a Sunday.
	_, err := f.service.Book(context.Background(), &BookingRequest{
		PetID:          "p003",
		Date:           "2024-06-16",
		StartTime:      "14:00",
		RequesterEmail: "mike@example.com",
	})
	assert.ErrorIs(t, err, ErrDayDisabled)
}

func TestBookRejectsOffGridSlot(t *testing.T) {
	f := newBookingFixture(t)
	f.addPet(t, "p003", "Buddy", "mike@example.com")

	for _, start := range []string{"08:00", "17:30", "14:10", "2pm"} {
		_, err := f.service.Book(context.Background(), &BookingRequest{
			PetID:          "p003",
			Date:           "2024-06-11",
			StartTime:      start,
			RequesterEmail: "mike@example.com",
		})
		assert.ErrorIs(t, err, ErrUnknownSlot, "start %s", start)
	}
}

func TestBookRejectsTakenSlot(t *testing.T) {
	f := newBookingFixture(t)
	f.addPet(t, "p003", "Buddy", "mike@example.com")

	_, err := f.service.Book(context.Background(), &BookingRequest{
		PetID:          "p003",
		Date:           "2024-06-11",
		StartTime:      "14:00",
		RequesterEmail: "mike@example.com",
	})
	require.NoError(t, err)

	// Same slot again.
	_, err = f.service.Book(context.Background(), &BookingRequest{
		PetID:          "p003",
		Date:           "2024-06-11",
		StartTime:      "14:00",
		RequesterEmail: "mike@example.com",
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// A 60-minute request ending inside the taken slot.
	_, err = f.service.Book(context.Background(), &BookingRequest{
		PetID:           "p003",
		Date:            "2024-06-11",
		StartTime:       "13:30",
		DurationMinutes: 60,
		RequesterEmail:  "mike@example.com",
	})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	// Back-to-back is fine: half-open windows.
	_, err = f.service.Book(context.Background(), &BookingRequest{
		PetID:          "p003",
		Date:           "2024-06-11",
		StartTime:      "14:30",
		RequesterEmail: "mike@example.com",
	})
	assert.NoError(t, err)
}

func TestBookPreconditionOrder(t *testing.T) {
	f := newBookingFixture(t)
	// No pets registered at all.

	// Disabled day wins over the missing pet.
	_, err := f.service.Book(context.Background(), &BookingRequest{
		PetID:     "missing",
		Date:      "2024-06-16",
		StartTime: "14:00",
	})
	assert.ErrorIs(t, err, ErrDayDisabled)

	// On a valid day the missing pet is reported before the empty email.
	_, err = f.service.Book(context.Background(), &BookingRequest{
		PetID:     "missing",
		Date:      "2024-06-11",
		StartTime: "14:00",
	})
	assert.ErrorIs(t, err, pets.ErrPetNotFound)

	// With the pet present the empty requester email is the failure.
	f.addPet(t, "p003", "Buddy", "mike@example.com")
	_, err = f.service.Book(context.Background(), &BookingRequest{
		PetID:     "p003",
		Date:      "2024-06-11",
		StartTime: "14:00",
	})
	assert.ErrorIs(t, err, ErrMissingRequester)
}

func TestSlotsReflectBookings(t *testing.T) {
	f := newBookingFixture(t)
	f.addPet(t, "p003", "Buddy", "mike@example.com")

	_, err := f.service.Book(context.Background(), &BookingRequest{
		PetID:          "p003",
		Date:           "2024-06-10",
		StartTime:      "10:00",
		RequesterEmail: "mike@example.com",
	})
	require.NoError(t, err)

	slots, err := f.service.Slots(context.Background(), "2024-06-10")
	require.NoError(t, err)
	require.Len(t, slots, 17)

	byTime := map[string]bool{}
	for _, slot := range slots {
		byTime[slot.Time] = slot.Available
	}
	assert.False(t, byTime["10:00"])
	assert.True(t, byTime["09:30"])
	assert.True(t, byTime["10:30"])
}

func TestSlotsAllUnavailableOnClosedDay(t *testing.T) {
	f := newBookingFixture(t)

	slots, err := f.service.Slots(context.Background(), "2024-06-16")
	require.NoError(t, err)
	require.Len(t, slots, 17)
	for _, slot := range slots {
		assert.False(t, slot.Available)
	}
}

func TestVisibleAppointmentsScoping(t *testing.T) {
	f := newBookingFixture(t)
	f.addPet(t, "p002", "Luna", "sarah@example.com")
	f.addPet(t, "p003", "Buddy", "mike@example.com")

	_, err := f.service.Book(context.Background(), &BookingRequest{
		PetID: "p002", Date: "2024-06-11", StartTime: "09:00", RequesterEmail: "sarah@example.com",
	})
	require.NoError(t, err)
	_, err = f.service.Book(context.Background(), &BookingRequest{
		PetID: "p003", Date: "2024-06-11", StartTime: "14:00", RequesterEmail: "mike@example.com",
	})
	require.NoError(t, err)

	vet := identity.Identity{Email: "vet@clinic.test", Role: identity.RoleVeterinary}
	all, err := f.service.VisibleAppointments(context.Background(), vet, "2024-06-11")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sarah := identity.Identity{
		Email:  "sarah@example.com",
		Role:   identity.RoleOwner,
		PetIDs: []string{"p002"},
	}
	mine, err := f.service.VisibleAppointments(context.Background(), sarah, "2024-06-11")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "p002", mine[0].PetID)
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	f := newBookingFixture(t)
	f.addPet(t, "p003", "Buddy", "mike@example.com")

	times := []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00"}
	for i, start := range times {
		created := time.Date(2024, time.June, 10, 9, i, 0, 0, time.UTC)
		f.service.now = func() time.Time { return created }
		_, err := f.service.Book(context.Background(), &BookingRequest{
			PetID: "p003", Date: "2024-06-11", StartTime: start, RequesterEmail: "mike@example.com",
		})
		require.NoError(t, err)
	}

	recent, err := f.service.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, "14:00", recent[0].StartTime)
}
