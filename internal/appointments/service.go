package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vetsuite/clinic-crm/internal/clinic"
	"github.com/vetsuite/clinic-crm/internal/events"
	"github.com/vetsuite/clinic-crm/internal/identity"
	"github.com/vetsuite/clinic-crm/internal/observability/metrics"
	"github.com/vetsuite/clinic-crm/internal/pets"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

var bookingTracer = otel.Tracer("vetclinic.internal.appointments")

// PetDirectory resolves pets referenced by booking requests.
type PetDirectory interface {
	GetByID(ctx context.Context, id string) (*pets.Pet, error)
}

// SettingsProvider returns the current scheduling policy.
type SettingsProvider interface {
	Get(ctx context.Context) (*clinic.Settings, error)
}

// OutboxInserter records events for asynchronous CRM mirroring.
type OutboxInserter interface {
	Insert(ctx context.Context, eventType string, payload any) (uuid.UUID, error)
}

// Service owns slot enumeration and the booking transaction.
type Service struct {
	repo     Repository
	pets     PetDirectory
	settings SettingsProvider
	outbox   OutboxInserter
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewService constructs an appointments service. The outbox and metrics may
// be nil; CRM mirroring and instrumentation are then skipped.
func NewService(repo Repository, petDir PetDirectory, settings SettingsProvider, outbox OutboxInserter, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("appointments: repository required")
	}
	if petDir == nil {
		panic("appointments: pet directory required")
	}
	if settings == nil {
		panic("appointments: settings provider required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		pets:     petDir,
		settings: settings,
		outbox:   outbox,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Slots returns the availability grid for a day. Every slot on a closed or
// past day reads unavailable.
func (s *Service) Slots(ctx context.Context, date string) ([]Slot, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	policy, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveSlotQuery()

	existing, err := s.repo.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	slots, err := ComputeSlots(policy, existing)
	if err != nil {
		return nil, err
	}
	if policy.DayDisabled(day.Weekday()) || day.Before(s.today()) {
		for i := range slots {
			slots[i].Available = false
		}
	}
	return slots, nil
}

// Book runs the booking transaction. Preconditions are checked in a fixed
// order so clients always see the same error for the same request: day
// validity first, then slot availability, then pet existence, then the
// requester email.
func (s *Service) Book(ctx context.Context, req *BookingRequest) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("appointment.pet_id", req.PetID),
		attribute.String("appointment.date", req.Date),
		attribute.String("appointment.start_time", req.StartTime),
	)
	started := s.now()

	appt, err := s.book(ctx, req)
	s.metrics.ObserveBooking(bookingOutcome(err), s.now().Sub(started).Seconds())
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("appointment.id", appt.ID))
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"pet_id", appt.PetID,
		"date", req.Date,
		"start_time", appt.StartTime,
	)
	s.enqueueMirror(ctx, appt, req.Date)
	return appt, nil
}

func (s *Service) book(ctx context.Context, req *BookingRequest) (*Appointment, error) {
	day, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	policy, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = policy.DefaultDurationMinutes
	}
	if duration < 0 {
		return nil, ErrInvalidDuration
	}

	if day.Before(s.today()) {
		return nil, ErrPastDate
	}
	if policy.DayDisabled(day.Weekday()) {
		return nil, ErrDayDisabled
	}

	startMin, err := minutesOf(req.StartTime)
	if err != nil {
		return nil, ErrUnknownSlot
	}
	ok, err := onGrid(policy, startMin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownSlot
	}

	existing, err := s.repo.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	fits, err := slotFits(startMin, duration, existing)
	if err != nil {
		return nil, err
	}
	if !fits {
		return nil, ErrSlotUnavailable
	}

	pet, err := s.pets.GetByID(ctx, req.PetID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.RequesterEmail) == "" {
		return nil, ErrMissingRequester
	}

	appt := &Appointment{
		ID:              uuid.NewString(),
		PetID:           pet.ID,
		PetName:         pet.Name,
		OwnerName:       pet.OwnerName,
		RequesterEmail:  strings.TrimSpace(req.RequesterEmail),
		Date:            day,
		StartTime:       labelOf(startMin),
		DurationMinutes: duration,
		Reason:          strings.TrimSpace(req.Reason),
		Status:          StatusScheduled,
		CreatedAt:       s.now(),
	}
	if err := s.repo.Insert(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// enqueueMirror records the CRM mirror event. A failure here never unwinds
// the booking; it is logged and the row stays unmirrored.
func (s *Service) enqueueMirror(ctx context.Context, appt *Appointment, date string) {
	if s.outbox == nil {
		return
	}
	event := events.AppointmentBookedV1{
		EventID:         uuid.NewString(),
		AppointmentID:   appt.ID,
		PetID:           appt.PetID,
		PetName:         appt.PetName,
		OwnerName:       appt.OwnerName,
		RequesterEmail:  appt.RequesterEmail,
		Date:            date,
		StartTime:       appt.StartTime,
		DurationMinutes: appt.DurationMinutes,
		Reason:          appt.Reason,
		BookedAt:        appt.CreatedAt,
	}
	if _, err := s.outbox.Insert(ctx, events.TypeAppointmentBooked, event); err != nil {
		s.logger.Error("failed to enqueue CRM mirror", "error", err, "appointment_id", appt.ID)
	}
}

// VisibleAppointments returns a day's appointments scoped to the caller:
// staff see everything, owners only their own bookings or owned pets.
func (s *Service) VisibleAppointments(ctx context.Context, caller identity.Identity, date string) ([]*Appointment, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	appts, err := s.repo.ListByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	if caller.IsStaff() {
		return appts, nil
	}
	out := make([]*Appointment, 0, len(appts))
	for _, appt := range appts {
		if appt.RequesterEmail == caller.Email || caller.Owns(appt.PetID) {
			out = append(out, appt)
		}
	}
	return out, nil
}

// Recent returns the most recently created appointments, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Appointment, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.ListRecent(ctx, limit)
}

// CountOn reports how many appointments exist for a day.
func (s *Service) CountOn(ctx context.Context, day time.Time) (int, error) {
	return s.repo.CountByDate(ctx, day)
}

func (s *Service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return "booked"
	case errors.Is(err, ErrSlotUnavailable):
		return "conflict"
	case errors.Is(err, pets.ErrPetNotFound):
		return "not_found"
	case errors.Is(err, ErrPastDate), errors.Is(err, ErrDayDisabled),
		errors.Is(err, ErrUnknownSlot), errors.Is(err, ErrMissingRequester),
		errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidDuration):
		return "rejected"
	default:
		return "error"
	}
}
