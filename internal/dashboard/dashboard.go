// Package dashboard builds the staff landing-page summary.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vetsuite/clinic-crm/internal/appointments"
	"github.com/vetsuite/clinic-crm/internal/web"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

const recentWindow = 5

type appointmentStats interface {
	CountOn(ctx context.Context, day time.Time) (int, error)
	Recent(ctx context.Context, limit int) ([]*appointments.Appointment, error)
}

type petCounter interface {
	Count(ctx context.Context) (int, error)
}

// Stats is the staff landing-page summary.
type Stats struct {
	AppointmentsToday  int                         `json:"appointments_today"`
	TotalPets          int                         `json:"total_pets"`
	RecentAppointments []*appointments.Appointment `json:"recent_appointments"`
}

// Handler aggregates counts across the appointment book and the pet
// registry.
type Handler struct {
	appointments appointmentStats
	pets         petCounter
	logger       *logging.Logger
	now          func() time.Time
}

func NewHandler(appts appointmentStats, pets petCounter, logger *logging.Logger) *Handler {
	if appts == nil {
		panic("dashboard: appointment stats source cannot be nil")
	}
	if pets == nil {
		panic("dashboard: pet counter cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		appointments: appts,
		pets:         pets,
		logger:       logger.Component("dashboard"),
		now:          time.Now,
	}
}

// Build gathers the summary for the current day. The day count is keyed on
// the UTC calendar date, so the clock is truncated to midnight before the
// lookup.
func (h *Handler) Build(ctx context.Context) (*Stats, error) {
	now := h.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	apptCount, err := h.appointments.CountOn(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count today's appointments: %w", err)
	}
	petCount, err := h.pets.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: count pets: %w", err)
	}
	recent, err := h.appointments.Recent(ctx, recentWindow)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list recent appointments: %w", err)
	}

	return &Stats{
		AppointmentsToday:  apptCount,
		TotalPets:          petCount,
		RecentAppointments: recent,
	}, nil
}

// ServeStats handles GET /dashboard.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Build(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard stats", "error", err)
		web.WriteError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	web.WriteJSON(w, http.StatusOK, stats)
}
