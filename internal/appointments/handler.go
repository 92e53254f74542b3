package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vetsuite/clinic-crm/internal/pets"
	"github.com/vetsuite/clinic-crm/internal/web"
	"github.com/vetsuite/clinic-crm/pkg/logging"
)

// Handler exposes slot enumeration and booking over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// GetSlots handles GET /appointments/slots?date=YYYY-MM-DD.
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		web.WriteError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	slots, err := h.service.Slots(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
}

// Book handles POST /appointments.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	appt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, appt)
}

// List handles GET /appointments?date=YYYY-MM-DD with role scoping.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := web.IdentityFromContext(r.Context())
	if !ok {
		web.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		web.WriteError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}

	appts, err := h.service.VisibleAppointments(r.Context(), caller, date)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, appts)
}

// Recent handles GET /appointments/recent (staff only).
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	appts, err := h.service.Recent(r.Context(), 5)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, appts)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrPastDate),
		errors.Is(err, ErrDayDisabled), errors.Is(err, ErrMissingRequester),
		errors.Is(err, ErrInvalidDuration), errors.Is(err, ErrUnknownSlot):
		web.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotUnavailable):
		web.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, pets.ErrPetNotFound):
		web.WriteError(w, http.StatusNotFound, "pet not found")
	case errors.Is(err, ErrAppointmentNotFound):
		web.WriteError(w, http.StatusNotFound, "appointment not found")
	default:
		h.logger.Error("appointments request failed", "error", err)
		web.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
