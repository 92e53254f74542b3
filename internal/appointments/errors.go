package appointments

import "errors"

var (
	// ErrInvalidDate means the date did not parse as YYYY-MM-DD.
	ErrInvalidDate = errors.New("appointments: invalid date, expected YYYY-MM-DD")

	// ErrPastDate rejects bookings for days before today.
	ErrPastDate = errors.New("appointments: cannot book a past date")

	// ErrDayDisabled rejects bookings on weekdays the clinic is closed.
	ErrDayDisabled = errors.New("appointments: clinic is closed on that day")

	// ErrUnknownSlot means the requested start time is not on the slot grid.
	ErrUnknownSlot = errors.New("appointments: requested time is not a bookable slot")

	// ErrSlotUnavailable means the requested window overlaps an existing
	// appointment.
	ErrSlotUnavailable = errors.New("appointments: slot is already taken")

	// ErrMissingRequester rejects bookings without a requester email.
	ErrMissingRequester = errors.New("appointments: requester email is required")

	// ErrInvalidDuration rejects non-positive durations.
	ErrInvalidDuration = errors.New("appointments: duration must be positive")

	// ErrAppointmentNotFound is returned for lookups of unknown appointments.
	ErrAppointmentNotFound = errors.New("appointments: appointment not found")
)
