package pets

import "errors"

var (
	// ErrPetNotFound is returned when no pet matches the id or QR token.
	ErrPetNotFound = errors.New("pet not found")

	// ErrInvalidName is returned when the pet name is missing.
	ErrInvalidName = errors.New("pet name is required")

	// ErrInvalidAge is returned for a negative age.
	ErrInvalidAge = errors.New("age must be non-negative")

	// ErrInvalidWeight is returned for a negative weight.
	ErrInvalidWeight = errors.New("weight must be non-negative")

	// ErrMissingOwner is returned when no owner name is provided.
	ErrMissingOwner = errors.New("owner name is required")

	// ErrNotAuthorized is returned when an owner requests a pet outside
	// their owned-pet set.
	ErrNotAuthorized = errors.New("not permitted to view this record")
)
