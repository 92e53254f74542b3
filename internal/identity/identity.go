// Package identity models caller roles and the external account directory.
// The service never embeds a user table; everything it knows about a caller
// comes from the bearer token and the injected Directory.
package identity

import (
	"context"
	"errors"
)

// Role classifies a caller.
type Role string

const (
	// RoleVeterinary is clinic staff with full visibility.
	RoleVeterinary Role = "veterinary"
	// RoleOwner is a pet owner scoped to their own pets and appointments.
	RoleOwner Role = "owner"
)

// ErrUnknownIdentity is returned when a directory has no entry for a caller.
var ErrUnknownIdentity = errors.New("identity: unknown caller")

// Identity describes an authenticated caller.
type Identity struct {
	Email  string
	Role   Role
	PetIDs []string
}

// IsStaff reports whether the caller has full clinic visibility.
func (i Identity) IsStaff() bool {
	return i.Role == RoleVeterinary
}

// Owns reports whether the caller's owned-pet set contains petID.
func (i Identity) Owns(petID string) bool {
	for _, id := range i.PetIDs {
		if id == petID {
			return true
		}
	}
	return false
}

// Directory resolves caller roles and pet ownership. Implementations are
// injected so the booking core stays free of any fixed credential list.
type Directory interface {
	RoleOf(ctx context.Context, email string) (Role, error)
	OwnedPets(ctx context.Context, email string) ([]string, error)
}

// StaticDirectory is a map-backed Directory for development and tests.
type StaticDirectory struct {
	entries map[string]Identity
}

// NewStaticDirectory builds a directory from a fixed identity list.
func NewStaticDirectory(identities ...Identity) *StaticDirectory {
	entries := make(map[string]Identity, len(identities))
	for _, id := range identities {
		entries[id.Email] = id
	}
	return &StaticDirectory{entries: entries}
}

// RoleOf returns the role recorded for email.
func (d *StaticDirectory) RoleOf(_ context.Context, email string) (Role, error) {
	entry, ok := d.entries[email]
	if !ok {
		return "", ErrUnknownIdentity
	}
	return entry.Role, nil
}

// OwnedPets returns a copy of the owned-pet-id set recorded for email.
func (d *StaticDirectory) OwnedPets(_ context.Context, email string) ([]string, error) {
	entry, ok := d.entries[email]
	if !ok {
		return nil, ErrUnknownIdentity
	}
	return append([]string(nil), entry.PetIDs...), nil
}
