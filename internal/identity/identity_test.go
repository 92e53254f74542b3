package identity

import (
	"context"
	"errors"
	"testing"
)

func TestIdentityOwns(t *testing.T) {
	caller := Identity{Email: "sarah@example.com", Role: RoleOwner, PetIDs: []string{"p002"}}

	if !caller.Owns("p002") {
		t.Error("expected caller to own p002")
	}
	if caller.Owns("p001") {
		t.Error("caller must not own p001")
	}
	if caller.IsStaff() {
		t.Error("owner is not staff")
	}
}

func TestStaticDirectory(t *testing.T) {
	dir := NewStaticDirectory(
		Identity{Email: "demo@vetclinic.com", Role: RoleVeterinary},
		Identity{Email: "john@example.com", Role: RoleOwner, PetIDs: []string{"p001"}},
	)

	role, err := dir.RoleOf(context.Background(), "demo@vetclinic.com")
	if err != nil {
		t.Fatalf("RoleOf: %v", err)
	}
	if role != RoleVeterinary {
		t.Errorf("role = %s, want veterinary", role)
	}

	pets, err := dir.OwnedPets(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("OwnedPets: %v", err)
	}
	if len(pets) != 1 || pets[0] != "p001" {
		t.Errorf("pets = %v, want [p001]", pets)
	}

	if _, err := dir.RoleOf(context.Background(), "nobody@example.com"); !errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("err = %v, want ErrUnknownIdentity", err)
	}
}

func TestStaticDirectoryReturnsCopy(t *testing.T) {
	dir := NewStaticDirectory(Identity{Email: "john@example.com", Role: RoleOwner, PetIDs: []string{"p001"}})

	pets, _ := dir.OwnedPets(context.Background(), "john@example.com")
	pets[0] = "tampered"

	again, _ := dir.OwnedPets(context.Background(), "john@example.com")
	if again[0] != "p001" {
		t.Error("directory state was mutated through returned slice")
	}
}
