package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vetsuite/clinic-crm/internal/identity"
)

func TestAuthMissingSecret(t *testing.T) {
	mw := Auth("")
	req := httptest.NewRequest(http.MethodGet, "/pets", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthMissingHeader(t *testing.T) {
	mw := Auth("secret")
	req := httptest.NewRequest(http.MethodGet, "/pets", nil)
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	mw := Auth("secret")
	req := httptest.NewRequest(http.MethodGet, "/pets", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "wrong", "vet@clinic.test", "veterinary", nil))
	rec := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthPopulatesIdentity(t *testing.T) {
	mw := Auth("secret")
	req := httptest.NewRequest(http.MethodGet, "/pets", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "secret", "sarah@example.com", "owner", []string{"p002"}))
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		caller, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("expected identity in context")
		}
		if caller.Email != "sarah@example.com" {
			t.Fatalf("unexpected email %q", caller.Email)
		}
		if caller.Role != identity.RoleOwner {
			t.Fatalf("unexpected role %q", caller.Role)
		}
		if !caller.Owns("p002") || caller.Owns("p001") {
			t.Fatalf("unexpected pet ownership %v", caller.PetIDs)
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
}

func TestRequireStaff(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/pets", nil)
	req = req.WithContext(WithIdentity(req.Context(), identity.Identity{
		Email: "sarah@example.com",
		Role:  identity.RoleOwner,
	}))
	rec := httptest.NewRecorder()
	RequireStaff(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/pets", nil)
	req = req.WithContext(WithIdentity(req.Context(), identity.Identity{
		Email: "vet@clinic.test",
		Role:  identity.RoleVeterinary,
	}))
	rec = httptest.NewRecorder()
	RequireStaff(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func signedToken(t *testing.T, secret, email, role string, pets []string) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
		},
		Email:     email,
		Role:      role,
		PetsOwned: pets,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
