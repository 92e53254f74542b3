package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vetsuite/clinic-crm/internal/identity"
)

type contextKey string

const identityKey contextKey = "callerIdentity"

// Claims is the JWT payload issued to clinic users. Role and PetsOwned come
// from the identity provider's user metadata.
type Claims struct {
	jwt.RegisteredClaims
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	PetsOwned []string `json:"pets_owned"`
}

// Auth enforces an HMAC-signed JWT and stores the caller's identity in the
// request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				WriteError(w, http.StatusUnauthorized, "auth disabled")
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := Claims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			email := claims.Email
			if email == "" {
				email = claims.Subject
			}
			caller := identity.Identity{
				Email:  email,
				Role:   identity.Role(claims.Role),
				PetIDs: claims.PetsOwned,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), caller)))
		})
	}
}

// RequireStaff rejects callers whose role is not veterinary.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := IdentityFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !caller.IsStaff() {
			WriteError(w, http.StatusForbidden, "staff role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity stores the caller identity in ctx.
func WithIdentity(ctx context.Context, caller identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, caller)
}

// IdentityFromContext returns the caller identity if present.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	caller, ok := ctx.Value(identityKey).(identity.Identity)
	return caller, ok
}
