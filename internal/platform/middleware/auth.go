package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "garita/pkg/domain"
	"garita/pkg/requestcontext"
)

// TokenValidator turns a bearer token into an authenticated Actor. Token
// issuance lives outside this service; we only verify and extract claims.
type TokenValidator interface {
	Validate(token string) (requestcontext.Actor, error)
}

// guardClaims is the JWT payload minted by the account service. It carries
// the guard's facility and company scope so the core never consults ambient
// state to learn where the caller works.
type guardClaims struct {
	Role       string `json:"role"`
	CompanyID  string `json:"empresa_id,omitempty"`
	FacilityID string `json:"instalacion_id,omitempty"`
	Username   string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// HMACValidator validates HS256 tokens with a shared signing key.
type HMACValidator struct {
	key []byte
}

func NewHMACValidator(signingKey string) *HMACValidator {
	return &HMACValidator{key: []byte(signingKey)}
}

func (v *HMACValidator) Validate(token string) (requestcontext.Actor, error) {
	var claims guardClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.key, nil
	})
	if err != nil {
		return requestcontext.Actor{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return requestcontext.Actor{}, fmt.Errorf("invalid token")
	}

	role, ok := id.ParseRole(claims.Role)
	if !ok {
		return requestcontext.Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}
	guardID, err := id.ParseGuardID(claims.Subject)
	if err != nil {
		return requestcontext.Actor{}, fmt.Errorf("parse subject: %w", err)
	}

	actor := requestcontext.Actor{
		GuardID:  guardID,
		Role:     role,
		Username: claims.Username,
	}
	if claims.CompanyID != "" {
		if actor.CompanyID, err = id.ParseCompanyID(claims.CompanyID); err != nil {
			return requestcontext.Actor{}, fmt.Errorf("parse empresa_id: %w", err)
		}
	}
	if claims.FacilityID != "" {
		if actor.FacilityID, err = id.ParseFacilityID(claims.FacilityID); err != nil {
			return requestcontext.Actor{}, fmt.Errorf("parse instalacion_id: %w", err)
		}
	}
	return actor, nil
}

// RequireAuth extracts and validates the bearer token, placing the Actor in
// context. Requests without a valid token get 401.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			actor, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

// RequireCapability gates a route on the actor's role capability.
func RequireCapability(cap id.Capability, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, ok := requestcontext.ActorFrom(ctx)
			if !ok || !actor.Role.Can(cap) {
				logger.WarnContext(ctx, "forbidden - capability missing",
					"capability", string(cap),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
