package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crewbase/crewbase/internal/auth"
	"github.com/crewbase/crewbase/internal/database/models"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserKey           contextKey = "user"
	UserIDKey         contextKey = "user_id"
	OrganisationIDKey contextKey = "organisation_id"
)

// Auth verifies the bearer token and resolves the acting user before any
// handler runs. The user lookup doubles as revocation: deleting a user
// invalidates every outstanding token that references it.
func Auth(jwtService auth.TokenService, users auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "Access denied. No token provided.")
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				unauthorized(w, "Invalid token.")
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				unauthorized(w, "Invalid token. User not found.")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserKey, user)
			ctx = context.WithValue(ctx, UserIDKey, user.ID)
			ctx = context.WithValue(ctx, OrganisationIDKey, user.OrganisationID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}

// Helper functions to extract values from context

func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserKey).(*models.User); ok {
		return user
	}
	return nil
}

func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func GetOrganisationID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(OrganisationIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
