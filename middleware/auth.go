package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mealweek/mealweek/config"
	"github.com/mealweek/mealweek/util"
)

type contextKey string

// HouseholdContextKey carries the authenticated household id through the
// request context. Everything below the controllers trusts this value.
const HouseholdContextKey contextKey = "household_id"

// AuthMiddleware validates the bearer JWT and resolves the household id into
// the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: No Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}

		secret := []byte(config.GetEnv("JWT_SECRET", "dev-secret"))
		claims, err := util.ValidateJWT(parts[1], secret)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), HouseholdContextKey, claims.HouseholdID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HouseholdID extracts the authenticated household id from the context.
func HouseholdID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(HouseholdContextKey).(uint)
	return id, ok
}
