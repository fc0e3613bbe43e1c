package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/scrinia/scrinia/internal/auth"
)

type contextKey string

const (
	UserContextKey  contextKey = "user"
	ShareContextKey contextKey = "shareToken"
)

// AuthMiddleware authenticates a user JWT. The token usually travels in the
// Authorization header; a ?token= query parameter is accepted as a fallback
// for direct browser links, but a header always wins over the query string.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ""
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
					return
				}
				tokenString = parts[1]
			} else {
				tokenString = r.URL.Query().Get("token")
			}

			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*auth.Claims)
	return claims, ok
}

// ShareTokenMiddleware extracts a share token for the public API. Lookup
// order is X-Api-Key, then a Bearer Authorization header, then an ?apiKey=
// query parameter; headers beat the query string when both are present.
func ShareTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractShareToken(r)
		if token == "" {
			http.Error(w, "Missing API key", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ShareContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ExtractShareToken(r *http.Request) string {
	if key := r.Header.Get("X-Api-Key"); key != "" {
		return key
	}
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return r.URL.Query().Get("apiKey")
}

func GetShareTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ShareContextKey).(string)
	return token, ok
}
