package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/caredocs/caredocs/internal/ctxkeys"
	"github.com/caredocs/caredocs/internal/service"
)

// AuthMiddleware resolves the session token (cookie or bearer header) and
// adds the caller to the context if valid
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := sessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			caller, err := authService.Caller(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrInvalidToken) {
					if fromCookie {
						authService.ClearJWTCookie(w)
					}
				} else {
					slog.ErrorContext(r.Context(), "failed to resolve session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithCaller(r.Context(), caller)))
		})
	}
}

func sessionToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(service.AuthCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token), false
	}
	return "", false
}

// RequireAuth rejects anonymous requests with 401
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Caller(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireRole rejects callers whose role is not one of roles with 403
func RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			caller := ctxkeys.Caller(r.Context())
			for _, role := range roles {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Access denied")
		})
	}
}
