package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/repository"
)

// AuthConfig holds configuration for the authentication middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Codec      *auth.Codec
	Repository *repository.Repository
}

// Authenticate returns a middleware that resolves the request identity.
// It extracts a bearer token from the Authorization header, verifies it,
// loads the subject's user row, and publishes an immutable Identity into
// the request context. Any failure short-circuits the request: no handler
// or later middleware runs, and a missing token is rejected before any
// database access.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, "AUTHENTICATION_REQUIRED", "Authentication required")
				return
			}

			claims, err := cfg.Codec.Verify(token, time.Now())
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, auth.ErrTokenExpired) {
					reason = "expired_token"
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, "INVALID_TOKEN", "Invalid or expired token")
				return
			}

			subjectID, err := claims.SubjectID()
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "malformed_subject"),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, "INVALID_TOKEN", "Invalid or expired token")
				return
			}

			// One database read: the token may outlive the account.
			user, err := cfg.Repository.GetUserByID(r.Context(), subjectID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "subject_gone"),
						slog.String("user_id", subjectID.String()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w, "AUTHENTICATION_REQUIRED", "Authentication required")
					return
				}
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeServerError(w)
				return
			}

			identity := auth.Identity{
				UserID:   user.ID,
				Username: user.Username,
				Role:     user.Role,
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// writeAuthError writes a 401 Unauthorized response.
// The same shape is used for all auth failures to prevent probing.
func writeAuthError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}

// writeServerError writes a generic 500 response with no internal detail.
func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"An internal error occurred"}}`))
}
