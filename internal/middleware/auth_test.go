package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCodec(t *testing.T) *auth.Codec {
	t.Helper()
	codec, err := auth.NewCodec([]byte("middleware-test-secret"), 15*time.Minute)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"no header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"bearer with surrounding space", "Bearer   abc.def.ghi", "abc.def.ghi"},
		{"bare bearer", "Bearer ", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

// The repository is deliberately nil in these cases: rejection must happen
// before any database access, so touching the repository would panic and
// fail the test.
func TestAuthenticate_RejectsBeforeDatabase(t *testing.T) {
	t.Parallel()

	codec := testCodec(t)

	expired, err := codec.Issue(uuid.New(), model.RoleUser, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"malformed token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expired},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mw := Authenticate(AuthConfig{
				Logger:     discardLogger(),
				Codec:      codec,
				Repository: nil,
			})

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not run for rejected request")
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw(next).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestAuthenticate_ErrorBody(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeAuthError(rec, "AUTHENTICATION_REQUIRED", "Authentication required")

	body := rec.Body.String()
	if !strings.Contains(body, `"code":"AUTHENTICATION_REQUIRED"`) {
		t.Errorf("body should carry the error code, got: %s", body)
	}
}
