package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/model"
)

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		identity   *auth.Identity
		required   model.Role
		wantStatus int
	}{
		{
			name:       "no identity",
			identity:   nil,
			required:   model.RoleUser,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "user meets user requirement",
			identity:   &auth.Identity{UserID: uuid.New(), Username: "alice", Role: model.RoleUser},
			required:   model.RoleUser,
			wantStatus: http.StatusOK,
		},
		{
			name:       "user blocked from admin route",
			identity:   &auth.Identity{UserID: uuid.New(), Username: "alice", Role: model.RoleUser},
			required:   model.RoleAdmin,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin meets user requirement",
			identity:   &auth.Identity{UserID: uuid.New(), Username: "root", Role: model.RoleAdmin},
			required:   model.RoleUser,
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin meets admin requirement",
			identity:   &auth.Identity{UserID: uuid.New(), Username: "root", Role: model.RoleAdmin},
			required:   model.RoleAdmin,
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown role satisfies nothing",
			identity:   &auth.Identity{UserID: uuid.New(), Username: "ghost", Role: model.Role("superuser")},
			required:   model.RoleUser,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			if tt.identity != nil {
				ctx := auth.ContextWithIdentity(req.Context(), *tt.identity)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			RequireRole(tt.required)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if wantCalled := tt.wantStatus == http.StatusOK; handlerCalled != wantCalled {
				t.Errorf("handlerCalled = %v, want %v", handlerCalled, wantCalled)
			}
		})
	}
}

func TestRequireAdmin_ComposesWithRequireRole(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Stacked gates: the stricter one decides.
	stacked := RequireRole(model.RoleUser)(RequireAdmin()(next))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	ctx := auth.ContextWithIdentity(req.Context(), auth.Identity{
		UserID: uuid.New(), Username: "alice", Role: model.RoleUser,
	})
	rec := httptest.NewRecorder()

	stacked.ServeHTTP(rec, req.WithContext(ctx))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
