package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quillfeed/quillfeed/internal/handler/dto"
	"github.com/quillfeed/quillfeed/internal/metrics"
	"github.com/quillfeed/quillfeed/internal/service"
)

func TestWriteError_Shape(t *testing.T) {
	rec := httptest.NewRecorder()

	writeError(rec, http.StatusConflict, "USERNAME_TAKEN", "Username already taken")

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Error.Code != "USERNAME_TAKEN" {
		t.Errorf("expected code USERNAME_TAKEN, got %s", response.Error.Code)
	}
	if response.Error.Message == "" {
		t.Error("expected a non-empty message")
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("NotFound: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/api/v1/posts", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed: expected 405, got %d", rec.Code)
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, service.DefaultPageSize},
		{"explicit", "?page=3&limit=25", 3, 25},
		{"zero page clamps", "?page=0&limit=5", 1, 5},
		{"negative values clamp", "?page=-2&limit=-1", 1, service.DefaultPageSize},
		{"limit above cap clamps", "?limit=5000", 1, service.MaxPageSize},
		{"non-numeric ignored", "?page=abc&limit=xyz", 1, service.DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/posts"+tt.query, nil)

			page, limit := parsePage(req)

			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("parsePage() = (%d, %d), want (%d, %d)", page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	recorder := metrics.NewInMemory()
	recorder.IncUserRegistered()
	recorder.IncLoginSuccess()
	recorder.IncLoginFailure()
	recorder.IncLoginFailure()
	recorder.IncPostCreated()

	h := NewMetricsHandler(recorder)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	h.Metrics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"quillfeed_users_registered_total 1",
		`quillfeed_logins_total{status="success"} 1`,
		`quillfeed_logins_total{status="failure"} 2`,
		"quillfeed_posts_created_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	h := NewMetricsHandler(nil)

	rec := httptest.NewRecorder()
	h.Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}
