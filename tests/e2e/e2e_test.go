//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/model"
	"github.com/quillfeed/quillfeed/internal/repository"
)

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user"`
}

type postResponse struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Views    int64  `json:"views"`
}

type commentResponse struct {
	ID      string `json:"id"`
	PostID  string `json:"post_id"`
	Content string `json:"content"`
}

type likeResponse struct {
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type userListResponse struct {
	Data []userResponse `json:"data"`
}

// TestE2ESmoke walks the whole surface: two accounts, a post, an attempt
// by the second account to mutate the first account's post, comments,
// likes, and the admin-only user list.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("QUILLFEED_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	suffix := time.Now().UnixNano()
	password := "e2e-password"

	alice := registerAndLogin(t, baseURL, fmt.Sprintf("alice%d", suffix), password)
	mallory := registerAndLogin(t, baseURL, fmt.Sprintf("mallory%d", suffix), password)

	// Alice creates a post.
	var post postResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/posts", alice.Token, map[string]any{
		"title":   "hello from e2e",
		"content": "first content",
	}, &post)
	if status != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d", status)
	}
	if post.AuthorID != alice.User.ID {
		t.Fatalf("post author mismatch: %s vs %s", post.AuthorID, alice.User.ID)
	}

	// Mallory cannot rewrite or delete it; the answer never reveals the
	// post exists.
	status = doJSON(t, http.MethodPut, baseURL+"/api/v1/posts/"+post.ID, mallory.Token, map[string]any{
		"title":   "hijack",
		"content": "hijacked",
	}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("foreign update: expected 404, got %d", status)
	}
	status = doJSON(t, http.MethodDelete, baseURL+"/api/v1/posts/"+post.ID, mallory.Token, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", status)
	}

	// Alice can.
	var updated postResponse
	status = doJSON(t, http.MethodPut, baseURL+"/api/v1/posts/"+post.ID, alice.Token, map[string]any{
		"title":   "hello again",
		"content": "second content",
	}, &updated)
	if status != http.StatusOK {
		t.Fatalf("owner update: expected 200, got %d", status)
	}
	if updated.Title != "hello again" {
		t.Fatalf("owner update did not apply: %q", updated.Title)
	}

	// Anonymous read works and counts the view.
	var fetched postResponse
	status = doJSON(t, http.MethodGet, baseURL+"/api/v1/posts/"+post.ID, "", nil, &fetched)
	if status != http.StatusOK {
		t.Fatalf("public read: expected 200, got %d", status)
	}
	if fetched.Views < 1 {
		t.Fatalf("expected view counter to advance, got %d", fetched.Views)
	}

	// Mallory comments, then likes twice; the second like is a no-op.
	var comment commentResponse
	status = doJSON(t, http.MethodPost, baseURL+"/api/v1/posts/"+post.ID+"/comments", mallory.Token, map[string]any{
		"content": "nice post",
	}, &comment)
	if status != http.StatusCreated {
		t.Fatalf("comment: expected 201, got %d", status)
	}

	var firstLike, secondLike likeResponse
	if status = doJSON(t, http.MethodPut, baseURL+"/api/v1/posts/"+post.ID+"/like", mallory.Token, nil, &firstLike); status != http.StatusOK {
		t.Fatalf("like: expected 200, got %d", status)
	}
	if status = doJSON(t, http.MethodPut, baseURL+"/api/v1/posts/"+post.ID+"/like", mallory.Token, nil, &secondLike); status != http.StatusOK {
		t.Fatalf("repeated like: expected 200, got %d", status)
	}
	if !firstLike.CreatedAt.Equal(secondLike.CreatedAt) {
		t.Fatalf("repeated like changed created_at")
	}

	if status = doJSON(t, http.MethodDelete, baseURL+"/api/v1/posts/"+post.ID+"/like", mallory.Token, nil, nil); status != http.StatusNoContent {
		t.Fatalf("unlike: expected 204, got %d", status)
	}
	if status = doJSON(t, http.MethodDelete, baseURL+"/api/v1/posts/"+post.ID+"/like", mallory.Token, nil, nil); status != http.StatusNotFound {
		t.Fatalf("second unlike: expected 404, got %d", status)
	}

	// Role gate: a plain user cannot list users.
	if status = doJSON(t, http.MethodGet, baseURL+"/api/v1/users", mallory.Token, nil, nil); status != http.StatusForbidden {
		t.Fatalf("user list as user: expected 403, got %d", status)
	}

	// Promote Alice out of band and confirm the fresh role applies on
	// the next request with the same token.
	promote(t, dbURL, alice.User.ID)

	var users userListResponse
	if status = doJSON(t, http.MethodGet, baseURL+"/api/v1/users", alice.Token, nil, &users); status != http.StatusOK {
		t.Fatalf("user list as admin: expected 200, got %d", status)
	}
	if len(users.Data) == 0 {
		t.Fatalf("expected at least one user in list")
	}

	// Cleanup through the API.
	if status = doJSON(t, http.MethodDelete, baseURL+"/api/v1/posts/"+post.ID, alice.Token, nil, nil); status != http.StatusNoContent {
		t.Fatalf("owner delete: expected 204, got %d", status)
	}
}

func TestE2EAuthRejections(t *testing.T) {
	baseURL := envOrDefault("QUILLFEED_BASE_URL", "http://localhost:8080")

	if status := doJSON(t, http.MethodGet, baseURL+"/api/v1/users/me", "", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", status)
	}
	if status := doJSON(t, http.MethodGet, baseURL+"/api/v1/users/me", "not-a-token", nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", status)
	}
}

func registerAndLogin(t *testing.T, baseURL, username, password string) tokenResponse {
	t.Helper()

	email := username + "@example.com"
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "", map[string]any{
		"username":         username,
		"name":             "E2E " + username,
		"email":            email,
		"password":         password,
		"password_confirm": password,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", username, status)
	}

	var resp tokenResponse
	status = doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", username, status)
	}
	if resp.Token == "" || resp.User == nil {
		t.Fatalf("login %s: response missing token or user", username)
	}
	return resp
}

func promote(t *testing.T, dbURL, userID string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	id, err := uuid.Parse(userID)
	if err != nil {
		t.Fatalf("parse user id: %v", err)
	}
	if err := repo.UpdateUserRole(ctx, id, model.RoleAdmin); err != nil {
		t.Fatalf("promote user: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}
