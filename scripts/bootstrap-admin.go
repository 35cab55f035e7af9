package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/model"
	"github.com/quillfeed/quillfeed/internal/repository"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "admin", "Admin username")
		email       = flag.String("email", "admin@quillfeed.local", "Admin email")
		name        = flag.String("name", "Administrator", "Display name")
		password    = flag.String("password", "", "Password (generated when empty)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Promote an existing account instead of failing when the email is
	// already registered.
	if existing, err := repo.GetUserByEmail(ctx, strings.ToLower(*email)); err == nil {
		if err := repo.UpdateUserRole(ctx, existing.ID, model.RoleAdmin); err != nil {
			fmt.Fprintln(os.Stderr, "promote user:", err)
			os.Exit(1)
		}
		emit(*format, output{
			UserID:   existing.ID.String(),
			Username: existing.Username,
			Email:    existing.Email,
			Role:     string(model.RoleAdmin),
		})
		return
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		fmt.Fprintln(os.Stderr, "look up user:", err)
		os.Exit(1)
	}

	plaintext := *password
	if plaintext == "" {
		plaintext, err = generatePassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate password:", err)
			os.Exit(1)
		}
	}

	hash, err := auth.HashPassword(plaintext)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Username:     *username,
		Email:        strings.ToLower(*email),
		Name:         *name,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	stored, err := repo.CreateUser(ctx, user)
	if err != nil {
		fmt.Fprintln(os.Stderr, "create admin:", err)
		os.Exit(1)
	}

	out := output{
		UserID:   stored.ID.String(),
		Username: stored.Username,
		Email:    stored.Email,
		Role:     string(stored.Role),
	}
	if *password == "" {
		out.Password = plaintext
	}

	emit(*format, out)
}

func emit(format string, out output) {
	switch strings.ToLower(format) {
	case "plain":
		fmt.Println(out.UserID)
		if out.Password != "" {
			fmt.Println(out.Password)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func generatePassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
