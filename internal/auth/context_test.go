package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/model"
)

func TestIdentityContext_RoundTrip(t *testing.T) {
	t.Parallel()

	id := Identity{
		UserID:   uuid.New(),
		Username: "alice",
		Role:     model.RoleUser,
	}

	ctx := ContextWithIdentity(context.Background(), id)

	got, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatal("expected identity in context")
	}
	if got != id {
		t.Errorf("got %+v, want %+v", got, id)
	}
}

func TestIdentityFromContext_Absent(t *testing.T) {
	t.Parallel()

	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Error("expected no identity in empty context")
	}
}

func TestMustIdentityFromContext_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing identity")
		}
	}()
	MustIdentityFromContext(context.Background())
}
