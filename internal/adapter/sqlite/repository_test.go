package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/rentiq/internal/adapter/sqlite"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// newTestRepo creates an in-memory SQLite repository for testing.
func newTestRepo(t *testing.T) *sqlite.UserRepository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testUser(id, email string) domain.User {
	return domain.User{
		ID:           id,
		Name:         "Awa Diop",
		Email:        email,
		Phone:        "+221770000000",
		PasswordHash: "$2a$10$notarealhashbutlongenough",
		Role:         "owner",
		CreatedAt:    time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreate_And_GetByEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testUser("u-1", "awa@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "awa@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}

	if got.ID != "u-1" {
		t.Errorf("ID = %q, want %q", got.ID, "u-1")
	}
	if got.Name != "Awa Diop" {
		t.Errorf("Name = %q, want %q", got.Name, "Awa Diop")
	}
	if got.Role != "owner" {
		t.Errorf("Role = %q, want %q", got.Role, "owner")
	}
	if got.PasswordHash == "" {
		t.Error("PasswordHash should round-trip")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
}

func TestGetByID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testUser("u-1", "awa@example.com")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Email != "awa@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "awa@example.com")
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, testUser("u-1", "awa@example.com")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := repo.Create(ctx, testUser("u-2", "awa@example.com"))
	var conflict *domain.EmailConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected EmailConflictError, got %v", err)
	}
	if conflict.Email != "awa@example.com" {
		t.Errorf("conflict Email = %q, want %q", conflict.Email, "awa@example.com")
	}
}
