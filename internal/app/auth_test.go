package app_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

func TestRegister_HashesPasswordAndIssuesToken(t *testing.T) {
	users := newMockUserRepo()
	svc := app.NewAuthService(users, mockIssuer{})

	result, err := svc.Register(context.Background(), app.Registration{
		Name:     "Awa Diop",
		Email:    "  Awa@Example.com ",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Token == "" {
		t.Error("Token should be set")
	}
	if result.User.PasswordHash != "" {
		t.Error("result must not expose the password hash")
	}
	if result.User.Email != "awa@example.com" {
		t.Errorf("Email = %q, want normalized %q", result.User.Email, "awa@example.com")
	}

	stored, err := users.GetByEmail(context.Background(), "awa@example.com")
	if err != nil {
		t.Fatalf("account not stored: %v", err)
	}
	if stored.PasswordHash == "s3cret-pass" || stored.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := app.NewAuthService(newMockUserRepo(), mockIssuer{})

	_, err := svc.Register(context.Background(), app.Registration{Email: "a@b.com", Password: "short"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := app.NewAuthService(newMockUserRepo(), mockIssuer{})
	reg := app.Registration{Email: "awa@example.com", Password: "s3cret-pass"}

	if _, err := svc.Register(context.Background(), reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := svc.Register(context.Background(), reg)
	var conflict *domain.EmailConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want EmailConflictError", err)
	}
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	users := newMockUserRepo()
	svc := app.NewAuthService(users, mockIssuer{})
	if _, err := svc.Register(context.Background(), app.Registration{Email: "awa@example.com", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("registering: %v", err)
	}

	_, errWrong := svc.Login(context.Background(), app.Credentials{Email: "awa@example.com", Password: "nope-nope"})
	_, errUnknown := svc.Login(context.Background(), app.Credentials{Email: "ghost@example.com", Password: "s3cret-pass"})

	if !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", errWrong)
	}
	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", errUnknown)
	}
}

func TestLogin_Success(t *testing.T) {
	svc := app.NewAuthService(newMockUserRepo(), mockIssuer{})
	if _, err := svc.Register(context.Background(), app.Registration{Email: "awa@example.com", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("registering: %v", err)
	}

	result, err := svc.Login(context.Background(), app.Credentials{Email: "AWA@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token == "" {
		t.Error("Token should be set")
	}
}

func TestVerify_ReturnsSanitizedUser(t *testing.T) {
	users := newMockUserRepo()
	svc := app.NewAuthService(users, mockIssuer{})
	result, err := svc.Register(context.Background(), app.Registration{Email: "awa@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("registering: %v", err)
	}

	user, err := svc.Verify(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "awa@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "awa@example.com")
	}
	if user.PasswordHash != "" {
		t.Error("verified user must not expose the password hash")
	}
}

func TestSeedDefaultAdmin_Idempotent(t *testing.T) {
	users := newMockUserRepo()
	svc := app.NewAuthService(users, mockIssuer{})

	if err := svc.SeedDefaultAdmin(context.Background(), "admin@example.com", "admin-pass-1"); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	first, _ := users.GetByEmail(context.Background(), "admin@example.com")

	if err := svc.SeedDefaultAdmin(context.Background(), "admin@example.com", "other-pass-2"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	second, _ := users.GetByEmail(context.Background(), "admin@example.com")

	if first.ID != second.ID {
		t.Error("seeding twice must not replace the account")
	}
	if second.Role != "admin" {
		t.Errorf("Role = %q, want %q", second.Role, "admin")
	}
}

func TestSeedDefaultAdmin_SkipsWhenUnconfigured(t *testing.T) {
	users := newMockUserRepo()
	svc := app.NewAuthService(users, mockIssuer{})

	if err := svc.SeedDefaultAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users.byEmail) != 0 {
		t.Error("no account should be created without credentials")
	}
}
