package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/neomorfeo/rentiq/internal/domain"
)

const minPasswordLength = 8

// Credentials is an email/password login attempt.
type Credentials struct {
	Email    string
	Password string
}

// Registration is a new account request.
type Registration struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// AuthResult is a successful authentication: a signed token and the account
// it identifies, password hash stripped.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// AuthService manages accounts and access tokens. Passwords are stored as
// bcrypt hashes only.
type AuthService struct {
	users  domain.UserRepository
	issuer domain.TokenIssuer
}

// NewAuthService creates an auth service over the user repository.
func NewAuthService(users domain.UserRepository, issuer domain.TokenIssuer) *AuthService {
	return &AuthService{users: users, issuer: issuer}
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	email := normalizeEmail(reg.Email)
	if email == "" {
		return AuthResult{}, &domain.ValidationError{Message: "email is required"}
	}
	if len(reg.Password) < minPasswordLength {
		return AuthResult{}, &domain.ValidationError{
			Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength),
		}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, &domain.EmailConflictError{Email: email}
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return AuthResult{}, fmt.Errorf("checking existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hashing password: %w", err)
	}

	id, err := generateID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generating user id: %w", err)
	}

	user := domain.User{
		ID:           id,
		Name:         strings.TrimSpace(reg.Name),
		Email:        email,
		Phone:        strings.TrimSpace(reg.Phone),
		PasswordHash: string(hash),
		Role:         "owner",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, fmt.Errorf("creating account: %w", err)
	}
	return s.signIn(user)
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords return the same error.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("loading account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return AuthResult{}, domain.ErrInvalidCredentials
	}
	return s.signIn(user)
}

// Verify validates a bearer token and returns the account it identifies.
func (s *AuthService) Verify(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// SeedDefaultAdmin creates the bootstrap admin account when no account with
// that email exists yet. Used at startup so a fresh deployment is reachable.
func (s *AuthService) SeedDefaultAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("checking admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	id, err := generateID()
	if err != nil {
		return fmt.Errorf("generating admin id: %w", err)
	}

	user := domain.User{
		ID:           id,
		Name:         "Administrateur",
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}
	slog.InfoContext(ctx, "seeded default admin account", "email", email)
	return nil
}

func (s *AuthService) signIn(user domain.User) (AuthResult, error) {
	token, expires, err := s.issuer.Issue(user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issuing token: %w", err)
	}
	user.PasswordHash = ""
	return AuthResult{Token: token, ExpiresAt: expires, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
