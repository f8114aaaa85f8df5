package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// UserResponse is the API representation of an account, never carrying
// the password hash.
type UserResponse struct {
	ID    string `json:"id" doc:"Unique identifier"`
	Name  string `json:"name" doc:"Display name"`
	Email string `json:"email" doc:"Login email"`
	Phone string `json:"phone,omitempty" doc:"Contact phone"`
	Role  string `json:"role" doc:"Account role (owner, admin)"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
	}
}

// AuthResponse carries a signed access token and its account.
type AuthResponse struct {
	Token     string       `json:"token" doc:"Bearer token"`
	ExpiresAt time.Time    `json:"expiresAt" doc:"Token expiry"`
	User      UserResponse `json:"user"`
}

func toAuthResponse(res app.AuthResult) AuthResponse {
	return AuthResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserResponse(res.User),
	}
}

type RegisterInput struct {
	Body struct {
		Name     string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Email    string `json:"email" format:"email" doc:"Login email"`
		Phone    string `json:"phone,omitempty" doc:"Contact phone"`
		Password string `json:"password" minLength:"8" doc:"Password, 8 characters minimum"`
	}
}

type RegisterOutput struct {
	Body AuthResponse
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Login email"`
		Password string `json:"password" minLength:"1" doc:"Password"`
	}
}

type LoginOutput struct {
	Body AuthResponse
}

type MeOutput struct {
	Body UserResponse
}

func registerAuthRoutes(api huma.API, svc *app.AuthService) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/auth/register",
		Summary:       "Create an account",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		result, err := svc.Register(ctx, app.Registration{
			Name:     input.Body.Name,
			Email:    input.Body.Email,
			Phone:    input.Body.Phone,
			Password: input.Body.Password,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RegisterOutput{Body: toAuthResponse(result)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "Sign in with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		result, err := svc.Login(ctx, app.Credentials{
			Email:    input.Body.Email,
			Password: input.Body.Password,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LoginOutput{Body: toAuthResponse(result)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/api/auth/me",
		Summary:     "Get the authenticated account",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*MeOutput, error) {
		user, ok := UserFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}
		return &MeOutput{Body: toUserResponse(user)}, nil
	})
}
