package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coursehub/internal/common"
	"coursehub/internal/common/security"
	"coursehub/internal/domain/model"
	"coursehub/internal/storage"
)

const minPasswordLength = 6

type AuthService struct {
	resolver *storage.Resolver
}

func NewAuthService(resolver *storage.Resolver) *AuthService {
	return &AuthService{resolver: resolver}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return nil, fmt.Errorf("email, password and name are required: %w", common.ErrValidation)
	}
	if !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("invalid email address: %w", common.ErrValidation)
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, common.ErrValidation)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := storage.Write(ctx, s.resolver, "users.create",
		func(ctx context.Context, b storage.Backend) (*model.User, error) {
			return b.CreateUser(ctx, model.NewUser{
				Email:        req.Email,
				Name:         req.Name,
				PasswordHash: hash,
				IsAdmin:      false,
			})
		})
	if err != nil {
		return nil, err
	}

	token, err := security.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", common.ErrValidation)
	}

	user, err := storage.Read(ctx, s.resolver, "users.get_by_email",
		func(ctx context.Context, b storage.Backend) (*model.User, error) {
			return b.GetUserByEmail(ctx, req.Email)
		})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, err
	}

	if !security.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// UserByID resolves a live user record, so admin revocation takes
// effect immediately instead of living on in stale token claims.
func (s *AuthService) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return storage.Read(ctx, s.resolver, "users.get",
		func(ctx context.Context, b storage.Backend) (*model.User, error) {
			return b.GetUser(ctx, id)
		})
}
