package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/BigPhilsnr/patient-management-system/shared/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthQueryService handles login, validation and token refresh. None of
// them mutate application state.
type AuthQueryService struct {
	users  UserReader
	tokens *middleware.TokenManager
}

func NewAuthQueryService(users UserReader, tokens *middleware.TokenManager) *AuthQueryService {
	return &AuthQueryService{users: users, tokens: tokens}
}

// Login checks the password and issues a token whose subject is the email.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (string, error) {
	user, err := s.users.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(user.Email, user.Role)
}

func (s *AuthQueryService) ValidateToken(ctx context.Context, q cqrs.ValidateTokenQuery) error {
	return s.tokens.ValidateToken(ctx, q.Token)
}

// RefreshToken exchanges a still-valid token for a fresh one with the same
// subject and role.
func (s *AuthQueryService) RefreshToken(_ context.Context, cmd cqrs.RefreshTokenCommand) (string, error) {
	claims, err := s.tokens.Parse(cmd.Token)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(claims.Subject, claims.Role)
}
