package command

import (
	"context"
	"fmt"

	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/BigPhilsnr/patient-management-system/shared/utils"
	"github.com/rs/zerolog"
)

type UserWriter interface {
	CreateIfAbsent(ctx context.Context, user *models.User) (bool, error)
}

// SeedUser registers the bootstrap login. An existing user with the same
// email is left untouched, including its password.
func SeedUser(ctx context.Context, users UserWriter, email, password, role string, log zerolog.Logger) error {
	if email == "" || password == "" {
		return nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	created, err := users.CreateIfAbsent(ctx, &models.User{
		ID:           utils.GenerateID(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("email", email).Str("role", role).Msg("seeded user")
	}
	return nil
}
