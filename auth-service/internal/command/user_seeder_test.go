package command

import (
	"context"
	"testing"

	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/BigPhilsnr/patient-management-system/shared/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers map[string]*models.User

func (m memUsers) CreateIfAbsent(_ context.Context, u *models.User) (bool, error) {
	if _, ok := m[u.Email]; ok {
		return false, nil
	}
	m[u.Email] = u
	return true, nil
}

func TestSeedUser(t *testing.T) {
	users := memUsers{}

	require.NoError(t, SeedUser(context.Background(), users, "testuser@test.com", "password123", "ADMIN", zerolog.Nop()))
	seeded := users["testuser@test.com"]
	require.NotNil(t, seeded)
	assert.Equal(t, "ADMIN", seeded.Role)
	assert.True(t, utils.CheckPassword("password123", seeded.PasswordHash))

	require.NoError(t, SeedUser(context.Background(), users, "testuser@test.com", "other", "USER", zerolog.Nop()))
	assert.Same(t, seeded, users["testuser@test.com"])
}

func TestSeedUser_SkipsWhenUnset(t *testing.T) {
	users := memUsers{}
	require.NoError(t, SeedUser(context.Background(), users, "", "", "ADMIN", zerolog.Nop()))
	assert.Empty(t, users)
}
