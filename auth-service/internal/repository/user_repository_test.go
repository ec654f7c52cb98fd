package repository

import (
	"context"
	"testing"

	"github.com/BigPhilsnr/patient-management-system/shared/database"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T) *UserRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo, err := NewUserRepository(ctx, db, database.SQLite)
	require.NoError(t, err)
	return repo
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	user := &models.User{ID: "u-1", Email: "testuser@test.com", PasswordHash: "hash", Role: "ADMIN"}

	created, err := repo.CreateIfAbsent(ctx, user)
	require.NoError(t, err)
	assert.True(t, created)

	got, err := repo.GetByEmail(ctx, "testuser@test.com")
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestUserRepository_CreateIfAbsentKeepsExisting(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	_, err := repo.CreateIfAbsent(ctx, &models.User{ID: "u-1", Email: "a@x.com", PasswordHash: "first", Role: "ADMIN"})
	require.NoError(t, err)

	created, err := repo.CreateIfAbsent(ctx, &models.User{ID: "u-2", Email: "a@x.com", PasswordHash: "second", Role: "USER"})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "first", got.PasswordHash)
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
