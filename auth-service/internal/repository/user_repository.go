package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BigPhilsnr/patient-management-system/auth-service/internal/repository/migrations"
	"github.com/BigPhilsnr/patient-management-system/shared/database"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewUserRepository(ctx context.Context, db *sql.DB, dialect database.Dialect) (*UserRepository, error) {
	fsys, err := database.Migrations(migrations.FS, dialect)
	if err != nil {
		return nil, err
	}
	if err := database.ApplyMigrations(ctx, db, dialect, fsys); err != nil {
		return nil, fmt.Errorf("run auth migrations: %w", err)
	}
	return &UserRepository{db: db, dialect: dialect}, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx,
		r.dialect.Rebind(`SELECT id, email, password_hash, role FROM users WHERE email = ?`), email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateIfAbsent inserts user unless the email is already registered and
// reports whether it did.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user *models.User) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(`
		INSERT INTO users (id, email, password_hash, role)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING`),
		user.ID, user.Email, user.PasswordHash, user.Role,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows == 1, nil
}
