package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/repository/migrations"
	"github.com/BigPhilsnr/patient-management-system/shared/database"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
)

var ErrAccountNotFound = errors.New("billing account not found")

const accountColumns = `account_id, patient_id, name, email, status, created_at`

// BillingAccountStore persists one billing account per patient. The UNIQUE
// constraint on patient_id makes provisioning idempotent.
type BillingAccountStore struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewBillingAccountStore(ctx context.Context, db *sql.DB, dialect database.Dialect) (*BillingAccountStore, error) {
	fsys, err := database.Migrations(migrations.FS, dialect)
	if err != nil {
		return nil, err
	}
	if err := database.ApplyMigrations(ctx, db, dialect, fsys); err != nil {
		return nil, fmt.Errorf("run billing migrations: %w", err)
	}
	return &BillingAccountStore{db: db, dialect: dialect}, nil
}

// CreateIfAbsent inserts account unless the patient already has one. It
// returns the stored account and whether this call created it.
func (s *BillingAccountStore) CreateIfAbsent(ctx context.Context, account *models.BillingAccount) (*models.BillingAccount, bool, error) {
	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO billing_accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (patient_id) DO NOTHING`),
		account.AccountID, account.PatientID, account.Name, account.Email, account.Status,
		database.ToMillis(account.CreatedAt),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create billing account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 1 {
		return account, true, nil
	}

	existing, err := s.GetByPatientID(ctx, account.PatientID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *BillingAccountStore) GetByPatientID(ctx context.Context, patientID string) (*models.BillingAccount, error) {
	var (
		a         models.BillingAccount
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind(`SELECT `+accountColumns+` FROM billing_accounts WHERE patient_id = ?`), patientID,
	).Scan(&a.AccountID, &a.PatientID, &a.Name, &a.Email, &a.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: patient %s", ErrAccountNotFound, patientID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get billing account: %w", err)
	}
	a.CreatedAt = database.FromMillis(createdAt)
	return &a, nil
}
