package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/patient"
	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/repository/migrations"
	"github.com/BigPhilsnr/patient-management-system/shared/database"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/BigPhilsnr/patient-management-system/shared/utils"
)

const patientColumns = `id, name, email, address, date_of_birth, registered_date, sync_state, created_at, updated_at`

// PatientStore is the SQL system of record for patients. The UNIQUE
// constraint on patients.email is what makes concurrent creates safe.
type PatientStore struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewPatientStore applies the embedded schema for dialect and returns a store
// over db.
func NewPatientStore(ctx context.Context, db *sql.DB, dialect database.Dialect) (*PatientStore, error) {
	fsys, err := database.Migrations(migrations.FS, dialect)
	if err != nil {
		return nil, err
	}
	if err := database.ApplyMigrations(ctx, db, dialect, fsys); err != nil {
		return nil, fmt.Errorf("run patient migrations: %w", err)
	}
	return &PatientStore{db: db, dialect: dialect}, nil
}

func (s *PatientStore) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	if !utils.ValidatePatientID(id) {
		return nil, fmt.Errorf("%w: %s", patient.ErrNotFound, id)
	}
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+patientColumns+` FROM patients WHERE id = ?`), id)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", patient.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

func (s *PatientStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, s.q(`SELECT EXISTS (SELECT 1 FROM patients WHERE email = ?)`), email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check patient email: %w", err)
	}
	return exists, nil
}

func (s *PatientStore) EmailTakenByOther(ctx context.Context, email, id string) (bool, error) {
	if !utils.ValidatePatientID(id) {
		return s.ExistsByEmail(ctx, email)
	}
	var exists bool
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT EXISTS (SELECT 1 FROM patients WHERE email = ? AND id <> ?)`), email, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check patient email: %w", err)
	}
	return exists, nil
}

func (s *PatientStore) Insert(ctx context.Context, p *models.Patient) error {
	state := p.SyncState
	if state == "" {
		state = models.SyncCreated
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO patients (`+patientColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Email, p.Address, p.DateOfBirth, p.RegisteredDate, string(state),
		database.ToMillis(p.CreatedAt), database.ToMillis(p.UpdatedAt),
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err, "patients", "email") {
			return fmt.Errorf("%w: %s", patient.ErrDuplicateEmail, p.Email)
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields. Sync state and registered date are
// left as stored.
func (s *PatientStore) Update(ctx context.Context, p *models.Patient) error {
	if !utils.ValidatePatientID(p.ID) {
		return fmt.Errorf("%w: %s", patient.ErrNotFound, p.ID)
	}
	result, err := s.db.ExecContext(ctx, s.q(`
		UPDATE patients
		SET name = ?, email = ?, address = ?, date_of_birth = ?, updated_at = ?
		WHERE id = ?`),
		p.Name, p.Email, p.Address, p.DateOfBirth, database.ToMillis(p.UpdatedAt), p.ID,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err, "patients", "email") {
			return fmt.Errorf("%w: %s", patient.ErrDuplicateEmail, p.Email)
		}
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return expectOneRow(result, p.ID)
}

func (s *PatientStore) SetSyncState(ctx context.Context, id string, state models.SyncState) error {
	result, err := s.db.ExecContext(ctx,
		s.q(`UPDATE patients SET sync_state = ?, updated_at = ? WHERE id = ?`),
		string(state), database.ToMillis(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set patient sync state: %w", err)
	}
	return expectOneRow(result, id)
}

// Touch sets updated_at without changing anything else, which moves the
// record behind newer ones in ListPending.
func (s *PatientStore) Touch(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		s.q(`UPDATE patients SET updated_at = ? WHERE id = ?`),
		database.ToMillis(at), id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch patient: %w", err)
	}
	return expectOneRow(result, id)
}

// List returns every patient ordered by creation time.
func (s *PatientStore) List(ctx context.Context) ([]*models.Patient, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return collect(rows)
}

// ListPending returns up to limit records whose sync state is one of states
// and that have not been touched since olderThan, oldest first.
func (s *PatientStore) ListPending(ctx context.Context, states []models.SyncState, olderThan time.Time, limit int) ([]*models.Patient, error) {
	if len(states) == 0 || limit <= 0 {
		return nil, nil
	}
	args := make([]any, 0, len(states)+2)
	for _, st := range states {
		args = append(args, string(st))
	}
	args = append(args, database.ToMillis(olderThan), limit)

	query := `SELECT ` + patientColumns + ` FROM patients
		WHERE sync_state IN (` + strings.TrimSuffix(strings.Repeat("?, ", len(states)), ", ") + `)
		AND updated_at < ?
		ORDER BY updated_at
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending patients: %w", err)
	}
	return collect(rows)
}

func (s *PatientStore) q(query string) string {
	return s.dialect.Rebind(query)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*models.Patient, error) {
	var (
		p                    models.Patient
		state                string
		createdAt, updatedAt int64
	)
	if err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Address, &p.DateOfBirth, &p.RegisteredDate,
		&state, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	p.SyncState = models.SyncState(state)
	p.CreatedAt = database.FromMillis(createdAt)
	p.UpdatedAt = database.FromMillis(updatedAt)
	return &p, nil
}

func collect(rows *sql.Rows) ([]*models.Patient, error) {
	defer rows.Close()
	var out []*models.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}
	return out, nil
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", patient.ErrNotFound, id)
	}
	return nil
}

var _ patient.RecordStore = (*PatientStore)(nil)
