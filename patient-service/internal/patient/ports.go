package patient

import (
	"context"

	"github.com/BigPhilsnr/patient-management-system/shared/models"
)

// RecordStore is durable keyed storage for patient records. Insert and Update
// enforce email uniqueness atomically and report violations as
// ErrDuplicateEmail; lookups of a missing id report ErrNotFound.
type RecordStore interface {
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// EmailTakenByOther reports whether a record other than id owns email.
	EmailTakenByOther(ctx context.Context, email, id string) (bool, error)
	Insert(ctx context.Context, p *models.Patient) error
	Update(ctx context.Context, p *models.Patient) error
	SetSyncState(ctx context.Context, id string, state models.SyncState) error
}

// BillingAck is the billing service's acknowledgement of a provisioned account.
type BillingAck struct {
	AccountID string
	Status    string
}

// BillingClient provisions a billing account synchronously. It must not
// return successfully until the remote side has durably accepted the
// account; every failure is reported as ErrProvisioningFailed.
type BillingClient interface {
	ProvisionAccount(ctx context.Context, patientID, name, email string) (BillingAck, error)
}

// EventPublisher appends a keyed event to a durable stream.
type EventPublisher interface {
	Publish(ctx context.Context, stream, key, eventType string, data any) error
}

// ViewInvalidator drops cached read views after a committed write so the
// next read reloads from the store.
type ViewInvalidator interface {
	InvalidateView(ctx context.Context, p *models.Patient)
}

// FailureReporter receives publish failures that the mutation path swallows,
// so they stay observable after Create has returned.
type FailureReporter interface {
	ReportPublishFailure(ctx context.Context, patientID, eventType string, err error)
}
