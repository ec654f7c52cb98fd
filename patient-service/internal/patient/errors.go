// Package patient defines the error kinds and collaborator contracts of the
// patient mutation path.
package patient

import "errors"

var (
	// ErrDuplicateEmail: another record already owns the email.
	ErrDuplicateEmail = errors.New("patient email already exists")
	// ErrNotFound: the update target does not exist.
	ErrNotFound = errors.New("patient not found")
	// ErrInvalidDate: a date field is not an ISO YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrStoreUnavailable: the record store failed; nothing downstream ran.
	ErrStoreUnavailable = errors.New("patient store unavailable")
	// ErrProvisioningFailed: the billing call failed or timed out after the
	// record was durably persisted.
	ErrProvisioningFailed = errors.New("billing provisioning failed")
	// ErrPublishFailed: the event could not be handed to the stream. Never
	// fails a mutation.
	ErrPublishFailed = errors.New("event publish failed")
)
