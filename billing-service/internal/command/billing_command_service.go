package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/events"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/BigPhilsnr/patient-management-system/shared/rpc"
	"github.com/BigPhilsnr/patient-management-system/shared/utils"
	"github.com/rs/zerolog"
)

var ErrInvalidRequest = errors.New("invalid billing request")

// AccountStore is the write store the command service provisions into.
type AccountStore interface {
	CreateIfAbsent(ctx context.Context, account *models.BillingAccount) (*models.BillingAccount, bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, key, eventType string, data any) error
}

// BillingCommandService provisions billing accounts and announces new ones.
type BillingCommandService struct {
	store     AccountStore
	publisher EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewBillingCommandService(store AccountStore, publisher EventPublisher, log zerolog.Logger) *BillingCommandService {
	return &BillingCommandService{
		store:     store,
		publisher: publisher,
		log:       log.With().Str("component", "billing_commands").Logger(),
		now:       time.Now,
	}
}

// ProvisionAccount returns the patient's account, creating it on first call.
// Repeat calls for the same patient return the original account unchanged
// and announce it again.
func (s *BillingCommandService) ProvisionAccount(ctx context.Context, cmd cqrs.ProvisionBillingAccountCommand) (*models.BillingAccount, error) {
	if strings.TrimSpace(cmd.PatientID) == "" {
		return nil, errors.Join(ErrInvalidRequest, errors.New("patient id is required"))
	}
	if strings.TrimSpace(cmd.Email) == "" {
		return nil, errors.Join(ErrInvalidRequest, errors.New("email is required"))
	}

	account, created, err := s.store.CreateIfAbsent(ctx, &models.BillingAccount{
		AccountID: utils.GenerateAccountID("bill"),
		PatientID: cmd.PatientID,
		Name:      cmd.Name,
		Email:     cmd.Email,
		Status:    rpc.BillingStatusActive,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info().Str("patient_id", cmd.PatientID).Str("account_id", account.AccountID).Msg("billing account provisioned")
	} else {
		s.log.Info().Str("patient_id", cmd.PatientID).Str("account_id", account.AccountID).Msg("billing account already provisioned")
	}

	// Announced on every call. Consumers dedupe on the patient id.
	s.announce(ctx, account)
	return account, nil
}

func (s *BillingCommandService) announce(ctx context.Context, account *models.BillingAccount) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.BillingEventsStream, account.PatientID, events.BillingAccountCreated, events.BillingAccountEvent{
		AccountID: account.AccountID,
		PatientID: account.PatientID,
		Email:     account.Email,
	}); err != nil {
		s.log.Error().Err(err).Str("patient_id", account.PatientID).Msg("failed to publish billing.account_created event")
	}
}
