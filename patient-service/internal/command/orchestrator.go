package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/patient"
	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/events"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/BigPhilsnr/patient-management-system/shared/utils"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/BigPhilsnr/patient-management-system/patient-service/internal/command"

// Options tunes the orchestrator. Zero values fall back to the defaults.
type Options struct {
	BillingTimeout time.Duration
	PublishTimeout time.Duration
	// Views and Reporter are optional.
	Views    patient.ViewInvalidator
	Reporter patient.FailureReporter
}

const (
	DefaultBillingTimeout = 5 * time.Second
	DefaultPublishTimeout = 2 * time.Second
)

// PatientOrchestrator runs the patient mutation path: uniqueness check,
// persist, billing provisioning and event announcement, in that order.
type PatientOrchestrator struct {
	store     patient.RecordStore
	billing   patient.BillingClient
	publisher patient.EventPublisher
	views     patient.ViewInvalidator
	reporter  patient.FailureReporter

	billingTimeout time.Duration
	publishTimeout time.Duration

	log    zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

func NewPatientOrchestrator(
	store patient.RecordStore,
	billing patient.BillingClient,
	publisher patient.EventPublisher,
	opts Options,
	log zerolog.Logger,
) *PatientOrchestrator {
	o := &PatientOrchestrator{
		store:          store,
		billing:        billing,
		publisher:      publisher,
		views:          opts.Views,
		reporter:       opts.Reporter,
		billingTimeout: opts.BillingTimeout,
		publishTimeout: opts.PublishTimeout,
		log:            log.With().Str("component", "orchestrator").Logger(),
		tracer:         otel.Tracer(tracerName),
		now:            time.Now,
		newID:          utils.GenerateID,
	}
	if o.billingTimeout <= 0 {
		o.billingTimeout = DefaultBillingTimeout
	}
	if o.publishTimeout <= 0 {
		o.publishTimeout = DefaultPublishTimeout
	}
	return o
}

// Create registers a new patient. On ErrProvisioningFailed the returned
// patient is the record that was already persisted, so callers can surface
// its id. A failed announcement is reported but never fails the call.
func (o *PatientOrchestrator) Create(ctx context.Context, cmd cqrs.CreatePatientCommand) (*models.Patient, error) {
	ctx, span := o.tracer.Start(ctx, "PatientOrchestrator.Create")
	defer span.End()

	exists, err := o.store.ExistsByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, fail(span, storeError(err))
	}
	if exists {
		return nil, fail(span, duplicateEmail(cmd.Email))
	}

	dob, err := parseDate("dateOfBirth", cmd.DateOfBirth)
	if err != nil {
		return nil, fail(span, err)
	}
	registered, err := parseDate("registeredDate", cmd.RegisteredDate)
	if err != nil {
		return nil, fail(span, err)
	}

	now := o.now().UTC()
	p := &models.Patient{
		ID:             o.newID(),
		Name:           cmd.Name,
		Email:          cmd.Email,
		Address:        cmd.Address,
		DateOfBirth:    dob,
		RegisteredDate: registered,
		SyncState:      models.SyncCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := o.store.Insert(ctx, p); err != nil {
		return nil, fail(span, storeError(err))
	}
	span.SetAttributes(attribute.String("patient.id", p.ID))
	o.invalidateView(ctx, p)

	if err := o.provision(ctx, p); err != nil {
		return p, fail(span, err)
	}

	if err := o.announce(ctx, p); err != nil {
		span.RecordError(err)
		o.log.Error().Err(err).Str("patient_id", p.ID).Msg("patient created but event not published")
		if o.reporter != nil {
			o.reporter.ReportPublishFailure(context.WithoutCancel(ctx), p.ID, events.PatientCreated, err)
		}
	}

	o.log.Info().Str("patient_id", p.ID).Str("sync_state", string(p.SyncState)).Msg("patient created")
	return p, nil
}

// Update replaces the mutable fields of an existing patient. It neither
// provisions billing nor publishes an event.
func (o *PatientOrchestrator) Update(ctx context.Context, cmd cqrs.UpdatePatientCommand) (*models.Patient, error) {
	ctx, span := o.tracer.Start(ctx, "PatientOrchestrator.Update",
		trace.WithAttributes(attribute.String("patient.id", cmd.PatientID)))
	defer span.End()

	taken, err := o.store.EmailTakenByOther(ctx, cmd.Email, cmd.PatientID)
	if err != nil {
		return nil, fail(span, storeError(err))
	}
	if taken {
		return nil, fail(span, duplicateEmail(cmd.Email))
	}

	p, err := o.store.GetByID(ctx, cmd.PatientID)
	if err != nil {
		return nil, fail(span, storeError(err))
	}

	dob, err := parseDate("dateOfBirth", cmd.DateOfBirth)
	if err != nil {
		return nil, fail(span, err)
	}

	p.Name = cmd.Name
	p.Email = cmd.Email
	p.Address = cmd.Address
	p.DateOfBirth = dob
	p.UpdatedAt = o.now().UTC()
	if err := o.store.Update(ctx, p); err != nil {
		return nil, fail(span, storeError(err))
	}
	o.invalidateView(ctx, p)

	o.log.Info().Str("patient_id", p.ID).Msg("patient updated")
	return p, nil
}

// Resume drives a record that stopped short of ANNOUNCED through its
// remaining steps. Unlike Create, a publish failure is returned.
func (o *PatientOrchestrator) Resume(ctx context.Context, p *models.Patient) error {
	ctx, span := o.tracer.Start(ctx, "PatientOrchestrator.Resume",
		trace.WithAttributes(
			attribute.String("patient.id", p.ID),
			attribute.String("patient.sync_state", string(p.SyncState)),
		))
	defer span.End()

	switch p.SyncState {
	case models.SyncCreated:
		if err := o.provision(ctx, p); err != nil {
			return fail(span, err)
		}
		fallthrough
	case models.SyncProvisioned:
		if err := o.announce(ctx, p); err != nil {
			return fail(span, err)
		}
	}
	return nil
}

func (o *PatientOrchestrator) provision(ctx context.Context, p *models.Patient) error {
	callCtx, cancel := context.WithTimeout(ctx, o.billingTimeout)
	defer cancel()

	ack, err := o.billing.ProvisionAccount(callCtx, p.ID, p.Name, p.Email)
	if err != nil {
		if !errors.Is(err, patient.ErrProvisioningFailed) {
			err = fmt.Errorf("%w: %w", patient.ErrProvisioningFailed, err)
		}
		o.log.Warn().Err(err).Str("patient_id", p.ID).Msg("billing provisioning failed")
		return err
	}
	o.log.Debug().Str("patient_id", p.ID).Str("account_id", ack.AccountID).Msg("billing account provisioned")

	// Billing has committed; the state write must not be lost to a caller
	// that hangs up now.
	o.advance(context.WithoutCancel(ctx), p, models.SyncProvisioned)
	return nil
}

func (o *PatientOrchestrator) announce(ctx context.Context, p *models.Patient) error {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.publishTimeout)
	defer cancel()

	err := o.publisher.Publish(pubCtx, events.PatientEventsStream, p.ID, events.PatientCreated, events.PatientEvent{
		PatientID: p.ID,
		Name:      p.Name,
		Email:     p.Email,
		EventType: events.PatientCreated,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", patient.ErrPublishFailed, err)
	}

	o.advance(context.WithoutCancel(ctx), p, models.SyncAnnounced)
	return nil
}

// advance records progress. A failed write leaves the record behind its true
// state, which only causes an idempotent repeat on reconciliation.
func (o *PatientOrchestrator) advance(ctx context.Context, p *models.Patient, state models.SyncState) {
	if err := o.store.SetSyncState(ctx, p.ID, state); err != nil {
		o.log.Warn().Err(err).Str("patient_id", p.ID).Str("sync_state", string(state)).Msg("failed to record sync state")
		return
	}
	p.SyncState = state
}

func (o *PatientOrchestrator) invalidateView(ctx context.Context, p *models.Patient) {
	if o.views != nil {
		o.views.InvalidateView(ctx, p)
	}
}

func parseDate(field, value string) (models.Date, error) {
	d, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, fmt.Errorf("%w: %s: %w", patient.ErrInvalidDate, field, err)
	}
	return d, nil
}

func duplicateEmail(email string) error {
	return fmt.Errorf("%w: %s", patient.ErrDuplicateEmail, email)
}

// storeError passes domain outcomes through and classifies everything else
// as the store being unavailable.
func storeError(err error) error {
	if errors.Is(err, patient.ErrDuplicateEmail) ||
		errors.Is(err, patient.ErrNotFound) ||
		errors.Is(err, patient.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", patient.ErrStoreUnavailable, err)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
