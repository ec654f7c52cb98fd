package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/BigPhilsnr/patient-management-system/shared/events"
	"github.com/rs/zerolog"
)

const (
	EventCountsKey    = "analytics:event_counts"
	PatientsKey       = "analytics:patients"
	BilledPatientsKey = "analytics:billed_patients"
	processedPrefix   = "analytics:processed:"
)

// Projection is the counter update one event contributes: one increment of
// CountField in the CountKey hash and, when SetKey is set, Member added to
// that set. Marker records that the update has been applied.
type Projection struct {
	Marker     string
	CountKey   string
	CountField string
	SetKey     string
	Member     string
}

// CounterStore applies a projection and writes its marker as one unit. It
// reports false, changing nothing, when the marker already exists.
type CounterStore interface {
	Apply(ctx context.Context, pr Projection, markerTTL time.Duration) (bool, error)
}

// Projector folds patient and billing events into Redis counters.
type Projector struct {
	store     CounterStore
	dedupeTTL time.Duration
	log       zerolog.Logger
}

func NewProjector(store CounterStore, dedupeTTL time.Duration, log zerolog.Logger) *Projector {
	if dedupeTTL <= 0 {
		dedupeTTL = 24 * time.Hour
	}
	return &Projector{store: store, dedupeTTL: dedupeTTL, log: log}
}

// HandlePatientEvent counts patient.created and patient.updated events and
// tracks the distinct patients seen. Redelivery of the same envelope is
// detected and skipped.
func (p *Projector) HandlePatientEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.PatientCreated && event.Type != events.PatientUpdated {
		p.log.Debug().Str("type", event.Type).Msg("ignoring event")
		return nil
	}
	pr := p.projection(event)
	if event.Type == events.PatientCreated {
		pr.SetKey, pr.Member = PatientsKey, event.Key
	}
	if applied, err := p.apply(ctx, pr); err != nil || !applied {
		return err
	}
	p.log.Info().Str("type", event.Type).Str("patient_id", event.Key).Msg("patient event projected")
	return nil
}

// HandleBillingEvent counts newly provisioned billing accounts per patient.
func (p *Projector) HandleBillingEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.BillingAccountCreated {
		return nil
	}
	var data events.BillingAccountEvent
	if err := events.DecodeData(event, &data); err != nil {
		return err
	}
	if data.PatientID == "" {
		return fmt.Errorf("billing event %s has no patient id", event.Key)
	}

	// Billing announces an account again whenever provisioning is retried.
	// One account per patient, so the patient id alone identifies it.
	pr := p.projection(event)
	pr.Marker = processedPrefix + event.Type + ":" + data.PatientID
	pr.SetKey, pr.Member = BilledPatientsKey, data.PatientID
	if applied, err := p.apply(ctx, pr); err != nil || !applied {
		return err
	}
	p.log.Info().Str("patient_id", data.PatientID).Str("account_id", data.AccountID).Msg("billing event projected")
	return nil
}

func (p *Projector) projection(event events.Event) Projection {
	return Projection{
		Marker:     processedPrefix + event.Type + ":" + event.Key + ":" + strconv.FormatInt(event.Timestamp.UnixNano(), 10),
		CountKey:   EventCountsKey,
		CountField: event.Type,
	}
}

// apply reports whether this delivery changed the counters. A failure leaves
// no marker behind, so the redelivered entry is counted in full.
func (p *Projector) apply(ctx context.Context, pr Projection) (bool, error) {
	applied, err := p.store.Apply(ctx, pr, p.dedupeTTL)
	if err != nil {
		return false, fmt.Errorf("failed to project %s: %w", pr.CountField, err)
	}
	if !applied {
		p.log.Debug().Str("key", pr.Marker).Msg("event already processed, skipping duplicate")
	}
	return applied, nil
}
