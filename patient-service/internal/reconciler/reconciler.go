// Package reconciler retries patient records that stopped short of being
// announced.
package reconciler

import (
	"context"
	"time"

	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/rs/zerolog"
)

// PendingStore finds records whose sync state is behind. Touch moves a
// record to the back of the pending queue.
type PendingStore interface {
	ListPending(ctx context.Context, states []models.SyncState, olderThan time.Time, limit int) ([]*models.Patient, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// Resumer drives one record through its remaining steps.
type Resumer interface {
	Resume(ctx context.Context, p *models.Patient) error
}

type Config struct {
	Interval  time.Duration
	MinAge    time.Duration
	BatchSize int
}

// Result summarises one pass.
type Result struct {
	Resumed int
	Failed  int
}

type Reconciler struct {
	store   PendingStore
	resumer Resumer
	cfg     Config
	log     zerolog.Logger
	now     func() time.Time
}

func New(store PendingStore, resumer Resumer, cfg Config, log zerolog.Logger) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Reconciler{
		store:   store,
		resumer: resumer,
		cfg:     cfg,
		log:     log.With().Str("component", "reconciler").Logger(),
		now:     time.Now,
	}
}

// Run reconciles every Interval until ctx is cancelled. A zero Interval
// disables the loop.
func (r *Reconciler) Run(ctx context.Context) error {
	if r.cfg.Interval <= 0 {
		r.log.Info().Msg("reconciler disabled")
		return nil
	}
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.log.Error().Err(err).Msg("reconcile pass failed")
			}
		}
	}
}

// RunOnce resumes one batch of records untouched for at least MinAge.
func (r *Reconciler) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	pending, err := r.store.ListPending(ctx,
		[]models.SyncState{models.SyncCreated, models.SyncProvisioned},
		r.now().Add(-r.cfg.MinAge), r.cfg.BatchSize)
	if err != nil {
		return res, err
	}

	for _, p := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err := r.resumer.Resume(ctx, p); err != nil {
			res.Failed++
			r.log.Warn().Err(err).Str("patient_id", p.ID).Str("sync_state", string(p.SyncState)).Msg("patient still pending")
			// A record that keeps failing must not hold the head of the
			// queue and starve newer ones.
			if err := r.store.Touch(context.WithoutCancel(ctx), p.ID, r.now()); err != nil {
				r.log.Warn().Err(err).Str("patient_id", p.ID).Msg("failed to requeue pending patient")
			}
			continue
		}
		res.Resumed++
	}
	if len(pending) > 0 {
		r.log.Info().Int("resumed", res.Resumed).Int("failed", res.Failed).Msg("reconcile pass complete")
	}
	return res, nil
}
