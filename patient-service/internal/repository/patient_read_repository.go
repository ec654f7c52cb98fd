package repository

import (
	"context"
	"time"

	"github.com/BigPhilsnr/patient-management-system/shared/models"
	sharedredis "github.com/BigPhilsnr/patient-management-system/shared/redis"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const patientViewKeyPrefix = "patient:view:"

// PatientSource is the system-of-record side of the read path.
type PatientSource interface {
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	List(ctx context.Context) ([]*models.Patient, error)
}

// PatientReadRepository serves patient views from Redis first, falling back
// to the SQL store on a miss.
type PatientReadRepository struct {
	source PatientSource
	cache  *sharedredis.ViewCache[models.PatientView]
}

func NewPatientReadRepository(source PatientSource, kv sharedredis.KV, ttl time.Duration, log zerolog.Logger) *PatientReadRepository {
	return &PatientReadRepository{
		source: source,
		cache:  sharedredis.NewViewCache[models.PatientView](kv, patientViewKeyPrefix, ttl, log),
	}
}

// GetByID returns a PatientView from Redis first, then the store.
func (r *PatientReadRepository) GetByID(ctx context.Context, id string) (*models.PatientView, error) {
	if view, ok := r.cache.Get(ctx, id); ok {
		return view, nil
	}
	p, err := r.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := p.ToView()
	r.cache.Set(ctx, id, view)
	return view, nil
}

// List always reads the store; the cache only holds single records.
func (r *PatientReadRepository) List(ctx context.Context) ([]*models.PatientView, error) {
	patients, err := r.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(patients, func(p *models.Patient, _ int) *models.PatientView {
		return p.ToView()
	}), nil
}

// InvalidateView drops the cached view after a committed write. The next
// GetByID refills it from the store.
func (r *PatientReadRepository) InvalidateView(ctx context.Context, p *models.Patient) {
	r.cache.Delete(ctx, p.ID)
}
