package query

import (
	"context"

	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
)

// PatientReader is the read model the query service serves from.
type PatientReader interface {
	GetByID(ctx context.Context, id string) (*models.PatientView, error)
	List(ctx context.Context) ([]*models.PatientView, error)
}

// PatientQueryService reads patient views from the Redis cache (with a SQL fallback).
type PatientQueryService struct {
	readRepo PatientReader
}

func NewPatientQueryService(readRepo PatientReader) *PatientQueryService {
	return &PatientQueryService{readRepo: readRepo}
}

func (s *PatientQueryService) GetPatient(ctx context.Context, q cqrs.GetPatientQuery) (*models.PatientView, error) {
	return s.readRepo.GetByID(ctx, q.PatientID)
}

// ListPatients never returns a nil slice so the API renders [] rather than null.
func (s *PatientQueryService) ListPatients(ctx context.Context, _ cqrs.ListPatientsQuery) ([]*models.PatientView, error) {
	views, err := s.readRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []*models.PatientView{}
	}
	return views, nil
}
