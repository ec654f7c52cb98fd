package query

import (
	"context"

	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
)

type AccountReader interface {
	GetByPatientID(ctx context.Context, patientID string) (*models.BillingAccount, error)
}

// BillingQueryService serves billing accounts straight from the write store;
// the volume does not justify a cached read model.
type BillingQueryService struct {
	reader AccountReader
}

func NewBillingQueryService(reader AccountReader) *BillingQueryService {
	return &BillingQueryService{reader: reader}
}

func (s *BillingQueryService) GetAccount(ctx context.Context, q cqrs.GetBillingAccountQuery) (*models.BillingAccount, error) {
	return s.reader.GetByPatientID(ctx, q.PatientID)
}
