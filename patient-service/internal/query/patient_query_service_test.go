package query

import (
	"context"
	"errors"
	"testing"

	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	views []*models.PatientView
	err   error
}

func (s stubReader) GetByID(_ context.Context, id string) (*models.PatientView, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, v := range s.views {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, errors.New("not found")
}

func (s stubReader) List(context.Context) ([]*models.PatientView, error) {
	return s.views, s.err
}

func TestListPatients_EmptyIsNotNil(t *testing.T) {
	svc := NewPatientQueryService(stubReader{})

	views, err := svc.ListPatients(context.Background(), cqrs.ListPatientsQuery{})
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestGetPatient(t *testing.T) {
	ada := &models.PatientView{ID: "p1", Name: "Ada"}
	svc := NewPatientQueryService(stubReader{views: []*models.PatientView{ada}})

	got, err := svc.GetPatient(context.Background(), cqrs.GetPatientQuery{PatientID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, ada, got)
}

func TestListPatients_PropagatesError(t *testing.T) {
	svc := NewPatientQueryService(stubReader{err: errors.New("db down")})

	_, err := svc.ListPatients(context.Background(), cqrs.ListPatientsQuery{})
	assert.EqualError(t, err, "db down")
}
