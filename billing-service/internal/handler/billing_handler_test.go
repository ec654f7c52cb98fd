package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/command"
	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/repository"
	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/BigPhilsnr/patient-management-system/shared/rpc"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ---- mock implementations ----

type mockBillingCommander struct {
	provisionFn func(cqrs.ProvisionBillingAccountCommand) (*models.BillingAccount, error)
}

func (m *mockBillingCommander) ProvisionAccount(_ context.Context, cmd cqrs.ProvisionBillingAccountCommand) (*models.BillingAccount, error) {
	if m.provisionFn != nil {
		return m.provisionFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockBillingQuerier struct {
	getFn func(cqrs.GetBillingAccountQuery) (*models.BillingAccount, error)
}

func (m *mockBillingQuerier) GetAccount(_ context.Context, q cqrs.GetBillingAccountQuery) (*models.BillingAccount, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

var testAccount = &models.BillingAccount{
	AccountID: "bill-0123456789ab",
	PatientID: "p-1",
	Name:      "Ada",
	Email:     "ada@x.com",
	Status:    rpc.BillingStatusActive,
	CreatedAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
}

// ---- gRPC ----

func TestCreateBillingAccount(t *testing.T) {
	tests := []struct {
		name         string
		provisionFn  func(cqrs.ProvisionBillingAccountCommand) (*models.BillingAccount, error)
		expectedCode codes.Code
	}{
		{
			name:         "success - account provisioned",
			provisionFn:  func(cqrs.ProvisionBillingAccountCommand) (*models.BillingAccount, error) { return testAccount, nil },
			expectedCode: codes.OK,
		},
		{
			name: "invalid argument - missing patient id",
			provisionFn: func(cqrs.ProvisionBillingAccountCommand) (*models.BillingAccount, error) {
				return nil, errors.Join(command.ErrInvalidRequest, errors.New("patient id is required"))
			},
			expectedCode: codes.InvalidArgument,
		},
		{
			name: "deadline exceeded - caller gave up",
			provisionFn: func(cqrs.ProvisionBillingAccountCommand) (*models.BillingAccount, error) {
				return nil, fmt.Errorf("insert: %w", context.DeadlineExceeded)
			},
			expectedCode: codes.DeadlineExceeded,
		},
		{
			name: "unavailable - store failure",
			provisionFn: func(cqrs.ProvisionBillingAccountCommand) (*models.BillingAccount, error) {
				return nil, errors.New("db down")
			},
			expectedCode: codes.Unavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewBillingGRPCServer(&mockBillingCommander{provisionFn: tt.provisionFn})
			resp, err := srv.CreateBillingAccount(context.Background(), &rpc.BillingRequest{PatientID: "p-1", Name: "Ada", Email: "ada@x.com"})
			assert.Equal(t, tt.expectedCode, status.Code(err))
			if tt.expectedCode == codes.OK {
				assert.Equal(t, &rpc.BillingResponse{AccountID: testAccount.AccountID, Status: rpc.BillingStatusActive}, resp)
			}
		})
	}
}

// ---- HTTP ----

func TestGetAccount(t *testing.T) {
	tests := []struct {
		name           string
		getFn          func(cqrs.GetBillingAccountQuery) (*models.BillingAccount, error)
		expectedStatus int
	}{
		{
			name:           "success - account exists",
			getFn:          func(cqrs.GetBillingAccountQuery) (*models.BillingAccount, error) { return testAccount, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found - no account for patient",
			getFn: func(cqrs.GetBillingAccountQuery) (*models.BillingAccount, error) {
				return nil, repository.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "internal error - store failure",
			getFn: func(cqrs.GetBillingAccountQuery) (*models.BillingAccount, error) {
				return nil, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.GET("/billing-accounts/:patientId", NewBillingHTTPHandler(&mockBillingQuerier{getFn: tt.getFn}).GetAccount)

			req := httptest.NewRequest(http.MethodGet, "/billing-accounts/p-1", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				var got models.BillingAccount
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, testAccount.AccountID, got.AccountID)
			}
		})
	}
}
