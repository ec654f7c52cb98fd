package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BigPhilsnr/patient-management-system/analytics-service/internal/query"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStatsQuerier struct {
	summaryFn func() (*query.Summary, error)
}

func (m *mockStatsQuerier) Summary(context.Context) (*query.Summary, error) {
	return m.summaryFn()
}

func TestGetSummary(t *testing.T) {
	tests := []struct {
		name           string
		summaryFn      func() (*query.Summary, error)
		expectedStatus int
	}{
		{
			name: "success",
			summaryFn: func() (*query.Summary, error) {
				return &query.Summary{EventCounts: map[string]int64{"patient.created": 1}, Patients: 1}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "store unavailable",
			summaryFn:      func() (*query.Summary, error) { return nil, fmt.Errorf("redis down") },
			expectedStatus: http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.GET("/stats", NewStatsHandler(&mockStatsQuerier{summaryFn: tt.summaryFn}).GetSummary)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var got query.Summary
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, int64(1), got.EventCounts["patient.created"])
			}
		})
	}
}
