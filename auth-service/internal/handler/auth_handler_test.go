package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// ---- mock implementation ----

type mockAuthQuerier struct {
	loginFn    func(cqrs.LoginCommand) (string, error)
	validateFn func(cqrs.ValidateTokenQuery) error
	refreshFn  func(cqrs.RefreshTokenCommand) (string, error)
}

func (m *mockAuthQuerier) Login(_ context.Context, cmd cqrs.LoginCommand) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(cmd)
	}
	return "", fmt.Errorf("not configured")
}

func (m *mockAuthQuerier) ValidateToken(_ context.Context, q cqrs.ValidateTokenQuery) error {
	if m.validateFn != nil {
		return m.validateFn(q)
	}
	return fmt.Errorf("not configured")
}

func (m *mockAuthQuerier) RefreshToken(_ context.Context, cmd cqrs.RefreshTokenCommand) (string, error) {
	if m.refreshFn != nil {
		return m.refreshFn(cmd)
	}
	return "", fmt.Errorf("not configured")
}

// ---- helper ----

func newAuthTestRouter(qrys AuthQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(qrys)
	r.POST("/login", h.Login)
	r.GET("/validate", h.Validate)
	r.POST("/refresh", h.RefreshToken)
	return r
}

func authDoRequest(router *gin.Engine, method, url string, body any, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- tests ----

func TestLogin(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		loginFn        func(cqrs.LoginCommand) (string, error)
		expectedStatus int
	}{
		{
			name:           "success - valid credentials return JWT",
			body:           map[string]string{"email": "testuser@test.com", "password": "password123"},
			loginFn:        func(cqrs.LoginCommand) (string, error) { return "mock.jwt.token", nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthorised - invalid credentials",
			body:           map[string]string{"email": "testuser@test.com", "password": "wrongpass"},
			loginFn:        func(cqrs.LoginCommand) (string, error) { return "", fmt.Errorf("invalid credentials") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad request - missing password",
			body:           map[string]string{"email": "testuser@test.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing email",
			body:           map[string]string{"password": "password123"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - invalid email format",
			body:           map[string]string{"email": "not-an-email", "password": "password123"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockAuthQuerier{loginFn: tt.loginFn})
			w := authDoRequest(router, http.MethodPost, "/login", tt.body, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		validateFn     func(cqrs.ValidateTokenQuery) error
		expectedStatus int
	}{
		{
			name:   "success - valid token",
			header: "Bearer good.jwt.token",
			validateFn: func(q cqrs.ValidateTokenQuery) error {
				if q.Token != "good.jwt.token" {
					return fmt.Errorf("unexpected token %q", q.Token)
				}
				return nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthorised - rejected token",
			header:         "Bearer bad.jwt.token",
			validateFn:     func(cqrs.ValidateTokenQuery) error { return fmt.Errorf("invalid token") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unauthorised - missing header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unauthorised - wrong scheme",
			header:         "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockAuthQuerier{validateFn: tt.validateFn})
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := authDoRequest(router, http.MethodGet, "/validate", nil, headers)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		refreshFn      func(cqrs.RefreshTokenCommand) (string, error)
		expectedStatus int
	}{
		{
			name:           "success - valid token returns new JWT",
			body:           map[string]string{"token": "valid.jwt.token"},
			refreshFn:      func(cqrs.RefreshTokenCommand) (string, error) { return "new.jwt.token", nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unauthorised - invalid token",
			body:           map[string]string{"token": "invalid.jwt.token"},
			refreshFn:      func(cqrs.RefreshTokenCommand) (string, error) { return "", fmt.Errorf("invalid token") },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad request - missing token field",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockAuthQuerier{refreshFn: tt.refreshFn})
			w := authDoRequest(router, http.MethodPost, "/refresh", tt.body, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, "body: %s", w.Body.String())
		})
	}
}
