// Package authcheck validates bearer tokens against auth-service.
package authcheck

import (
	"context"
	"fmt"
	"net/http"

	"github.com/BigPhilsnr/patient-management-system/shared/middleware"
)

// RemoteValidator asks auth-service GET /validate whether a token is good.
// Any non-2xx answer rejects the token.
type RemoteValidator struct {
	client  *http.Client
	baseURL string
}

func NewRemoteValidator(client *http.Client, authServiceURL string) *RemoteValidator {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteValidator{client: client, baseURL: authServiceURL}
}

func (v *RemoteValidator) ValidateToken(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/validate", nil)
	if err != nil {
		return fmt.Errorf("build validate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("call auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: auth service answered %d", middleware.ErrInvalidToken, resp.StatusCode)
	}
	return nil
}

var _ middleware.TokenValidator = (*RemoteValidator)(nil)
