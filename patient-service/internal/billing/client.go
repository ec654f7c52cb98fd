// Package billing adapts the billing gRPC service to the orchestrator's
// BillingClient contract.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/BigPhilsnr/patient-management-system/patient-service/internal/patient"
	"github.com/BigPhilsnr/patient-management-system/shared/rpc"
	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Config struct {
	// MaxAttempts bounds calls per ProvisionAccount, the first included.
	MaxAttempts    uint
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client calls CreateBillingAccount with bounded retry. Retrying is safe
// because the billing service provisions idempotently by patient id.
type Client struct {
	rpc rpc.BillingServiceClient
	cfg Config
	log zerolog.Logger
}

func NewClient(conn grpc.ClientConnInterface, cfg Config, log zerolog.Logger) *Client {
	return newClient(rpc.NewBillingServiceClient(conn), cfg, log)
}

func newClient(c rpc.BillingServiceClient, cfg Config, log zerolog.Logger) *Client {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 100 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = time.Second
	}
	return &Client{rpc: c, cfg: cfg, log: log.With().Str("component", "billing_client").Logger()}
}

// ProvisionAccount returns once the billing service has accepted the account.
// Every failure, including ctx expiry, wraps patient.ErrProvisioningFailed.
func (c *Client) ProvisionAccount(ctx context.Context, patientID, name, email string) (patient.BillingAck, error) {
	req := &rpc.BillingRequest{PatientID: patientID, Name: name, Email: email}

	op := func() (*rpc.BillingResponse, error) {
		resp, err := c.rpc.CreateBillingAccount(ctx, req)
		if err != nil {
			if !retryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return resp, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff

	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.cfg.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warn().Err(err).Str("patient_id", patientID).Dur("retry_in", next).Msg("billing call failed, retrying")
		}),
	)
	if err != nil {
		return patient.BillingAck{}, fmt.Errorf("%w: %w", patient.ErrProvisioningFailed, err)
	}
	return patient.BillingAck{AccountID: resp.AccountID, Status: resp.Status}, nil
}

func retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.Aborted:
		return true
	default:
		return false
	}
}

var _ patient.BillingClient = (*Client)(nil)
