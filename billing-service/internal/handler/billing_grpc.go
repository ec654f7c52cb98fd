package handler

import (
	"context"
	"errors"

	"github.com/BigPhilsnr/patient-management-system/billing-service/internal/command"
	"github.com/BigPhilsnr/patient-management-system/shared/cqrs"
	"github.com/BigPhilsnr/patient-management-system/shared/models"
	"github.com/BigPhilsnr/patient-management-system/shared/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// BillingCommander defines the write-side operation used by the gRPC server.
type BillingCommander interface {
	ProvisionAccount(ctx context.Context, cmd cqrs.ProvisionBillingAccountCommand) (*models.BillingAccount, error)
}

// BillingGRPCServer exposes provisioning over gRPC.
type BillingGRPCServer struct {
	commands BillingCommander
}

func NewBillingGRPCServer(commands BillingCommander) *BillingGRPCServer {
	return &BillingGRPCServer{commands: commands}
}

func (s *BillingGRPCServer) CreateBillingAccount(ctx context.Context, in *rpc.BillingRequest) (*rpc.BillingResponse, error) {
	account, err := s.commands.ProvisionAccount(ctx, cqrs.ProvisionBillingAccountCommand{
		PatientID: in.PatientID,
		Name:      in.Name,
		Email:     in.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, command.ErrInvalidRequest):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return nil, status.FromContextError(err).Err()
		default:
			return nil, status.Error(codes.Unavailable, "billing store unavailable")
		}
	}
	return &rpc.BillingResponse{AccountID: account.AccountID, Status: account.Status}, nil
}

var _ rpc.BillingServiceServer = (*BillingGRPCServer)(nil)
