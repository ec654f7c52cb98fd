// Package rpc holds the gRPC contracts shared between services and the
// client-side dial helpers.
package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	BillingServiceName             = "billing.BillingService"
	CreateBillingAccountFullMethod = "/billing.BillingService/CreateBillingAccount"
)

// Account statuses returned by the billing service.
const (
	BillingStatusActive = "ACTIVE"
)

type BillingRequest struct {
	PatientID string `json:"patientId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

type BillingResponse struct {
	AccountID string `json:"accountId"`
	Status    string `json:"status"`
}

// BillingServiceClient is the client API for the billing service.
type BillingServiceClient interface {
	CreateBillingAccount(ctx context.Context, in *BillingRequest, opts ...grpc.CallOption) (*BillingResponse, error)
}

type billingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBillingServiceClient(cc grpc.ClientConnInterface) BillingServiceClient {
	return &billingServiceClient{cc: cc}
}

func (c *billingServiceClient) CreateBillingAccount(ctx context.Context, in *BillingRequest, opts ...grpc.CallOption) (*BillingResponse, error) {
	out := new(BillingResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, CreateBillingAccountFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// BillingServiceServer is the server API for the billing service.
type BillingServiceServer interface {
	CreateBillingAccount(ctx context.Context, in *BillingRequest) (*BillingResponse, error)
}

func RegisterBillingServiceServer(s grpc.ServiceRegistrar, srv BillingServiceServer) {
	s.RegisterService(&BillingServiceDesc, srv)
}

func createBillingAccountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(BillingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BillingServiceServer).CreateBillingAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CreateBillingAccountFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BillingServiceServer).CreateBillingAccount(ctx, req.(*BillingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// BillingServiceDesc is the grpc.ServiceDesc for the billing service.
var BillingServiceDesc = grpc.ServiceDesc{
	ServiceName: BillingServiceName,
	HandlerType: (*BillingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateBillingAccount",
			Handler:    createBillingAccountHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "billing_service.proto",
}
