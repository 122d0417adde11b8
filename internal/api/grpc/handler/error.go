package handler

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/farmgate-identity/internal/apierror"
)

// HandleError converts err into a gRPC status. Only APIError messages reach
// the caller.
func HandleError(err error) error {
	if apiErr, ok := apierror.As(err); ok {
		return status.Error(apiErr.GRPCCode, apiErr.Message)
	}
	return status.Error(codes.Internal, "Internal server error")
}
