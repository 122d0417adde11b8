package middleware

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/farmgate-identity/internal/logger"
)

// Logging is a unary interceptor that logs gRPC requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// HandleGRPC logs method name, duration and status for each unary request.
// Denials are expected traffic for a guard and are logged at info level.
func (l *Logging) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := codes.OK
	if err != nil {
		code = codes.Internal
		if st, ok := status.FromError(err); ok {
			code = st.Code()
		}
	}

	args := []any{
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"status", code.String(),
	}

	switch code {
	case codes.OK:
		l.logger.Info("gRPC request completed", args...)
	case codes.Unauthenticated, codes.PermissionDenied, codes.InvalidArgument:
		l.logger.Info("gRPC request rejected", append(args, "error", err.Error())...)
	default:
		l.logger.Error("gRPC request failed", append(args, "error", err.Error())...)
	}

	return resp, err
}
