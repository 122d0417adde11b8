package router

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/dtroode/farmgate-identity/internal/api/grpc/handler"
	"github.com/dtroode/farmgate-identity/internal/api/grpc/middleware"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

// Guard is what the gRPC transport needs from the authorization guard.
type Guard interface {
	middleware.Authenticator
	handler.RoleChecker
}

// Router assembles the gRPC guard server.
type Router struct {
	guard          Guard
	contextManager model.ContextManager
	health         *health.Server
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(guard Guard, contextManager model.ContextManager, logger *logger.Logger) *Router {
	return &Router{
		guard:          guard,
		contextManager: contextManager,
		health:         health.NewServer(),
		logger:         logger,
	}
}

// Health returns the health server registered by Register.
func (r *Router) Health() *health.Server {
	return r.health
}

func authRequired(_ context.Context, c interceptors.CallMeta) bool {
	return strings.HasPrefix(c.FullMethod(), "/"+handler.GuardServiceName+"/")
}

// Register builds the gRPC server with tracing, panic recovery, request
// logging and bearer authentication for guard methods.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.guard, r.contextManager, r.logger)

	recoverPanic := recovery.WithRecoveryHandler(func(p any) error {
		r.logger.Error("gRPC handler panicked", "panic", p)
		return status.Error(codes.Internal, "Internal server error")
	})

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoverPanic),
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authRequired),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoverPanic),
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authRequired),
			),
		),
	)

	handler.RegisterGuardServer(s, handler.NewGuard(r.guard, r.contextManager, r.logger))
	healthpb.RegisterHealthServer(s, r.health)
	reflection.Register(s)

	r.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	r.health.SetServingStatus(handler.GuardServiceName, healthpb.HealthCheckResponse_SERVING)

	return s
}
