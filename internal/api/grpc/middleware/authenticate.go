package middleware

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"

	"github.com/dtroode/farmgate-identity/internal/api/grpc/handler"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

// Authenticator resolves an access token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.Identity, error)
}

// Authenticate validates bearer tokens and injects the identity into context.
type Authenticate struct {
	guard          Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(guard Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{guard: guard, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the bearer token from metadata and returns a context carrying
// the identity. A missing token is reported by the guard like an HTTP request
// without one.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	token, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		token = ""
	}

	identity, err := m.guard.Authenticate(ctx, token)
	if err != nil {
		m.logger.Debug("gRPC authentication failed", "error", err.Error())
		return nil, handler.HandleError(err)
	}

	return m.contextManager.SetIdentityToContext(ctx, identity), nil
}
