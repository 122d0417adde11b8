package context

import (
	"context"

	"github.com/dtroode/farmgate-identity/internal/model"
)

type identityKey struct{}

var _ model.ContextManager = (*Manager)(nil)

// Manager stores the authenticated identity in a request context. Both the
// HTTP middleware and the gRPC interceptors use it.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityToContext returns a copy of ctx carrying identity.
func (m *Manager) SetIdentityToContext(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// GetIdentityFromContext returns the identity set by SetIdentityToContext.
// The boolean is false when no identity was set.
func (m *Manager) GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(model.Identity)
	if !ok {
		return model.Identity{}, false
	}
	return identity, true
}
