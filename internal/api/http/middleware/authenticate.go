package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dtroode/farmgate-identity/internal/api/http/handler"
	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

// Guard resolves access tokens and checks roles.
type Guard interface {
	Authenticate(ctx context.Context, accessToken string) (model.Identity, error)
	RequireRole(identity model.Identity, allowed model.RoleSet) error
}

// Authenticate puts the identity behind the request's access token into the
// request context.
type Authenticate struct {
	guard          Guard
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(guard Guard, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{guard: guard, contextManager: contextManager, logger: logger}
}

// Handle rejects requests without a valid access token.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.guard.Authenticate(r.Context(), accessToken(r))
		if err != nil {
			handler.WriteError(w, m.logger, err)
			return
		}

		ctx := m.contextManager.SetIdentityToContext(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns a middleware admitting only identities whose role is in
// roles. It must run after Handle.
func (m *Authenticate) RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := model.Roles(roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := m.contextManager.GetIdentityFromContext(r.Context())
			if !ok {
				handler.WriteError(w, m.logger,
					apierror.NewErrUnauthenticated("Unauthorized - No Access Token Provided"))
				return
			}

			if err := m.guard.RequireRole(identity, allowed); err != nil {
				handler.WriteError(w, m.logger, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// accessToken reads the access token cookie, then the bearer header.
func accessToken(r *http.Request) string {
	if c, err := r.Cookie(handler.AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	const bearer = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(bearer) && strings.EqualFold(header[:len(bearer)], bearer) {
		return strings.TrimSpace(header[len(bearer):])
	}
	return ""
}
