package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

// Guard resolves access tokens to identities and checks roles.
type Guard struct {
	identities model.IdentityStore
	manager    model.TokenManager
	logger     *logger.Logger
}

func NewGuard(identities model.IdentityStore, manager model.TokenManager, logger *logger.Logger) *Guard {
	return &Guard{identities: identities, manager: manager, logger: logger}
}

// Authenticate returns the identity an access token was issued to.
func (g *Guard) Authenticate(ctx context.Context, accessToken string) (model.Identity, error) {
	if accessToken == "" {
		return model.Identity{}, apierror.NewErrUnauthenticated("Unauthorized - No Access Token Provided")
	}

	id, err := g.manager.Verify(accessToken, model.TokenAccess)
	if errors.Is(err, model.ErrTokenExpired) {
		return model.Identity{}, apierror.NewErrUnauthenticated("Unauthorized - Access Token Expired")
	}
	if err != nil {
		return model.Identity{}, apierror.NewErrUnauthenticated("Unauthorized - Invalid Access Token")
	}

	identity, err := g.identities.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Identity{}, apierror.NewErrUnauthenticated("User not found")
	}
	if err != nil {
		g.logger.Error("Guard: failed to get identity by id",
			"identity_id", id,
			"error", err.Error())
		return model.Identity{}, apierror.NewErrInternalServerError(err)
	}

	return identity, nil
}

// RequireRole fails with Forbidden unless the identity's role is in allowed.
func (g *Guard) RequireRole(identity model.Identity, allowed model.RoleSet) error {
	if allowed.Contains(identity.Role) {
		return nil
	}

	g.logger.Info("Guard: role not allowed",
		"identity_id", identity.ID,
		"role", string(identity.Role),
		"allowed", allowed.String())

	return apierror.NewErrForbidden(forbiddenMessage(allowed))
}

func forbiddenMessage(allowed model.RoleSet) string {
	names := make([]string, 0, len(allowed))
	for _, r := range allowed {
		if !r.Valid() {
			continue
		}
		names = append(names, strings.ToUpper(string(r)[:1])+string(r)[1:]+"s")
	}
	if len(names) == 0 {
		return "Forbidden"
	}
	return "Forbidden - " + strings.Join(names, " or ") + " Only"
}
