package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/validate"
)

// Auth handles login, logout, token refresh and identity lookups for
// verified identities.
type Auth struct {
	identities model.IdentityStore
	hasher     model.PasswordHasher
	markers    model.VerificationCache
	tokens     *TokenService
	logger     *logger.Logger
}

func NewAuth(
	identities model.IdentityStore,
	hasher model.PasswordHasher,
	markers model.VerificationCache,
	tokens *TokenService,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		identities: identities,
		hasher:     hasher,
		markers:    markers,
		tokens:     tokens,
		logger:     logger,
	}
}

// Login checks the password of the identity behind contact and opens a session.
// Unknown contacts and wrong passwords fail the same way.
func (a *Auth) Login(ctx context.Context, rawContact, password string) (model.Identity, model.Session, error) {
	contact, err := validate.LoginRequest(rawContact, password)
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}

	a.logger.Debug("Auth service: starting login",
		"contact", contact.Value)

	identity, err := a.identities.GetByContact(ctx, contact)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: login for unknown contact",
			"contact", contact.Value)
		return model.Identity{}, model.Session{}, apierror.NewErrInvalidCredentials()
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get identity by contact",
			"contact", contact.Value,
			"error", err.Error())
		return model.Identity{}, model.Session{}, apierror.NewErrInternalServerError(err)
	}

	ok, err := a.hasher.Compare(identity.PasswordHash, password)
	if err != nil {
		a.logger.Error("Auth service: failed to compare password",
			"identity_id", identity.ID,
			"error", err.Error())
		return model.Identity{}, model.Session{}, apierror.NewErrInternalServerError(err)
	}
	if !ok {
		a.logger.Info("Auth service: wrong password",
			"identity_id", identity.ID)
		return model.Identity{}, model.Session{}, apierror.NewErrInvalidCredentials()
	}

	session, err := a.tokens.Issue(ctx, identity.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue session",
			"identity_id", identity.ID,
			"error", err.Error())
		return model.Identity{}, model.Session{}, apierror.NewErrInternalServerError(err)
	}

	// Tokens are already issued; a stale cooldown only delays the next send.
	if err := a.markers.ReleaseCooldown(ctx, contact); err != nil {
		a.logger.Error("Auth service: failed to release verification cooldown",
			"contact", contact.Value,
			"error", err.Error())
	}

	a.logger.Info("Auth service: login successful",
		"identity_id", identity.ID)

	return identity, session, nil
}

// Refresh exchanges a refresh token for a new access token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.IssuedToken, error) {
	return a.tokens.Refresh(ctx, refreshToken)
}

// Logout drops the session of the refresh token's owner, if any.
func (a *Auth) Logout(ctx context.Context, refreshToken string) {
	a.tokens.Revoke(ctx, refreshToken)
}

// Identity returns the identity with the given id.
func (a *Auth) Identity(ctx context.Context, id uuid.UUID) (model.Identity, error) {
	identity, err := a.identities.GetByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Identity{}, apierror.NewErrNotFound("User not found")
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get identity by id",
			"identity_id", id,
			"error", err.Error())
		return model.Identity{}, apierror.NewErrInternalServerError(err)
	}
	return identity, nil
}

// AdminSeed describes the administrator created on startup.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// SeedAdmin creates the administrator identity unless its email is taken.
// An empty seed is a no-op.
func (a *Auth) SeedAdmin(ctx context.Context, seed AdminSeed) error {
	if seed.Email == "" {
		return nil
	}

	contact, err := validate.Contact(seed.Email)
	if err != nil {
		return fmt.Errorf("invalid admin email: %w", err)
	}
	if contact.Kind != model.ContactEmail {
		return fmt.Errorf("admin contact must be an email")
	}
	if err := validate.Password(seed.Password); err != nil {
		return fmt.Errorf("invalid admin password: %w", err)
	}

	existing, err := a.identities.GetByContact(ctx, contact)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			a.logger.Warn("Auth service: admin email belongs to a non-admin identity",
				"identity_id", existing.ID,
				"role", string(existing.Role))
		}
		return nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := a.hasher.Hash(seed.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin, err := a.identities.Create(ctx, model.Identity{
		ID:           uuid.New(),
		Name:         seed.Name,
		Email:        contact.Value,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	switch {
	case errors.Is(err, model.ErrIdentityExists):
		return nil
	case errors.Is(err, model.ErrPendingExists):
		// An unverified signup holds the address; the seed is retried on the
		// next start after the candidate expires.
		a.logger.Warn("Auth service: admin email held by a pending signup, skipping seed",
			"email", contact.Value)
		return nil
	case err != nil:
		return fmt.Errorf("failed to create admin: %w", err)
	}

	a.logger.Info("Auth service: admin seeded",
		"identity_id", admin.ID,
		"email", admin.Email)

	return nil
}
