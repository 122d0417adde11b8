package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

// TokenService issues, refreshes and revokes sessions. It composes the
// TokenManager and the SessionCache.
type TokenService struct {
	manager  model.TokenManager
	sessions model.SessionCache
	logger   *logger.Logger
}

func NewTokenService(manager model.TokenManager, sessions model.SessionCache, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, sessions: sessions, logger: logger}
}

// Issue mints an access and a refresh token and records the refresh token as
// the identity's only live session. A cache failure is logged and the tokens
// are still returned.
func (s *TokenService) Issue(ctx context.Context, identityID uuid.UUID) (model.Session, error) {
	access, err := s.manager.IssueAccessToken(identityID)
	if err != nil {
		return model.Session{}, fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.IssueRefreshToken(identityID)
	if err != nil {
		return model.Session{}, fmt.Errorf("issue refresh: %w", err)
	}

	if err := s.sessions.Put(ctx, identityID, refresh.Value, refresh.TTL); err != nil {
		s.logger.Error("Token service: failed to store refresh session",
			"identity_id", identityID,
			"error", err.Error())
	}

	return model.Session{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges the presented refresh token for a new access token. The
// refresh token and its session TTL are left untouched.
//
// A verified token that is not the stored one is treated as reuse: the stored
// session is dropped so neither holder can refresh again.
func (s *TokenService) Refresh(ctx context.Context, presented string) (model.IssuedToken, error) {
	if presented == "" {
		return model.IssuedToken{}, apierror.NewErrUnauthenticated("No refresh token provided")
	}

	identityID, err := s.manager.Verify(presented, model.TokenRefresh)
	if err != nil {
		s.logger.Debug("Token service: refresh token rejected",
			"error", err.Error())
		return model.IssuedToken{}, apierror.NewErrForbidden("Invalid refresh token")
	}

	stored, err := s.sessions.Get(ctx, identityID)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Token service: no live session for refresh token",
			"identity_id", identityID)
		return model.IssuedToken{}, apierror.NewErrForbidden("Invalid refresh token")
	}
	if err != nil {
		s.logger.Error("Token service: failed to read refresh session",
			"identity_id", identityID,
			"error", err.Error())
		return model.IssuedToken{}, apierror.NewErrDependency(err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		s.logger.Warn("Token service: superseded refresh token presented",
			"identity_id", identityID)
		if err := s.sessions.Delete(ctx, identityID); err != nil {
			s.logger.Error("Token service: failed to drop session after reuse",
				"identity_id", identityID,
				"error", err.Error())
		}
		return model.IssuedToken{}, apierror.NewErrForbidden("Invalid refresh token")
	}

	access, err := s.manager.IssueAccessToken(identityID)
	if err != nil {
		return model.IssuedToken{}, apierror.NewErrInternalServerError(fmt.Errorf("issue access: %w", err))
	}

	return access, nil
}

// Revoke drops the session of the refresh token's owner. It never fails:
// an unreadable token or a cache outage is only logged.
func (s *TokenService) Revoke(ctx context.Context, presented string) {
	if presented == "" {
		return
	}

	identityID, err := s.manager.Verify(presented, model.TokenRefresh)
	if err != nil {
		s.logger.Debug("Token service: ignoring unreadable refresh token on revoke",
			"error", err.Error())
		return
	}

	if err := s.sessions.Delete(ctx, identityID); err != nil {
		s.logger.Error("Token service: failed to delete refresh session",
			"identity_id", identityID,
			"error", err.Error())
	}
}
