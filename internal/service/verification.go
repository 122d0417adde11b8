package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/validate"
)

// VerificationConfig holds the timing of the signup verification flow.
type VerificationConfig struct {
	StagingWindow time.Duration
	CodeTTL       time.Duration
	Cooldown      time.Duration
	CodeLength    int
}

// Verification drives two-phase signup: a candidate is staged, a code is sent
// to its contact, and a matching code promotes the candidate to an identity.
type Verification struct {
	identities model.IdentityStore
	staging    model.StagingStore
	markers    model.VerificationCache
	sender     model.Sender
	hasher     model.PasswordHasher
	tokens     *TokenService
	cfg        VerificationConfig
	logger     *logger.Logger

	now     func() time.Time
	newCode func(n int) (string, error)
}

func NewVerification(
	identities model.IdentityStore,
	staging model.StagingStore,
	markers model.VerificationCache,
	sender model.Sender,
	hasher model.PasswordHasher,
	tokens *TokenService,
	cfg VerificationConfig,
	logger *logger.Logger,
) *Verification {
	return &Verification{
		identities: identities,
		staging:    staging,
		markers:    markers,
		sender:     sender,
		hasher:     hasher,
		tokens:     tokens,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
		newCode:    newNumericCode,
	}
}

// Signup validates the request and stages a candidate for every given contact.
func (v *Verification) Signup(ctx context.Context, in validate.SignupInput) (model.Candidate, error) {
	req, err := validate.SignupRequest(in)
	if err != nil {
		return model.Candidate{}, err
	}

	contacts := req.Contacts()
	v.logger.Debug("Verification service: starting signup",
		"contacts", contactValues(contacts))

	for _, c := range contacts {
		_, err := v.identities.GetByContact(ctx, c)
		if err == nil {
			v.logger.Info("Verification service: contact already registered",
				"contact", c.Value)
			return model.Candidate{}, apierror.NewErrAlreadyRegistered()
		}
		if !errors.Is(err, model.ErrNotFound) {
			v.logger.Error("Verification service: failed to get identity by contact",
				"contact", c.Value,
				"error", err.Error())
			return model.Candidate{}, apierror.NewErrInternalServerError(err)
		}

		_, err = v.staging.GetByContact(ctx, c)
		if err == nil {
			v.logger.Info("Verification service: contact already pending",
				"contact", c.Value)
			return model.Candidate{}, apierror.NewErrPendingVerification()
		}
		if !errors.Is(err, model.ErrNotFound) {
			v.logger.Error("Verification service: failed to get candidate by contact",
				"contact", c.Value,
				"error", err.Error())
			return model.Candidate{}, apierror.NewErrInternalServerError(err)
		}
	}

	// Markers are keyed by contact and can outlive an expired candidate. A code
	// or cooldown from that candidate must not carry over to this one.
	for _, c := range contacts {
		if err := v.markers.Clear(ctx, c); err != nil {
			v.logger.Error("Verification service: failed to reset markers",
				"contact", c.Value,
				"error", err.Error())
			return model.Candidate{}, apierror.NewErrDependency(err)
		}
	}

	hash, err := v.hasher.Hash(req.Password)
	if err != nil {
		return model.Candidate{}, apierror.NewErrInternalServerError(fmt.Errorf("failed to hash password: %w", err))
	}

	now := v.now().UTC()
	candidate := model.Candidate{
		Identity: model.Identity{
			ID:           uuid.New(),
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			PasswordHash: hash,
			Role:         req.Role,
			Address:      req.Address,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		ExpiresAt: now.Add(v.cfg.StagingWindow),
	}

	// The store re-checks both tables under a per-contact lock, so a signup
	// racing this one still ends in a conflict here.
	if err := v.staging.Create(ctx, candidate); err != nil {
		switch {
		case errors.Is(err, model.ErrIdentityExists):
			return model.Candidate{}, apierror.NewErrAlreadyRegistered()
		case errors.Is(err, model.ErrPendingExists):
			return model.Candidate{}, apierror.NewErrPendingVerification()
		}
		v.logger.Error("Verification service: failed to stage candidate",
			"contacts", contactValues(contacts),
			"error", err.Error())
		return model.Candidate{}, apierror.NewErrInternalServerError(err)
	}

	v.logger.Info("Verification service: candidate staged",
		"candidate_id", candidate.ID,
		"contacts", contactValues(contacts),
		"expires_at", candidate.ExpiresAt)

	return candidate, nil
}

// SendVerification delivers a fresh code to a staged contact. A send inside
// the cooldown window is rejected without touching the delivery channel.
func (v *Verification) SendVerification(ctx context.Context, rawContact string) error {
	if strings.TrimSpace(rawContact) == "" {
		return apierror.NewErrValidation("Contact is required")
	}
	contact, err := validate.Contact(rawContact)
	if err != nil {
		return err
	}

	if _, err := v.staging.GetByContact(ctx, contact); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NewErrNotFound("No pending verification found")
		}
		v.logger.Error("Verification service: failed to get candidate by contact",
			"contact", contact.Value,
			"error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	armed, err := v.markers.ArmCooldown(ctx, contact, v.cfg.Cooldown)
	if err != nil {
		v.logger.Error("Verification service: failed to arm cooldown",
			"contact", contact.Value,
			"error", err.Error())
		return apierror.NewErrDependency(err)
	}
	if !armed {
		v.logger.Info("Verification service: send throttled",
			"contact", contact.Value)
		return apierror.NewErrThrottled()
	}

	code, err := v.newCode(v.cfg.CodeLength)
	if err != nil {
		v.clearMarkers(ctx, contact)
		return apierror.NewErrInternalServerError(err)
	}

	if err := v.markers.StoreCode(ctx, contact, code, v.cfg.CodeTTL); err != nil {
		v.logger.Error("Verification service: failed to store code",
			"contact", contact.Value,
			"error", err.Error())
		v.releaseCooldown(ctx, contact)
		return apierror.NewErrDependency(err)
	}

	if err := v.sender.Send(ctx, contact, code); err != nil {
		v.logger.Error("Verification service: failed to deliver code",
			"contact", contact.Value,
			"error", err.Error())
		v.clearMarkers(ctx, contact)
		return apierror.NewErrDeliveryFailed(err)
	}

	v.logger.Info("Verification service: code sent",
		"contact", contact.Value,
		"channel", string(contact.Kind))

	return nil
}

// ReceiveVerification checks code and promotes the staged candidate. On success
// the new identity is logged in.
func (v *Verification) ReceiveVerification(ctx context.Context, code, rawContact string) (model.Identity, model.Session, error) {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(rawContact) == "" {
		return model.Identity{}, model.Session{}, apierror.NewErrValidation("Code and contact are required")
	}
	contact, err := validate.Contact(rawContact)
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}

	if err := v.markers.ConsumeCode(ctx, contact, strings.TrimSpace(code)); err != nil {
		if errors.Is(err, model.ErrCodeInvalid) {
			v.logger.Info("Verification service: code rejected",
				"contact", contact.Value)
			return model.Identity{}, model.Session{}, apierror.NewErrGone("Invalid or expired verification code")
		}
		v.logger.Error("Verification service: failed to consume code",
			"contact", contact.Value,
			"error", err.Error())
		return model.Identity{}, model.Session{}, apierror.NewErrDependency(err)
	}

	if _, err := v.identities.GetByContact(ctx, contact); err == nil {
		return model.Identity{}, model.Session{}, apierror.NewErrNotFound("User already exists")
	} else if !errors.Is(err, model.ErrNotFound) {
		return model.Identity{}, model.Session{}, apierror.NewErrInternalServerError(err)
	}

	identity, err := v.staging.Promote(ctx, contact)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			return model.Identity{}, model.Session{}, apierror.NewErrNotFound("No pending verification found")
		case errors.Is(err, model.ErrIdentityExists):
			return model.Identity{}, model.Session{}, apierror.NewErrNotFound("User already exists")
		}
		v.logger.Error("Verification service: failed to promote candidate",
			"contact", contact.Value,
			"error", err.Error())
		return model.Identity{}, model.Session{}, apierror.NewErrInternalServerError(err)
	}

	for _, c := range identity.Contacts() {
		v.clearMarkers(ctx, c)
	}

	session, err := v.tokens.Issue(ctx, identity.ID)
	if err != nil {
		v.logger.Error("Verification service: failed to issue session",
			"identity_id", identity.ID,
			"error", err.Error())
		return model.Identity{}, model.Session{}, apierror.NewErrInternalServerError(err)
	}

	v.logger.Info("Verification service: identity verified",
		"identity_id", identity.ID,
		"contact", contact.Value)

	return identity, session, nil
}

// CancelVerification removes the candidate and its markers. It succeeds
// whether or not anything was pending.
func (v *Verification) CancelVerification(ctx context.Context, rawContact string) error {
	if strings.TrimSpace(rawContact) == "" {
		return apierror.NewErrValidation("Contact is required")
	}
	contact, err := validate.Contact(rawContact)
	if err != nil {
		return err
	}

	contacts := []model.Contact{contact}
	candidate, err := v.staging.GetByContact(ctx, contact)
	switch {
	case err == nil:
		contacts = candidate.Contacts()
	case !errors.Is(err, model.ErrNotFound):
		v.logger.Error("Verification service: failed to get candidate by contact",
			"contact", contact.Value,
			"error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	if err := v.staging.DeleteByContact(ctx, contact); err != nil {
		v.logger.Error("Verification service: failed to delete candidate",
			"contact", contact.Value,
			"error", err.Error())
		return apierror.NewErrInternalServerError(err)
	}

	for _, c := range contacts {
		v.clearMarkers(ctx, c)
	}

	v.logger.Info("Verification service: verification cancelled",
		"contact", contact.Value)

	return nil
}

func (v *Verification) clearMarkers(ctx context.Context, contact model.Contact) {
	if err := v.markers.Clear(ctx, contact); err != nil {
		v.logger.Error("Verification service: failed to clear markers",
			"contact", contact.Value,
			"error", err.Error())
	}
}

func (v *Verification) releaseCooldown(ctx context.Context, contact model.Contact) {
	if err := v.markers.ReleaseCooldown(ctx, contact); err != nil {
		v.logger.Error("Verification service: failed to release cooldown",
			"contact", contact.Value,
			"error", err.Error())
	}
}

func contactValues(contacts []model.Contact) []string {
	values := make([]string, 0, len(contacts))
	for _, c := range contacts {
		values = append(values, c.Value)
	}
	return values
}
