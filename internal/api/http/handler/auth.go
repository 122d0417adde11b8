package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
	"github.com/dtroode/farmgate-identity/internal/validate"
)

// VerificationService defines the two-phase signup operations.
type VerificationService interface {
	Signup(ctx context.Context, in validate.SignupInput) (model.Candidate, error)
	SendVerification(ctx context.Context, contact string) error
	ReceiveVerification(ctx context.Context, code, contact string) (model.Identity, model.Session, error)
	CancelVerification(ctx context.Context, contact string) error
}

// AuthService defines login, session and identity lookup operations.
type AuthService interface {
	Login(ctx context.Context, contact, password string) (model.Identity, model.Session, error)
	Refresh(ctx context.Context, refreshToken string) (model.IssuedToken, error)
	Logout(ctx context.Context, refreshToken string)
	Identity(ctx context.Context, id uuid.UUID) (model.Identity, error)
}

// Auth handles the public /api/auth endpoints.
type Auth struct {
	verification   VerificationService
	auth           AuthService
	cookies        *Cookies
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(
	verification VerificationService,
	auth AuthService,
	cookies *Cookies,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		verification:   verification,
		auth:           auth,
		cookies:        cookies,
		contextManager: contextManager,
		logger:         logger,
	}
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
	Address         string `json:"address"`
}

// verificationRequest accepts the contact under its current name and the
// older email/userEmail field names.
type verificationRequest struct {
	Code      string `json:"code"`
	Contact   string `json:"contact"`
	Email     string `json:"email"`
	UserEmail string `json:"userEmail"`
}

func (r verificationRequest) contact() string {
	for _, v := range []string{r.Contact, r.Email, r.UserEmail} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type loginRequest struct {
	Contact  string `json:"contact"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Signup stages a new candidate. POST /api/auth/signup
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	_, err := h.verification.Signup(r.Context(), validate.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
		Address:         req.Address,
	})
	if err != nil {
		h.logger.Debug("Auth handler: signup failed", "error", err.Error())
		WriteError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusCreated, "User created, please verify your email")
}

// SendVerification issues a code for a staged contact. POST /api/auth/verify/send
func (h *Auth) SendVerification(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if err := h.verification.SendVerification(r.Context(), req.contact()); err != nil {
		h.logger.Debug("Auth handler: verification send failed", "error", err.Error())
		WriteError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "Verification email sent")
}

// ReceiveVerification checks a code, promotes the candidate and logs it in.
// POST /api/auth/verify/receive
func (h *Auth) ReceiveVerification(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	identity, session, err := h.verification.ReceiveVerification(r.Context(), req.Code, req.contact())
	if err != nil {
		h.logger.Debug("Auth handler: verification receive failed", "error", err.Error())
		WriteError(w, h.logger, err)
		return
	}

	h.cookies.SetSession(w, session)
	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Email verification successful",
		User:    toIdentityResponse(identity),
	})
}

// CancelVerification drops a staged candidate. POST /api/auth/verify/cancel
func (h *Auth) CancelVerification(w http.ResponseWriter, r *http.Request) {
	var req verificationRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	if err := h.verification.CancelVerification(r.Context(), req.contact()); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "Verification cancelled")
}

// Login opens a session. POST /api/auth/login
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	identity, session, err := h.auth.Login(r.Context(), req.Contact, req.Password)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	h.cookies.SetSession(w, session)
	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		User:    toIdentityResponse(identity),
	})
}

// RefreshToken mints a new access token from the refresh token cookie.
// Cookies are cleared whenever the refresh token is rejected.
// POST /api/auth/refresh-token
func (h *Auth) RefreshToken(w http.ResponseWriter, r *http.Request) {
	access, err := h.auth.Refresh(r.Context(), h.refreshToken(r))
	if err != nil {
		if apierror.IsKind(err, apierror.KindForbidden) {
			h.cookies.Clear(w)
		}
		WriteError(w, h.logger, err)
		return
	}

	h.cookies.SetAccess(w, access)
	writeMessage(w, http.StatusOK, "Tokens refreshed successfully")
}

// Logout drops the session and clears cookies. It always succeeds.
// POST /api/auth/logout
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), h.refreshToken(r))
	h.cookies.Clear(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

// Profile returns the authenticated identity. GET /api/auth/profile
func (h *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		WriteError(w, h.logger, apierror.NewErrUnauthenticated("Unauthorized - No Access Token Provided"))
		return
	}

	writeJSON(w, http.StatusOK, toIdentityResponse(identity))
}

// refreshToken reads the refresh token from its cookie, falling back to the
// JSON body for clients that cannot hold cookies.
func (h *Auth) refreshToken(r *http.Request) string {
	if c, err := r.Cookie(RefreshTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		return ""
	}
	return req.RefreshToken
}
