package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/logger"
)

// Admin serves identity lookups to administrators.
type Admin struct {
	auth   AuthService
	logger *logger.Logger
}

func NewAdmin(auth AuthService, logger *logger.Logger) *Admin {
	return &Admin{auth: auth, logger: logger}
}

// Identity returns one identity by id. GET /api/admin/identities/{id}
func (h *Admin) Identity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, h.logger, apierror.NewErrValidation("Invalid identity id"))
		return
	}

	identity, err := h.auth.Identity(r.Context(), id)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toIdentityResponse(identity))
}
