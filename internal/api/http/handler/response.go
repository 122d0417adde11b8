package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/farmgate-identity/internal/apierror"
	"github.com/dtroode/farmgate-identity/internal/logger"
	"github.com/dtroode/farmgate-identity/internal/model"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

// IdentityResponse is the public view of an identity. The password hash never
// leaves the service.
type IdentityResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Role        string    `json:"role"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type sessionResponse struct {
	Message string           `json:"message"`
	User    IdentityResponse `json:"user"`
}

func toIdentityResponse(i model.Identity) IdentityResponse {
	return IdentityResponse{
		ID:          i.ID,
		Name:        i.Name,
		Email:       i.Email,
		PhoneNumber: i.Phone,
		Role:        string(i.Role),
		Address:     i.Address,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched so
// that field validation reports what is missing.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apierror.NewErrValidation("Invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// WriteError renders err as {"message": ...}. Errors that are not APIErrors
// are logged and hidden behind a generic 500.
func WriteError(w http.ResponseWriter, log *logger.Logger, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		log.Error("HTTP handler: unexpected error", "error", err.Error())
		apiErr = apierror.NewErrInternalServerError(err)
	}
	writeMessage(w, apiErr.HTTPStatus, apiErr.Message)
}
