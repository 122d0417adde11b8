// Package apierror defines the client-facing error taxonomy shared by the HTTP
// and gRPC transports.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind classifies an APIError.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindGone            Kind = "gone"
	KindDependency      Kind = "dependency"
	KindInternal        Kind = "internal"
)

// APIError is an error that is safe to show to the client.
//
// Message is returned verbatim; Err carries the internal cause and is only logged.
type APIError struct {
	Kind       Kind
	HTTPStatus int
	GRPCCode   codes.Code
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// As extracts an APIError from an error chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err is an APIError of kind k.
func IsKind(err error, k Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == k
}

func newErr(kind Kind, status int, code codes.Code, msg string, cause error) *APIError {
	return &APIError{Kind: kind, HTTPStatus: status, GRPCCode: code, Message: msg, Err: cause}
}

// NewErrValidation reports malformed or missing input.
func NewErrValidation(msg string) *APIError {
	return newErr(KindValidation, http.StatusBadRequest, codes.InvalidArgument, msg, nil)
}

// NewErrAlreadyRegistered reports a contact that already belongs to an identity.
func NewErrAlreadyRegistered() *APIError {
	return newErr(KindConflict, http.StatusConflict, codes.AlreadyExists,
		"User already registered with this contact information", nil)
}

// NewErrPendingVerification reports a contact that is already staged.
func NewErrPendingVerification() *APIError {
	return newErr(KindConflict, http.StatusConflict, codes.AlreadyExists,
		"Pending verification already exists for this contact", nil)
}

// NewErrUnauthenticated reports a missing, expired or invalid credential.
func NewErrUnauthenticated(msg string) *APIError {
	return newErr(KindUnauthenticated, http.StatusUnauthorized, codes.Unauthenticated, msg, nil)
}

// NewErrInvalidCredentials reports a failed login.
func NewErrInvalidCredentials() *APIError {
	return NewErrUnauthenticated("Invalid credentials")
}

// NewErrForbidden reports an authenticated caller lacking the required role, or
// a refresh token that is no longer the active one.
func NewErrForbidden(msg string) *APIError {
	return newErr(KindForbidden, http.StatusForbidden, codes.PermissionDenied, msg, nil)
}

// NewErrNotFound reports missing state.
func NewErrNotFound(msg string) *APIError {
	return newErr(KindNotFound, http.StatusNotFound, codes.NotFound, msg, nil)
}

// NewErrGone reports an invalid, consumed or expired verification code.
func NewErrGone(msg string) *APIError {
	return newErr(KindGone, http.StatusGone, codes.NotFound, msg, nil)
}

// NewErrThrottled reports a verification send attempted during cooldown.
func NewErrThrottled() *APIError {
	return newErr(KindDependency, http.StatusBadRequest, codes.ResourceExhausted,
		"Please wait before requesting another verification code", nil)
}

// NewErrDeliveryFailed reports a delivery channel failure.
func NewErrDeliveryFailed(cause error) *APIError {
	return newErr(KindDependency, http.StatusBadRequest, codes.Unavailable,
		"Failed to send verification code", cause)
}

// NewErrDependency reports an unavailable backing service that blocks the operation.
func NewErrDependency(cause error) *APIError {
	return newErr(KindDependency, http.StatusInternalServerError, codes.Unavailable,
		"Service temporarily unavailable", cause)
}

// NewErrInternalServerError hides an unexpected failure from the client.
func NewErrInternalServerError(cause error) *APIError {
	return newErr(KindInternal, http.StatusInternalServerError, codes.Internal,
		"Internal server error", cause)
}
