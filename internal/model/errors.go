package model

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrIdentityExists = errors.New("identity already exists")
	ErrPendingExists  = errors.New("pending verification already exists")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	ErrCodeInvalid      = errors.New("verification code invalid or expired")
	ErrCacheUnavailable = errors.New("session cache unavailable")
	ErrDeliveryFailed   = errors.New("verification delivery failed")
)
