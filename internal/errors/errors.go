package errors

import (
	"errors"
)

var (
	ErrValidation           = errors.New("invalid input")
	ErrEmailAlreadyInUse    = errors.New("email already in use")
	ErrRegistrationDisabled = errors.New("registration is disabled")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrRefreshTokenRequired = errors.New("refresh token required")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenMalformed       = errors.New("token malformed")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrStoreUnavailable     = errors.New("store unavailable")
)
