// Package common defines shared constants and sentinel errors used across
// the ContactKeeper server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("could not validate credentials")
	ErrForbidden      = errors.New("not enough permissions")
	ErrValidation     = errors.New("validation error")

	// Token errors. Tampered, malformed and expired tokens all yield ErrInvalidToken.
	ErrInvalidToken = errors.New("invalid token")

	// Registration.
	ErrDuplicateEmail    = errors.New("user with such email already exists")
	ErrDuplicateUsername = errors.New("user with such username already exists")

	// Login. ErrInvalidCredentials covers both unknown username and wrong password.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrNotConfirmed       = errors.New("email address is not confirmed")

	// Email confirmation and password reset.
	ErrVerification          = errors.New("verification error")
	ErrEmailNotConfirmed     = errors.New("email is not confirmed, password cannot be reset")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrUserNotFound          = errors.New("user with such email not found")

	// Contacts.
	ErrDuplicateContact = errors.New("contact with such email or phone number already exists")
	ErrContactNotFound  = errors.New("contact not found")
)
