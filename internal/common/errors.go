// Package common defines shared constants and sentinel errors used across
// the SecureKey server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")

	// Crypto errors. Decryption failures are deliberately generic: a corrupted
	// blob and a wrong key are indistinguishable without an integrity tag.
	ErrCrypto = errors.New("crypto error")

	// MFA flow control. ErrMFARequired is not a failure but a signal routing
	// the caller back to the challenge flow.
	ErrMFARequired          = errors.New("mfa verification required")
	ErrInvalidOrExpiredCode = errors.New("invalid verification code or code has expired")

	// Account errors.
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid email and/or password")
	ErrInvalidToken       = errors.New("invalid token")
)
