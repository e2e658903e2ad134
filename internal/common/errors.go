// Package common defines shared constants and sentinel errors used across
// the layers of WannaTalk. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Matchmaking errors.
	ErrNotEligible     = errors.New("user is not eligible for matching")
	ErrAlreadyResolved = errors.New("request already resolved")
	ErrUnknownVerdict  = errors.New("unknown verdict")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
