// Package common defines shared sentinel errors used across the filegate
// service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrOwnershipConflict is returned when a policy attach names an owner
	// different from the one recorded at first attachment. The owner of a
	// stored object is fixed at its first policy write.
	ErrOwnershipConflict = errors.New("ownership conflict")

	// ErrObjectNotFound covers both "no such object" and "caller may not
	// read this object". The read path surfaces the two identically so a
	// denial does not leak object existence.
	ErrObjectNotFound = errors.New("object not found")

	// ErrStorageUnavailable marks backing object-store failures. Distinct
	// from validation errors: the request was fine, the infrastructure was
	// not, and the caller may retry with backoff.
	ErrStorageUnavailable = errors.New("object storage unavailable")

	// ErrInvalidVisibility rejects policy writes naming an unknown
	// visibility mode.
	ErrInvalidVisibility = errors.New("invalid visibility")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
