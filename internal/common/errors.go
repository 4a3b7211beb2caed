// Package common defines shared constants and sentinel errors used across
// the web front end and the API server of RecipeCorner. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrorInvalidArgument marks caller input the service rejected.
	ErrorInvalidArgument = errors.New("invalid argument")

	// ErrorConflict marks a write that lost to an existing row, such as
	// registering an email that is already taken.
	ErrorConflict = errors.New("conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential errors. Login failures with an unknown email and with a
	// wrong password both map to ErrInvalidCredentials so that callers
	// cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUpstreamUnavailable marks transient failures talking to the
	// identity store or the API. Never treated as success by callers.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
