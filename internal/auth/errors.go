package auth

import "errors"

// Token validation failures. Validate never panics on user-supplied
// input; every failure is one of these sentinels (possibly wrapped).
var (
	ErrInvalidSignature      = errors.New("auth: token signature mismatch")
	ErrExpired               = errors.New("auth: token expired")
	ErrMalformedToken        = errors.New("auth: malformed token")
	ErrWrongIssuerOrAudience = errors.New("auth: wrong token issuer or audience")
)

// OAuth federation failures.
var (
	// ErrInvalidOAuthState is returned when a callback presents a state
	// value that is unknown, expired, or already consumed.
	ErrInvalidOAuthState = errors.New("auth: invalid oauth state")

	// ErrFederationFailed is returned when the provider rejects the code
	// exchange or returns claims that cannot be mapped to a local user.
	// Remote detail is wrapped for server-side logs only.
	ErrFederationFailed = errors.New("auth: federated login failed")
)
