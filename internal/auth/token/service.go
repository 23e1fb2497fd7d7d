package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Coddedx/MoviePx-API/internal/auth"
	"github.com/Coddedx/MoviePx-API/internal/auth/signingkey"
	"github.com/Coddedx/MoviePx-API/internal/users"
)

// Claims is the claim set carried by a session token.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Subject returns the local user id the token was issued for.
func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

// HasRole reports whether the token carries the given role claim.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Service issues and validates stateless HS256 session tokens. Both
// operations are pure computations over the shared signing key; there is
// no server-side session state and no revocation, invalidation relies on
// expiry alone.
type Service struct {
	key      *signingkey.Key
	issuer   string
	audience string
	lifetime time.Duration

	now func() time.Time
}

func NewService(key *signingkey.Key, issuer, audience string, lifetime time.Duration) *Service {
	return &Service{
		key:      key,
		issuer:   issuer,
		audience: audience,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue signs a token for the given user. The result is deterministic for
// identical inputs and timestamp; uniqueness across calls comes from iat.
func (s *Service) Issue(user *users.User) (string, error) {
	now := s.now()

	claims := Claims{
		Roles: user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.key.Bytes())
}

// Validate decodes and verifies a token: signature, issuer, audience and
// expiry, with zero leeway so a token presented exactly at its expiry
// timestamp is already expired. All failures map onto the auth error
// taxonomy; raw parser detail stays wrapped for logs.
func (s *Service) Validate(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(0),
	)

	claims := &Claims{}
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.key.Bytes(), nil
	})
	if err != nil {
		return nil, mapValidationError(err)
	}
	if !tok.Valid {
		return nil, auth.ErrMalformedToken
	}

	return claims, nil
}

func mapValidationError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return auth.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return auth.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return auth.ErrExpired
	default:
		// Issuer, audience and remaining claim failures.
		return auth.ErrWrongIssuerOrAudience
	}
}
