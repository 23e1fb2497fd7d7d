package negotiator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Coddedx/MoviePx-API/internal/auth"
	"github.com/Coddedx/MoviePx-API/internal/auth/token"
)

type stubValidator struct {
	claims *token.Claims
	err    error
}

func (s *stubValidator) Validate(string) (*token.Claims, error) {
	return s.claims, s.err
}

func TestNegotiate(t *testing.T) {
	validClaims := &token.Claims{Roles: []string{"user"}}

	cases := []struct {
		name        string
		header      string
		validator   stubValidator
		wantOutcome Outcome
		wantErr     error
	}{
		{
			name:        "no credential challenges",
			header:      "",
			wantOutcome: ChallengeRequired,
		},
		{
			name:        "valid bearer authenticates",
			header:      "Bearer sometoken",
			validator:   stubValidator{claims: validClaims},
			wantOutcome: BearerValidated,
		},
		{
			name:        "invalid bearer rejects without challenge fallback",
			header:      "Bearer expiredtoken",
			validator:   stubValidator{err: auth.ErrExpired},
			wantOutcome: Rejected,
			wantErr:     auth.ErrExpired,
		},
		{
			name:        "forged signature rejects",
			header:      "Bearer forgedtoken",
			validator:   stubValidator{err: auth.ErrInvalidSignature},
			wantOutcome: Rejected,
			wantErr:     auth.ErrInvalidSignature,
		},
		{
			name:        "non-bearer scheme rejects",
			header:      "Basic dXNlcjpwYXNz",
			wantOutcome: Rejected,
			wantErr:     auth.ErrMalformedToken,
		},
		{
			name:        "bearer with empty token rejects",
			header:      "Bearer ",
			wantOutcome: Rejected,
			wantErr:     auth.ErrMalformedToken,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := New(&tc.validator)
			d := n.Negotiate(tc.header)

			assert.Equal(t, tc.wantOutcome, d.Outcome)
			if tc.wantErr != nil {
				assert.ErrorIs(t, d.Err, tc.wantErr)
			}
			if tc.wantOutcome == BearerValidated {
				require.NotNil(t, d.Claims)
				assert.Equal(t, validClaims.Roles, d.Claims.Roles)
			}
		})
	}
}
