package negotiator

import (
	"strings"

	"github.com/Coddedx/MoviePx-API/internal/auth"
	"github.com/Coddedx/MoviePx-API/internal/auth/token"
)

// Outcome tags the result of scheme negotiation for one request.
type Outcome int

const (
	// BearerValidated: a bearer token was present and valid.
	BearerValidated Outcome = iota
	// ChallengeRequired: no credential was presented; the caller should
	// be sent into the OAuth challenge flow.
	ChallengeRequired
	// Rejected: a credential was presented and failed validation. There
	// is deliberately no fallback from an invalid bearer token to a
	// challenge.
	Rejected
)

// Decision is the negotiation result. Claims is set for
// BearerValidated, Err for Rejected.
type Decision struct {
	Outcome Outcome
	Claims  *token.Claims
	Err     error
}

// TokenValidator validates raw bearer tokens.
type TokenValidator interface {
	Validate(raw string) (*token.Claims, error)
}

// Negotiator picks the authentication path for a request from its
// credential evidence alone. Precedence is fixed: a present bearer token
// is authoritative and is validated first; the OAuth challenge applies
// only when no credential was presented at all.
type Negotiator struct {
	tokens TokenValidator
}

func New(tokens TokenValidator) *Negotiator {
	return &Negotiator{tokens: tokens}
}

// Negotiate inspects the Authorization header value and decides.
func (n *Negotiator) Negotiate(authorization string) Decision {
	if authorization == "" {
		return Decision{Outcome: ChallengeRequired}
	}

	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return Decision{Outcome: Rejected, Err: auth.ErrMalformedToken}
	}

	claims, err := n.tokens.Validate(parts[1])
	if err != nil {
		return Decision{Outcome: Rejected, Err: err}
	}

	return Decision{Outcome: BearerValidated, Claims: claims}
}
