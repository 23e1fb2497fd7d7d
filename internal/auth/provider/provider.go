package provider

import (
	"context"

	"github.com/Coddedx/MoviePx-API/internal/auth"
)

// OAuthProvider defines the contract every external identity provider
// must implement. Implementations return identity facts only and must
// not perform user creation, linking, or token issuance.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google").
	Name() string

	// AuthCodeURL returns the provider authorization URL. The state
	// parameter is generated and persisted by the caller.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for provider credentials
	// and returns a normalized identity. No auth decisions are made here.
	Exchange(ctx context.Context, code string) (*auth.ProviderIdentity, error)
}
