package auth

// ProviderIdentity represents a normalized external identity returned by
// an OAuth provider after code exchange. It contains facts only, no
// decisions; mapping to a local user happens in the federation service.
type ProviderIdentity struct {
	Provider      string // e.g. "google"
	Subject       string // provider-scoped stable user identifier (sub)
	Email         string // email returned by provider
	EmailVerified bool   // whether provider asserts email ownership
	Name          string // display name, may be empty
}
