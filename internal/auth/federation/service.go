package federation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Coddedx/MoviePx-API/internal/auth"
	"github.com/Coddedx/MoviePx-API/internal/auth/exchange"
	"github.com/Coddedx/MoviePx-API/internal/auth/provider"
	"github.com/Coddedx/MoviePx-API/internal/logger"
	"github.com/Coddedx/MoviePx-API/internal/users"
)

const (
	defaultStateTTL        = 5 * time.Minute
	defaultExchangeTimeout = 10 * time.Second
)

// TokenIssuer mints local session tokens for resolved users.
type TokenIssuer interface {
	Issue(user *users.User) (string, error)
}

// Service drives the authorization-code exchange with external identity
// providers and translates provider identities into local accounts with
// a freshly issued session token.
type Service struct {
	providers *provider.Registry
	states    exchange.Store
	users     users.Store
	tokens    TokenIssuer

	stateTTL        time.Duration
	exchangeTimeout time.Duration
}

// Result is the terminal success state of one exchange.
type Result struct {
	Token string
	User  *users.User
}

func New(
	providers *provider.Registry,
	states exchange.Store,
	userStore users.Store,
	tokens TokenIssuer,
) *Service {
	return &Service{
		providers:       providers,
		states:          states,
		users:           userStore,
		tokens:          tokens,
		stateTTL:        defaultStateTTL,
		exchangeTimeout: defaultExchangeTimeout,
	}
}

// Begin starts an exchange: it generates a correlation value, persists
// it with a short TTL, and returns the provider authorization URL the
// client must be redirected to.
func (s *Service) Begin(ctx context.Context, providerName string) (string, error) {
	p, err := s.providers.Get(providerName)
	if err != nil {
		return "", err
	}

	state, err := exchange.NewState()
	if err != nil {
		return "", err
	}

	entry := exchange.Entry{
		Provider:  p.Name(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.states.Put(ctx, state, entry, s.stateTTL); err != nil {
		return "", fmt.Errorf("failed to persist oauth state: %w", err)
	}

	return p.AuthCodeURL(state), nil
}

// Complete handles the provider callback. The state value is consumed
// atomically up front, so a replayed or concurrent callback fails with
// ErrInvalidOAuthState no matter how the rest of the exchange goes.
func (s *Service) Complete(ctx context.Context, state, code string) (*Result, error) {
	entry, err := s.states.Consume(ctx, state)
	if err != nil {
		if errors.Is(err, exchange.ErrNotFound) {
			return nil, auth.ErrInvalidOAuthState
		}
		return nil, err
	}

	p, err := s.providers.Get(entry.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrFederationFailed, err)
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, s.exchangeTimeout)
	defer cancel()

	identity, err := p.Exchange(exchangeCtx, code)
	if err != nil {
		logger.Warn("provider code exchange failed", map[string]any{
			"provider": entry.Provider,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", auth.ErrFederationFailed, err)
	}

	if identity.Email == "" {
		logger.Warn("provider identity missing email", map[string]any{
			"provider": entry.Provider,
		})
		return nil, fmt.Errorf("%w: identity has no email", auth.ErrFederationFailed)
	}

	user, err := s.resolveUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	logger.Info("federated login completed", map[string]any{
		"provider": entry.Provider,
		"user_id":  user.ID,
	})

	return &Result{Token: token, User: user}, nil
}

// resolveUser maps a provider identity onto a local account: by provider
// subject first, then by email (linking the new identity), and finally
// by auto-registration without a password.
func (s *Service) resolveUser(ctx context.Context, identity *auth.ProviderIdentity) (*users.User, error) {
	user, err := s.users.FindByProviderSubject(ctx, identity.Provider, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, err
	}

	user, err = s.users.FindByEmail(ctx, identity.Email)
	if err == nil {
		if linkErr := s.users.LinkProviderIdentity(ctx, user.ID, identity.Provider, identity.Subject); linkErr != nil {
			return nil, linkErr
		}
		return user, nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, err
	}

	user, err = s.users.Create(ctx, users.NewUser{
		Email:         identity.Email,
		EmailVerified: identity.EmailVerified,
	})
	if err != nil {
		return nil, err
	}

	if err := s.users.LinkProviderIdentity(ctx, user.ID, identity.Provider, identity.Subject); err != nil {
		return nil, err
	}

	logger.Info("auto-registered federated user", map[string]any{
		"provider": identity.Provider,
		"user_id":  user.ID,
	})

	return user, nil
}
