package federation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Coddedx/MoviePx-API/internal/auth"
	"github.com/Coddedx/MoviePx-API/internal/auth/exchange"
	"github.com/Coddedx/MoviePx-API/internal/auth/provider"
	"github.com/Coddedx/MoviePx-API/internal/auth/signingkey"
	"github.com/Coddedx/MoviePx-API/internal/auth/token"
	"github.com/Coddedx/MoviePx-API/internal/users"
)

// fakeProvider returns a fixed identity or error and records exchanges.
type fakeProvider struct {
	name      string
	identity  *auth.ProviderIdentity
	err       error
	exchanges int
	mu        sync.Mutex
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.example.com/authorize?state=" + state
}

func (f *fakeProvider) Exchange(_ context.Context, _ string) (*auth.ProviderIdentity, error) {
	f.mu.Lock()
	f.exchanges++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

// fakeUserStore is a concurrency-safe in-memory users.Store.
type fakeUserStore struct {
	mu      sync.Mutex
	byID    map[string]*users.User
	byEmail map[string]string
	links   map[string]string // provider+subject -> user id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    map[string]*users.User{},
		byEmail: map[string]string{},
		links:   map[string]string{},
	}
}

func linkKey(provider, subject string) string { return provider + "|" + subject }

func (f *fakeUserStore) FindByProviderSubject(_ context.Context, provider, subject string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.links[linkKey(provider, subject)]; ok {
		return f.byID[id], nil
	}
	return nil, users.ErrNotFound
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.byEmail[strings.ToLower(email)]; ok {
		return f.byID[id], nil
	}
	return nil, users.ErrNotFound
}

func (f *fakeUserStore) Create(_ context.Context, nu users.NewUser) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &users.User{
		ID:            uuid.NewString(),
		Email:         nu.Email,
		EmailVerified: nu.EmailVerified,
		Roles:         []string{"user"},
		Status:        "active",
		CreatedAt:     time.Now(),
	}
	f.byID[u.ID] = u
	f.byEmail[strings.ToLower(u.Email)] = u.ID
	return u, nil
}

func (f *fakeUserStore) LinkProviderIdentity(_ context.Context, userID, provider, subject string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[linkKey(provider, subject)] = userID
	return nil
}

func (f *fakeUserStore) ValidatePassword(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

func newTokenService(t *testing.T) *token.Service {
	t.Helper()
	key, err := signingkey.New(strings.Repeat("s", signingkey.MinSecretBytes))
	require.NoError(t, err)
	return token.NewService(key, "moviepx", "moviepx-clients", time.Hour)
}

type fixture struct {
	svc      *Service
	provider *fakeProvider
	states   *exchange.MemoryStore
	users    *fakeUserStore
	tokens   *token.Service
}

func newFixture(t *testing.T, p *fakeProvider) *fixture {
	t.Helper()

	states := exchange.NewMemoryStore(time.Minute)
	t.Cleanup(states.Stop)

	store := newFakeUserStore()
	tokens := newTokenService(t)

	return &fixture{
		svc:      New(provider.NewRegistry(p), states, store, tokens),
		provider: p,
		states:   states,
		users:    store,
		tokens:   tokens,
	}
}

func googleIdentity() *auth.ProviderIdentity {
	return &auth.ProviderIdentity{
		Provider:      "google",
		Subject:       "google-sub-123",
		Email:         "viewer@example.com",
		EmailVerified: true,
	}
}

// beginAndState runs Begin and extracts the state the service stored.
func beginAndState(t *testing.T, f *fixture) string {
	t.Helper()
	authURL, err := f.svc.Begin(context.Background(), "google")
	require.NoError(t, err)

	_, after, found := strings.Cut(authURL, "state=")
	require.True(t, found, "auth url must carry the state parameter")
	return after
}

func TestBeginUnknownProvider(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "google", identity: googleIdentity()})

	_, err := f.svc.Begin(context.Background(), "github")
	assert.Error(t, err)
}

func TestCompleteAutoRegistersNewUser(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "google", identity: googleIdentity()})
	state := beginAndState(t, f)

	res, err := f.svc.Complete(context.Background(), state, "auth-code")
	require.NoError(t, err)

	assert.Equal(t, "viewer@example.com", res.User.Email)
	assert.True(t, res.User.EmailVerified)

	claims, err := f.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject())

	// The identity is linked: a second login resolves the same account.
	state = beginAndState(t, f)
	res2, err := f.svc.Complete(context.Background(), state, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, res2.User.ID)
}

func TestCompleteLinksByEmail(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "google", identity: googleIdentity()})

	existing, err := f.users.Create(context.Background(), users.NewUser{Email: "viewer@example.com"})
	require.NoError(t, err)

	state := beginAndState(t, f)
	res, err := f.svc.Complete(context.Background(), state, "auth-code")
	require.NoError(t, err)

	assert.Equal(t, existing.ID, res.User.ID)

	linked, err := f.users.FindByProviderSubject(context.Background(), "google", "google-sub-123")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)
}

func TestCompleteReplayedState(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "google", identity: googleIdentity()})
	state := beginAndState(t, f)

	_, err := f.svc.Complete(context.Background(), state, "auth-code")
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), state, "auth-code")
	assert.ErrorIs(t, err, auth.ErrInvalidOAuthState)
}

func TestCompleteUnknownState(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "google", identity: googleIdentity()})

	_, err := f.svc.Complete(context.Background(), "never-issued", "auth-code")
	assert.ErrorIs(t, err, auth.ErrInvalidOAuthState)
}

func TestCompleteProviderFailure(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "google", err: errors.New("invalid_grant")})
	state := beginAndState(t, f)

	_, err := f.svc.Complete(context.Background(), state, "expired-code")
	assert.ErrorIs(t, err, auth.ErrFederationFailed)

	// The failed exchange must not leave the state consumable.
	_, err = f.svc.Complete(context.Background(), state, "expired-code")
	assert.ErrorIs(t, err, auth.ErrInvalidOAuthState)
}

func TestCompleteMissingEmail(t *testing.T) {
	identity := googleIdentity()
	identity.Email = ""

	f := newFixture(t, &fakeProvider{name: "google", identity: identity})
	state := beginAndState(t, f)

	_, err := f.svc.Complete(context.Background(), state, "auth-code")
	assert.ErrorIs(t, err, auth.ErrFederationFailed)
}

func TestCompleteConcurrentCallbacks(t *testing.T) {
	f := newFixture(t, &fakeProvider{name: "google", identity: googleIdentity()})
	state := beginAndState(t, f)

	type outcome struct {
		res *Result
		err error
	}

	results := make(chan outcome, 2)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			res, err := f.svc.Complete(context.Background(), state, "auth-code")
			results <- outcome{res, err}
		}()
	}
	close(start)

	var successes, stateErrs int
	for i := 0; i < 2; i++ {
		o := <-results
		if o.err == nil {
			successes++
		} else if errors.Is(o.err, auth.ErrInvalidOAuthState) {
			stateErrs++
		}
	}

	assert.Equal(t, 1, successes, "exactly one callback may win")
	assert.Equal(t, 1, stateErrs, "the loser observes an invalid state")
	assert.Equal(t, 1, f.provider.exchanges, "only the winner reaches the provider")
}
