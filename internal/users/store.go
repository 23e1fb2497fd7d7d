package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("users: not found")
	ErrAlreadyRegistered = errors.New("users: credentials already exist")
)

// User is a local account record. Accounts are never deleted, only
// soft-disabled via Status.
type User struct {
	ID            string
	Email         string
	EmailVerified bool
	Roles         []string
	Status        string
	CreatedAt     time.Time
}

// Active reports whether the account may authenticate.
func (u *User) Active() bool {
	return u.Status == "active"
}

// NewUser describes an account to create. Password is optional:
// provider-linked accounts are created without one.
type NewUser struct {
	Email         string
	EmailVerified bool
	Password      string
	Roles         []string
}

// Store is the identity-store boundary. Password hashing lives behind it;
// the auth core only ever sees plaintext in and a yes/no out.
type Store interface {
	// FindByProviderSubject looks up the user linked to a provider
	// identity. Returns ErrNotFound when no link exists.
	FindByProviderSubject(ctx context.Context, provider, subject string) (*User, error)

	// FindByEmail looks up a user by email, case-insensitively.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create inserts a new user, hashing the password when one is given.
	// Returns ErrAlreadyRegistered when credentials already exist for the
	// email.
	Create(ctx context.Context, nu NewUser) (*User, error)

	// LinkProviderIdentity records that an external identity maps to an
	// existing local user.
	LinkProviderIdentity(ctx context.Context, userID, provider, subject string) error

	// ValidatePassword checks a plaintext password against the stored
	// hash. A user without credentials never validates.
	ValidatePassword(ctx context.Context, userID, plaintext string) (bool, error)
}
