package exchange

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Consume when the state value is unknown,
// expired, or was already consumed.
var ErrNotFound = errors.New("exchange: state not found")

// Entry is the transient state correlating an outbound authorization
// redirect with its eventual callback.
type Entry struct {
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps pending OAuth exchanges keyed by their correlation value.
// Consume must be atomic check-and-consume: of any number of concurrent
// callers presenting the same state, exactly one receives the entry and
// the rest receive ErrNotFound.
type Store interface {
	Put(ctx context.Context, state string, e Entry, ttl time.Duration) error
	Consume(ctx context.Context, state string) (*Entry, error)
}

// NewState generates a correlation value with 256 bits of entropy.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("exchange: failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
