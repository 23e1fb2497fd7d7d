package signingkey

import (
	"errors"
	"fmt"
)

// MinSecretBytes is the minimum accepted secret length: 256 bits of key
// material for HMAC-SHA256.
const MinSecretBytes = 32

var ErrSecretMissing = errors.New("signingkey: secret is not configured")

// Key holds the symmetric secret used to sign and verify session tokens.
// It is constructed once at startup and shared read-only; rotating the
// secret invalidates every previously issued token.
type Key struct {
	material []byte
}

// New validates the configured secret and wraps it. A missing or short
// secret is a startup error, never a per-request one.
func New(secret string) (*Key, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("signingkey: secret is %d bytes, need at least %d", len(secret), MinSecretBytes)
	}
	return &Key{material: []byte(secret)}, nil
}

// Bytes returns the raw key material. Callers must not mutate it.
func (k *Key) Bytes() []byte {
	return k.material
}
