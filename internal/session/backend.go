// Package session implements server-side sessions on top of a key-value
// backend with TTL semantics. Clients only ever hold the opaque id.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by a Backend when the key does not exist.
var ErrKeyNotFound = errors.New("session: key not found")

// Entry is a stored value and the instant the backend will drop it.
type Entry struct {
	Value     []byte
	ExpiresAt time.Time
}

// Backend is the key-value contract sessions are stored in.
type Backend interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Expire resets the TTL of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
