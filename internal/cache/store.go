package cache

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound reports a key that is absent or already expired on the backend.
	ErrNotFound = errors.New("cache key not found")
	// ErrRejected reports a call the backend answered without success.
	ErrRejected = errors.New("cache backend rejected request")
)

// Backend is the contract the gateway relies on. Every call is a single
// remote invocation; implementations are safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	// Set upserts value. A nil ttl means no expiration; any non-nil ttl,
	// including zero or negative, is forwarded to the backend as is.
	Set(ctx context.Context, key, value string, ttl *int32) error
	// Del is idempotent: an absent key is not an error.
	Del(ctx context.Context, key string) error
}
