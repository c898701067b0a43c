// Package metadata is the local key/value store of the client: app-lock
// preference, persisted refresh token and passcode verifier.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns (nil, nil) for an
// absent key. SetMany and DeleteMany apply all keys in one statement, so a
// related pair such as salt and verifier never ends up half written.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
}
