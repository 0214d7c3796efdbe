package cache

import (
	"context"
	"time"
)

// Cache is a read-through cache in front of the relational store. It is
// advisory: implementations must absorb backend failures and degrade to
// always-miss rather than failing the request.
type Cache interface {
	// Get unmarshals the cached value for key into dest and reports whether
	// the key was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Remove(ctx context.Context, keys ...string) error
}
