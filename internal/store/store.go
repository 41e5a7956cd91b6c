// Package store provides the key-value persistence used to memoise
// calculation results.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moneymapp/moneymapp-calc/pkg/constants"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("key not found")

// KeyValueStore is a byte-oriented key-value store with per-key expiry.
// A zero ttl keeps the value until it is deleted.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a store backend.
type Options struct {
	Backend  string
	Address  string
	Password string
	DB       int
}

// New builds the store named by opts.Backend. An empty backend selects the
// in-memory store.
func New(opts Options) (KeyValueStore, error) {
	switch opts.Backend {
	case "", constants.CacheBackendMemory:
		return NewMemoryStore(), nil
	case constants.CacheBackendRedis:
		if opts.Address == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     opts.Address,
			Password: opts.Password,
			DB:       opts.DB,
		})
		return NewRedisStore(client), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
