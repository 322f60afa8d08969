package repositories

import (
	"context"
	"time"
)

// CacheRepositoryInterface is the key-value store used for short-lived data.
// GetDel returns ErrCacheMiss when the key does not exist.
type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}
