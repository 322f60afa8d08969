package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/vista"
)

const stashKeyPrefix = "vista:stash:"

type stashRepository struct {
	cache CacheRepositoryInterface
	ttl   time.Duration
}

// NewStashRepository keeps one-shot list queries in the cache under random tokens.
func NewStashRepository(cache CacheRepositoryInterface, ttl time.Duration) vista.Stash {
	return &stashRepository{cache: cache, ttl: ttl}
}

func (r *stashRepository) Put(ctx context.Context, values url.Values) (string, error) {
	token := uuid.NewString()
	if err := r.cache.Set(ctx, stashKeyPrefix+token, values.Encode(), r.ttl); err != nil {
		return "", fmt.Errorf("stash query: %w", err)
	}
	return token, nil
}

func (r *stashRepository) Take(ctx context.Context, token string) (url.Values, error) {
	if token == "" {
		return nil, apperrors.ErrNotFound
	}
	raw, err := r.cache.GetDel(ctx, stashKeyPrefix+token)
	if errors.Is(err, ErrCacheMiss) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("take stashed query: %w", err)
	}
	return url.ParseQuery(raw)
}
