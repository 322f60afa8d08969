package vista

import (
	"context"
	"net/url"
	"time"
)

// LatestName is the reserved name of the per-user, per-model record that
// holds the most recently applied query.
const LatestName = ""

type Saved struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"-"`
	Model     string    `json:"model"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	Query     string    `json:"query"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists saved views. Find and FindDefault return
// errors.ErrVistaNotFound when nothing matches.
type Store interface {
	Find(ctx context.Context, userID uint64, model, name string) (*Saved, error)
	FindDefault(ctx context.Context, userID uint64, model string) (*Saved, error)
	// Save upserts by (user, model, name). When IsDefault is set any other
	// default of the same user and model is cleared in the same transaction.
	Save(ctx context.Context, s Saved) error
	// Delete does not fail when the view is absent.
	Delete(ctx context.Context, userID uint64, model, name string) error
	// List returns the named views, excluding the latest marker.
	List(ctx context.Context, userID uint64, model string) ([]Saved, error)
}

// Stash hands an encoded query from one request to the next list request.
// Take consumes the token; a second Take returns errors.ErrNotFound.
type Stash interface {
	Put(ctx context.Context, values url.Values) (string, error)
	Take(ctx context.Context, token string) (url.Values, error)
}
