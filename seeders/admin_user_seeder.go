package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedAdminUser makes sure the local users mirror holds username and returns
// its id.
func SeedAdminUser(ctx context.Context, db *pgxpool.Pool, username, email string) (uint64, error) {
	var id uint64
	err := db.QueryRow(ctx, `
		INSERT INTO users (username, email) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET email = EXCLUDED.email
		RETURNING id`, username, email).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("seed user %q: %w", username, err)
	}
	log.Printf("  - user '%s' has id %d", username, id)
	return id, nil
}
