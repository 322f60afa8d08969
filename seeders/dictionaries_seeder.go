package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedLocations(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - seeding 'locations'...")
	const query = `
		INSERT INTO locations (name, is_default)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM locations WHERE name = $1)`

	for _, l := range locationsData {
		if _, err := db.Exec(ctx, query, l.Name, l.IsDefault); err != nil {
			return fmt.Errorf("location %q: %w", l.Name, err)
		}
	}
	return nil
}

func seedNotificationGroups(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - seeding 'notification_groups'...")
	const query = `
		INSERT INTO notification_groups (name, email_addresses, is_default)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM notification_groups WHERE name = $1)`

	for _, g := range notificationGroupsData {
		if _, err := db.Exec(ctx, query, g.Name, g.EmailAddresses, g.IsDefault); err != nil {
			return fmt.Errorf("notification group %q: %w", g.Name, err)
		}
	}
	return nil
}
