package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCoreDictionaries fills the reference tables every load points at.
func SeedCoreDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  seeding core dictionaries...")

	if err := seedDeliveryStatuses(ctx, db); err != nil {
		log.Fatalf("❌ delivery statuses: %v", err)
	}
	if err := seedCompletionStatuses(ctx, db); err != nil {
		log.Fatalf("❌ completion statuses: %v", err)
	}
	if err := seedLocations(ctx, db); err != nil {
		log.Fatalf("❌ locations: %v", err)
	}
	if err := seedNotificationGroups(ctx, db); err != nil {
		log.Fatalf("❌ notification groups: %v", err)
	}
	log.Println("✅ core dictionaries seeded")
}
