package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"load-tracker/internal/repositories"
)

// Names carry no unique constraint, so rows are matched by name and an
// existing row is left untouched.
func seedStatuses(ctx context.Context, db *pgxpool.Pool, table string, data []statusSeed) error {
	log.Printf("  - seeding '%s'...", table)

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (name, rank, is_active, is_default)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (SELECT 1 FROM %[1]s WHERE name = $1)`, table)

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range data {
		if _, err := tx.Exec(ctx, query, s.Name, s.Rank, s.IsActive, s.IsDefault); err != nil {
			return fmt.Errorf("status %q: %w", s.Name, err)
		}
	}
	return tx.Commit(ctx)
}

func seedDeliveryStatuses(ctx context.Context, db *pgxpool.Pool) error {
	return seedStatuses(ctx, db, repositories.DeliveryStatusTable, deliveryStatusesData)
}

func seedCompletionStatuses(ctx context.Context, db *pgxpool.Pool) error {
	return seedStatuses(ctx, db, repositories.CompletionStatusTable, completionStatusesData)
}
