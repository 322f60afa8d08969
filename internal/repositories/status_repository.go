package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"load-tracker/internal/entities"
)

const (
	DeliveryStatusTable   = "delivery_statuses"
	CompletionStatusTable = "completion_statuses"
)

// StatusRepositoryInterface serves both delivery and completion statuses;
// the two share one shape and differ only by table.
type StatusRepositoryInterface interface {
	List(ctx context.Context) ([]entities.Status, error)
	FindDefault(ctx context.Context) (*entities.Status, error)
}

type statusRepository struct {
	storage         *pgxpool.Pool
	table           string
	recipientsTable string
}

func NewStatusRepository(storage *pgxpool.Pool, table string) StatusRepositoryInterface {
	recipients := "delivery_status_recipients"
	if table == CompletionStatusTable {
		recipients = "completion_status_recipients"
	}
	return &statusRepository{storage: storage, table: table, recipientsTable: recipients}
}

func (r *statusRepository) List(ctx context.Context) ([]entities.Status, error) {
	query := fmt.Sprintf(`
		SELECT st.id, st.name, st.rank, st.is_active, st.is_default,
		       COALESCE(array_agg(rc.user_id ORDER BY rc.user_id) FILTER (WHERE rc.user_id IS NOT NULL), '{}')
		FROM %s st
		LEFT JOIN %s rc ON rc.status_id = st.id
		GROUP BY st.id
		ORDER BY st.is_default DESC, st.rank, st.name`, r.table, r.recipientsTable)

	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]entities.Status, 0)
	for rows.Next() {
		var (
			s          entities.Status
			recipients []int64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Rank, &s.IsActive, &s.IsDefault, &recipients); err != nil {
			return nil, err
		}
		s.RecipientIDs = make([]uint64, 0, len(recipients))
		for _, id := range recipients {
			s.RecipientIDs = append(s.RecipientIDs, uint64(id))
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *statusRepository) FindDefault(ctx context.Context) (*entities.Status, error) {
	query := fmt.Sprintf("SELECT id, name, rank, is_active, is_default FROM %s WHERE is_default ORDER BY rank, name LIMIT 1", r.table)
	var s entities.Status
	if err := r.storage.QueryRow(ctx, query).Scan(&s.ID, &s.Name, &s.Rank, &s.IsActive, &s.IsDefault); err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}
