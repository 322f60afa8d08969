package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"load-tracker/internal/entities"
)

type NotificationGroupRepositoryInterface interface {
	List(ctx context.Context) ([]entities.NotificationGroup, error)
	FindDefaultIDs(ctx context.Context, tx pgx.Tx) ([]uint64, error)
	FindByLoadIDs(ctx context.Context, loadIDs []uint64) (map[uint64][]entities.NotificationGroup, error)
}

type notificationGroupRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationGroupRepository(storage *pgxpool.Pool) NotificationGroupRepositoryInterface {
	return &notificationGroupRepository{storage: storage}
}

func (r *notificationGroupRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *notificationGroupRepository) List(ctx context.Context) ([]entities.NotificationGroup, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT id, name, email_addresses, is_default FROM notification_groups ORDER BY is_default DESC, name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]entities.NotificationGroup, 0)
	for rows.Next() {
		var g entities.NotificationGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.EmailAddresses, &g.IsDefault); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *notificationGroupRepository) FindDefaultIDs(ctx context.Context, tx pgx.Tx) ([]uint64, error) {
	rows, err := r.getQuerier(tx).Query(ctx, "SELECT id FROM notification_groups WHERE is_default ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindByLoadIDs returns the groups subscribed to each load, keyed by load ID.
func (r *notificationGroupRepository) FindByLoadIDs(ctx context.Context, loadIDs []uint64) (map[uint64][]entities.NotificationGroup, error) {
	result := make(map[uint64][]entities.NotificationGroup, len(loadIDs))
	if len(loadIDs) == 0 {
		return result, nil
	}

	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("lng.load_id", "g.id", "g.name", "g.email_addresses", "g.is_default").
		From("load_notification_groups lng").
		Join("notification_groups g ON g.id = lng.group_id").
		Where(sq.Eq{"lng.load_id": loadIDs}).
		OrderBy("lng.load_id", "g.is_default DESC", "g.name", "g.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			loadID uint64
			g      entities.NotificationGroup
		)
		if err := rows.Scan(&loadID, &g.ID, &g.Name, &g.EmailAddresses, &g.IsDefault); err != nil {
			return nil, err
		}
		result[loadID] = append(result[loadID], g)
	}
	return result, rows.Err()
}
