package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"load-tracker/internal/entities"
)

const notificationSelect = `
	SELECT n.id, n.load_id, n.action, n.created_when, l.job_name, l.po_number
	FROM notifications n
	JOIN loads l ON l.id = n.load_id`

type NotificationRepositoryInterface interface {
	FindByLoadIDForUpdate(ctx context.Context, tx pgx.Tx, loadID uint64) (*entities.Notification, error)
	Create(ctx context.Context, tx pgx.Tx, loadID uint64, action string) (uint64, bool, error)
	UpdateAction(ctx context.Context, tx pgx.Tx, id uint64, action string) error
	FindAll(ctx context.Context) ([]entities.Notification, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]entities.Notification, error)
	DeleteByIDs(ctx context.Context, ids []uint64) (int64, error)
	DeleteByLoadID(ctx context.Context, loadID uint64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type notificationRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationRepository(storage *pgxpool.Pool) NotificationRepositoryInterface {
	return &notificationRepository{storage: storage}
}

func (r *notificationRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanNotifications(rows pgx.Rows) ([]entities.Notification, error) {
	defer rows.Close()
	out := make([]entities.Notification, 0)
	for rows.Next() {
		var n entities.Notification
		if err := rows.Scan(&n.ID, &n.LoadID, &n.Action, &n.CreatedWhen, &n.JobName, &n.PONumber); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// FindByLoadIDForUpdate locks the pending entry of a load so concurrent
// edits merge their actions instead of racing.
func (r *notificationRepository) FindByLoadIDForUpdate(ctx context.Context, tx pgx.Tx, loadID uint64) (*entities.Notification, error) {
	var n entities.Notification
	err := r.getQuerier(tx).QueryRow(ctx,
		"SELECT id, load_id, action, created_when FROM notifications WHERE load_id = $1 FOR UPDATE",
		loadID,
	).Scan(&n.ID, &n.LoadID, &n.Action, &n.CreatedWhen)
	if err != nil {
		return nil, mapError(err)
	}
	return &n, nil
}

// Create inserts a pending entry. It reports false when the load already has
// one, which happens when a concurrent transaction inserted it first.
func (r *notificationRepository) Create(ctx context.Context, tx pgx.Tx, loadID uint64, action string) (uint64, bool, error) {
	var id uint64
	err := r.getQuerier(tx).QueryRow(ctx,
		"INSERT INTO notifications (load_id, action) VALUES ($1, $2) ON CONFLICT (load_id) DO NOTHING RETURNING id",
		loadID, action,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, mapError(err)
	}
	return id, true, nil
}

func (r *notificationRepository) UpdateAction(ctx context.Context, tx pgx.Tx, id uint64, action string) error {
	_, err := r.getQuerier(tx).Exec(ctx, "UPDATE notifications SET action = $1 WHERE id = $2", action, id)
	return mapError(err)
}

func (r *notificationRepository) FindAll(ctx context.Context) ([]entities.Notification, error) {
	rows, err := r.storage.Query(ctx, notificationSelect+" ORDER BY n.created_when, n.id")
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

func (r *notificationRepository) FindByIDs(ctx context.Context, ids []uint64) ([]entities.Notification, error) {
	if len(ids) == 0 {
		return []entities.Notification{}, nil
	}
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("n.id", "n.load_id", "n.action", "n.created_when", "l.job_name", "l.po_number").
		From("notifications n").
		Join("loads l ON l.id = n.load_id").
		Where(sq.Eq{"n.id": ids}).
		OrderBy("n.created_when", "n.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notification query: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanNotifications(rows)
}

func (r *notificationRepository) DeleteByIDs(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Delete("notifications").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build notification delete: %w", err)
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) DeleteByLoadID(ctx context.Context, loadID uint64) (int64, error) {
	tag, err := r.storage.Exec(ctx, "DELETE FROM notifications WHERE load_id = $1", loadID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.storage.Exec(ctx, "DELETE FROM notifications")
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM notifications").Scan(&n)
	return n, err
}
