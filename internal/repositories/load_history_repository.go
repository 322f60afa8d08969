package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"load-tracker/internal/entities"
)

type LoadHistoryRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, h entities.LoadHistory) (uint64, error)
	FindByLoadID(ctx context.Context, loadID uint64) ([]entities.LoadHistory, error)
}

type loadHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewLoadHistoryRepository(storage *pgxpool.Pool) LoadHistoryRepositoryInterface {
	return &loadHistoryRepository{storage: storage}
}

func (r *loadHistoryRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *loadHistoryRepository) Create(ctx context.Context, tx pgx.Tx, h entities.LoadHistory) (uint64, error) {
	var id uint64
	err := r.getQuerier(tx).QueryRow(ctx,
		"INSERT INTO load_histories (user_id, load_id, data) VALUES ($1, $2, $3) RETURNING id",
		h.UserID, h.LoadID, []byte(h.Data),
	).Scan(&id)
	return id, mapError(err)
}

// FindByLoadID returns the newest entry first.
func (r *loadHistoryRepository) FindByLoadID(ctx context.Context, loadID uint64) ([]entities.LoadHistory, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT id, user_id, load_id, changed_when, data FROM load_histories WHERE load_id = $1 ORDER BY changed_when DESC, id DESC",
		loadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	histories := make([]entities.LoadHistory, 0)
	for rows.Next() {
		var (
			h    entities.LoadHistory
			data []byte
		)
		if err := rows.Scan(&h.ID, &h.UserID, &h.LoadID, &h.ChangedWhen, &data); err != nil {
			return nil, err
		}
		h.Data = data
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
