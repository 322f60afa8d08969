package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/vista"
)

const vistaFields = "id, user_id, model_name, name, is_default, query, updated_at"

type vistaRepository struct {
	storage   *pgxpool.Pool
	txManager TxManagerInterface
	logger    *zap.Logger
}

// NewVistaRepository returns the Postgres-backed saved view store.
func NewVistaRepository(storage *pgxpool.Pool, txManager TxManagerInterface, logger *zap.Logger) vista.Store {
	return &vistaRepository{storage: storage, txManager: txManager, logger: logger}
}

func scanVista(row pgx.Row) (*vista.Saved, error) {
	var s vista.Saved
	if err := row.Scan(&s.ID, &s.UserID, &s.Model, &s.Name, &s.IsDefault, &s.Query, &s.UpdatedAt); err != nil {
		err = mapError(err)
		if err == apperrors.ErrNotFound {
			return nil, apperrors.ErrVistaNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *vistaRepository) Find(ctx context.Context, userID uint64, model, name string) (*vista.Saved, error) {
	return scanVista(r.storage.QueryRow(ctx,
		"SELECT "+vistaFields+" FROM vistas WHERE user_id = $1 AND model_name = $2 AND name = $3",
		userID, model, name))
}

func (r *vistaRepository) FindDefault(ctx context.Context, userID uint64, model string) (*vista.Saved, error) {
	return scanVista(r.storage.QueryRow(ctx,
		"SELECT "+vistaFields+" FROM vistas WHERE user_id = $1 AND model_name = $2 AND is_default ORDER BY updated_at DESC LIMIT 1",
		userID, model))
}

func (r *vistaRepository) Save(ctx context.Context, s vista.Saved) error {
	return r.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if s.IsDefault {
			if _, err := tx.Exec(ctx,
				"UPDATE vistas SET is_default = FALSE WHERE user_id = $1 AND model_name = $2 AND name <> $3 AND is_default",
				s.UserID, s.Model, s.Name); err != nil {
				return mapError(err)
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO vistas (user_id, model_name, name, is_default, query)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, model_name, name)
			DO UPDATE SET is_default = EXCLUDED.is_default, query = EXCLUDED.query, updated_at = NOW()`,
			s.UserID, s.Model, s.Name, s.IsDefault, s.Query)
		return mapError(err)
	})
}

func (r *vistaRepository) Delete(ctx context.Context, userID uint64, model, name string) error {
	_, err := r.storage.Exec(ctx,
		"DELETE FROM vistas WHERE user_id = $1 AND model_name = $2 AND name = $3",
		userID, model, name)
	return mapError(err)
}

func (r *vistaRepository) List(ctx context.Context, userID uint64, model string) ([]vista.Saved, error) {
	rows, err := r.storage.Query(ctx,
		"SELECT "+vistaFields+" FROM vistas WHERE user_id = $1 AND model_name = $2 AND name <> '' ORDER BY name",
		userID, model)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vista.Saved, 0)
	for rows.Next() {
		s, err := scanVista(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
