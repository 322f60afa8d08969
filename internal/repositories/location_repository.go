package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"load-tracker/internal/entities"
	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/vista"
)

const (
	locationTable  = "locations"
	locationFields = "id, name, is_default, created_at, updated_at"
)

var LocationViewSchema = vista.Schema{
	"name":       {Type: vista.TypeString, Expr: "name"},
	"is_default": {Type: vista.TypeBool, Expr: "is_default"},
}

type LocationRepositoryInterface interface {
	List(ctx context.Context, fields *vista.Fields, spec vista.Spec, limit, offset uint64) ([]entities.Location, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Location, error)
	FindDefault(ctx context.Context) (*entities.Location, error)
	Create(ctx context.Context, loc entities.Location) (*entities.Location, error)
	Update(ctx context.Context, loc entities.Location) (*entities.Location, error)
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type locationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLocationRepository(storage *pgxpool.Pool, logger *zap.Logger) LocationRepositoryInterface {
	return &locationRepository{storage: storage, logger: logger}
}

func (r *locationRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanLocation(row pgx.Row) (*entities.Location, error) {
	var l entities.Location
	if err := row.Scan(&l.ID, &l.Name, &l.IsDefault, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &l, nil
}

func (r *locationRepository) List(ctx context.Context, fields *vista.Fields, spec vista.Spec, limit, offset uint64) ([]entities.Location, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countQuery, countArgs, err := vista.ApplyFilters(psql.Select("COUNT(*)").From(locationTable), fields, spec).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build location count query: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Location{}, 0, nil
	}

	b := vista.ApplyFilters(psql.Select(locationFields).From(locationTable), fields, spec)
	b = vista.ApplyOrder(b, fields, spec, "is_default DESC", "name ASC", "id ASC")
	if limit > 0 {
		b = b.Limit(limit).Offset(offset)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build location list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	locations := make([]entities.Location, 0)
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, err
		}
		locations = append(locations, *l)
	}
	return locations, total, rows.Err()
}

func (r *locationRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Location, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", locationFields, locationTable)
	return scanLocation(r.getQuerier(tx).QueryRow(ctx, query, id))
}

func (r *locationRepository) FindDefault(ctx context.Context) (*entities.Location, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE is_default ORDER BY name, id LIMIT 1", locationFields, locationTable)
	return scanLocation(r.storage.QueryRow(ctx, query))
}

func (r *locationRepository) Create(ctx context.Context, loc entities.Location) (*entities.Location, error) {
	query := fmt.Sprintf("INSERT INTO %s (name, is_default) VALUES ($1, $2) RETURNING %s", locationTable, locationFields)
	return scanLocation(r.storage.QueryRow(ctx, query, loc.Name, loc.IsDefault))
}

func (r *locationRepository) Update(ctx context.Context, loc entities.Location) (*entities.Location, error) {
	query := fmt.Sprintf("UPDATE %s SET name = $1, is_default = $2, updated_at = NOW() WHERE id = $3 RETURNING %s",
		locationTable, locationFields)
	return scanLocation(r.storage.QueryRow(ctx, query, loc.Name, loc.IsDefault, loc.ID))
}

func (r *locationRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", locationTable)
	tag, err := r.getQuerier(tx).Exec(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
