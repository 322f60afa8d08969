package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"load-tracker/internal/entities"
	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/vista"
)

const (
	supplierTable  = "suppliers"
	supplierFields = "id, name, details, created_at, updated_at"
)

var SupplierViewSchema = vista.Schema{
	"name":         {Type: vista.TypeString, Expr: "name"},
	"details":      {Type: vista.TypeText, Expr: "details"},
	"created_when": {Type: vista.TypeDateTime, Expr: "created_at"},
	"updated_when": {Type: vista.TypeDateTime, Expr: "updated_at"},
}

type SupplierRepositoryInterface interface {
	List(ctx context.Context, fields *vista.Fields, spec vista.Spec, limit, offset uint64) ([]entities.Supplier, uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.Supplier, error)
	Create(ctx context.Context, s entities.Supplier) (*entities.Supplier, error)
	Update(ctx context.Context, s entities.Supplier) (*entities.Supplier, error)
	Delete(ctx context.Context, id uint64) error
}

type supplierRepository struct {
	storage *pgxpool.Pool
}

func NewSupplierRepository(storage *pgxpool.Pool) SupplierRepositoryInterface {
	return &supplierRepository{storage: storage}
}

func scanSupplier(row pgx.Row) (*entities.Supplier, error) {
	var s entities.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Details, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *supplierRepository) List(ctx context.Context, fields *vista.Fields, spec vista.Spec, limit, offset uint64) ([]entities.Supplier, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countQuery, countArgs, err := vista.ApplyFilters(psql.Select("COUNT(*)").From(supplierTable), fields, spec).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build supplier count query: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Supplier{}, 0, nil
	}

	b := vista.ApplyFilters(psql.Select(supplierFields).From(supplierTable), fields, spec)
	b = vista.ApplyOrder(b, fields, spec, "name ASC", "id ASC")
	if limit > 0 {
		b = b.Limit(limit).Offset(offset)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build supplier list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	suppliers := make([]entities.Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, *s)
	}
	return suppliers, total, rows.Err()
}

func (r *supplierRepository) FindByID(ctx context.Context, id uint64) (*entities.Supplier, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", supplierFields, supplierTable)
	return scanSupplier(r.storage.QueryRow(ctx, query, id))
}

func (r *supplierRepository) Create(ctx context.Context, s entities.Supplier) (*entities.Supplier, error) {
	query := fmt.Sprintf("INSERT INTO %s (name, details) VALUES ($1, $2) RETURNING %s", supplierTable, supplierFields)
	return scanSupplier(r.storage.QueryRow(ctx, query, s.Name, s.Details))
}

func (r *supplierRepository) Update(ctx context.Context, s entities.Supplier) (*entities.Supplier, error) {
	query := fmt.Sprintf("UPDATE %s SET name = $1, details = $2, updated_at = NOW() WHERE id = $3 RETURNING %s",
		supplierTable, supplierFields)
	return scanSupplier(r.storage.QueryRow(ctx, query, s.Name, s.Details, s.ID))
}

func (r *supplierRepository) Delete(ctx context.Context, id uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", supplierTable)
	tag, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
