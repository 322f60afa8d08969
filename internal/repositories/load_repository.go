package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"load-tracker/internal/entities"
	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/vista"
)

const loadTable = "loads"

var loadColumns = []string{
	"l.id", "l.job_name", "l.po_number", "l.supplier_id", "l.spo_number", "l.description", "l.notes",
	"l.location_id", "l.delivery_status_id", "l.completion_status_id", "l.do_install", "l.photo",
	"l.created_when", "l.updated_when", "l.deleted_when",
	"s.name", "loc.name", "ds.name", "ds.is_active", "cs.name", "cs.is_active",
}

// LoadViewSchema maps view field names onto the joined load select.
var LoadViewSchema = vista.Schema{
	"job_name":                     {Type: vista.TypeString, Expr: "l.job_name"},
	"po_number":                    {Type: vista.TypeString, Label: "PO Number", Expr: "l.po_number"},
	"supplier":                     {Type: vista.TypeRef, Expr: "l.supplier_id", SortExpr: "s.name"},
	"spo_number":                   {Type: vista.TypeString, Label: "Supplier PO Number", Expr: "l.spo_number"},
	"description":                  {Type: vista.TypeText, Expr: "l.description"},
	"notes":                        {Type: vista.TypeText, Expr: "l.notes"},
	"location":                     {Type: vista.TypeRef, Expr: "l.location_id", SortExpr: "loc.name"},
	"delivery_status":              {Type: vista.TypeRef, Expr: "l.delivery_status_id", SortExpr: "ds.rank"},
	"delivery_status__is_active":   {Type: vista.TypeBool, Expr: "ds.is_active"},
	"completion_status":            {Type: vista.TypeRef, Expr: "l.completion_status_id", SortExpr: "cs.rank"},
	"completion_status__is_active": {Type: vista.TypeBool, Expr: "cs.is_active"},
	"created_when":                 {Type: vista.TypeDateTime, Expr: "l.created_when"},
	"updated_when":                 {Type: vista.TypeDateTime, Expr: "l.updated_when"},
	"do_install": {Type: vista.TypeChoice, Label: "Deliver/Install", Expr: "l.do_install", Choices: []vista.Choice{
		{Value: int(entities.DoInstallUnknown), Label: entities.DoInstallUnknown.Label()},
		{Value: int(entities.DoInstallDeliver), Label: entities.DoInstallDeliver.Label()},
		{Value: int(entities.DoInstallInstall), Label: entities.DoInstallInstall.Label()},
	}},
	"photo": {Type: vista.TypeImage, Expr: "l.photo"},
}

type LoadRepositoryInterface interface {
	List(ctx context.Context, fields *vista.Fields, spec vista.Spec, limit, offset uint64) ([]entities.Load, uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64, includeDeleted bool) (*entities.Load, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]entities.Load, error)
	Create(ctx context.Context, tx pgx.Tx, load entities.Load) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, load entities.Load) error
	SoftDelete(ctx context.Context, id uint64) error
	SetNotificationGroups(ctx context.Context, tx pgx.Tx, loadID uint64, groupIDs []uint64) error
	ReassignLocation(ctx context.Context, tx pgx.Tx, fromID, toID uint64) (int64, error)
}

type loadRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewLoadRepository(storage *pgxpool.Pool, logger *zap.Logger) LoadRepositoryInterface {
	return &loadRepository{storage: storage, logger: logger}
}

func (r *loadRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func loadSelect(psql sq.StatementBuilderType, columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).
		From(loadTable + " l").
		LeftJoin("suppliers s ON s.id = l.supplier_id").
		LeftJoin("locations loc ON loc.id = l.location_id").
		LeftJoin("delivery_statuses ds ON ds.id = l.delivery_status_id").
		LeftJoin("completion_statuses cs ON cs.id = l.completion_status_id")
}

func scanLoad(row pgx.Row) (*entities.Load, error) {
	var (
		l         entities.Load
		doInstall int
	)
	err := row.Scan(
		&l.ID, &l.JobName, &l.PONumber, &l.SupplierID, &l.SPONumber, &l.Description, &l.Notes,
		&l.LocationID, &l.DeliveryStatusID, &l.CompletionStatusID, &doInstall, &l.Photo,
		&l.CreatedWhen, &l.UpdatedWhen, &l.DeletedWhen,
		&l.SupplierName, &l.LocationName, &l.DeliveryStatusName, &l.DeliveryStatusActive,
		&l.CompletionStatusName, &l.CompletionStatusActive,
	)
	if err != nil {
		return nil, mapError(err)
	}
	l.DoInstall = entities.DoInstall(doInstall)
	return &l, nil
}

func (r *loadRepository) List(ctx context.Context, fields *vista.Fields, spec vista.Spec, limit, offset uint64) ([]entities.Load, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	live := sq.Eq{"l.deleted_when": nil}

	countQuery, countArgs, err := vista.ApplyFilters(loadSelect(psql, "COUNT(*)").Where(live), fields, spec).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build load count query: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Load{}, 0, nil
	}

	b := vista.ApplyFilters(loadSelect(psql, loadColumns...).Where(live), fields, spec)
	b = vista.ApplyOrder(b, fields, spec, "l.updated_when ASC", "l.id ASC")
	if limit > 0 {
		b = b.Limit(limit).Offset(offset)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build load list query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	loads := make([]entities.Load, 0, limit)
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, 0, err
		}
		loads = append(loads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return loads, total, nil
}

func (r *loadRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64, includeDeleted bool) (*entities.Load, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	b := loadSelect(psql, loadColumns...).Where(sq.Eq{"l.id": id})
	if !includeDeleted {
		b = b.Where(sq.Eq{"l.deleted_when": nil})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load query: %w", err)
	}

	q := r.getQuerier(tx)
	l, err := scanLoad(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	groups, err := r.groupIDs(ctx, q, []uint64{id})
	if err != nil {
		return nil, err
	}
	l.NotificationGroupIDs = groups[id]
	return l, nil
}

// FindByIDs includes soft-deleted loads; pending notifications may still
// reference them.
func (r *loadRepository) FindByIDs(ctx context.Context, ids []uint64) ([]entities.Load, error) {
	if len(ids) == 0 {
		return []entities.Load{}, nil
	}
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := loadSelect(psql, loadColumns...).Where(sq.Eq{"l.id": ids}).OrderBy("l.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load query: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []entities.Load
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, err
		}
		loads = append(loads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groups, err := r.groupIDs(ctx, r.storage, ids)
	if err != nil {
		return nil, err
	}
	for i := range loads {
		loads[i].NotificationGroupIDs = groups[loads[i].ID]
	}
	return loads, nil
}

func (r *loadRepository) groupIDs(ctx context.Context, q Querier, loadIDs []uint64) (map[uint64][]uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select("lng.load_id", "lng.group_id").
		From("load_notification_groups lng").
		Join("notification_groups g ON g.id = lng.group_id").
		Where(sq.Eq{"lng.load_id": loadIDs}).
		OrderBy("g.is_default DESC", "g.name", "g.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load groups query: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64][]uint64)
	for rows.Next() {
		var loadID, groupID uint64
		if err := rows.Scan(&loadID, &groupID); err != nil {
			return nil, err
		}
		out[loadID] = append(out[loadID], groupID)
	}
	return out, rows.Err()
}

func (r *loadRepository) Create(ctx context.Context, tx pgx.Tx, load entities.Load) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(loadTable).
		Columns("job_name", "po_number", "supplier_id", "spo_number", "description", "notes",
			"location_id", "delivery_status_id", "completion_status_id", "do_install", "photo",
			"created_when", "updated_when").
		Values(load.JobName, load.PONumber, load.SupplierID, load.SPONumber, load.Description, load.Notes,
			load.LocationID, load.DeliveryStatusID, load.CompletionStatusID, int(load.DoInstall), load.Photo,
			sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build load insert: %w", err)
	}

	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

func (r *loadRepository) Update(ctx context.Context, tx pgx.Tx, load entities.Load) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	b := psql.Update(loadTable).
		Set("job_name", load.JobName).
		Set("po_number", load.PONumber).
		Set("supplier_id", load.SupplierID).
		Set("spo_number", load.SPONumber).
		Set("description", load.Description).
		Set("notes", load.Notes).
		Set("location_id", load.LocationID).
		Set("delivery_status_id", load.DeliveryStatusID).
		Set("completion_status_id", load.CompletionStatusID).
		Set("do_install", int(load.DoInstall)).
		Set("updated_when", sq.Expr("NOW()")).
		Where(sq.Eq{"id": load.ID, "deleted_when": nil})
	if load.Photo != nil {
		b = b.Set("photo", *load.Photo)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build load update: %w", err)
	}

	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *loadRepository) SoftDelete(ctx context.Context, id uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(loadTable).
		Set("deleted_when", time.Now()).
		Where(sq.Eq{"id": id, "deleted_when": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build load delete: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	r.logger.Info("load soft-deleted", zap.Uint64("loadID", id))
	return nil
}

func (r *loadRepository) SetNotificationGroups(ctx context.Context, tx pgx.Tx, loadID uint64, groupIDs []uint64) error {
	q := r.getQuerier(tx)
	if _, err := q.Exec(ctx, "DELETE FROM load_notification_groups WHERE load_id = $1", loadID); err != nil {
		return err
	}
	if len(groupIDs) == 0 {
		return nil
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	b := psql.Insert("load_notification_groups").Columns("load_id", "group_id")
	for _, gid := range groupIDs {
		b = b.Values(loadID, gid)
	}
	query, args, err := b.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build load groups insert: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return mapError(err)
	}
	return nil
}

// ReassignLocation points every load at fromID, deleted or not, to toID.
func (r *loadRepository) ReassignLocation(ctx context.Context, tx pgx.Tx, fromID, toID uint64) (int64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(loadTable).
		Set("location_id", toID).
		Where(sq.Eq{"location_id": fromID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build location reassignment: %w", err)
	}

	tag, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}
