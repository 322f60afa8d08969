package services

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"load-tracker/internal/repositories"
	"load-tracker/pkg/vista"
)

const (
	ModelLoads     = "loads"
	ModelLocations = "locations"
	ModelSuppliers = "suppliers"
)

const ParamPage = "page"

// ViewManagers holds one saved view manager per listable model.
type ViewManagers struct {
	Loads     *vista.Manager
	Locations *vista.Manager
	Suppliers *vista.Manager
}

// ViewList is one page of a list resolved through a saved view.
type ViewList[T any] struct {
	Items    []T
	Total    uint64
	Page     int
	PageSize int
	View     vista.Result
	Context  vista.Context
	Saved    []vista.Saved
}

func NewLoadFields() (*vista.Fields, error) {
	return vista.MakeFields(ModelLoads, repositories.LoadViewSchema, []string{
		"job_name",
		"po_number",
		"supplier",
		"spo_number",
		"description",
		"notes",
		"location",
		"delivery_status",
		"delivery_status__is_active",
		"created_when",
		"updated_when",
		"do_install",
		"photo",
		"completion_status",
		"completion_status__is_active",
	},
		vista.Allow("description", vista.ForColumns),
		vista.Allow("notes", vista.ForColumns),
		vista.Relabel("delivery_status__is_active", "Delivery Is Pending"),
		vista.Relabel("completion_status__is_active", "Completion Is Pending"),
	)
}

func LoadViewDefaults(pageSize int) url.Values {
	return url.Values{
		vista.ParamFilterField + "0": {"delivery_status__is_active"},
		vista.ParamFilterOp + "0":    {string(vista.OpExact)},
		vista.ParamFilterValue + "0": {"True"},
		vista.ParamOrderBy:           {"-updated_when"},
		vista.ParamPaginateBy:        {strconv.Itoa(pageSize)},
	}
}

func NewLocationFields() (*vista.Fields, error) {
	return vista.MakeFields(ModelLocations, repositories.LocationViewSchema, []string{"name", "is_default"})
}

func LocationViewDefaults(pageSize int) url.Values {
	return url.Values{
		vista.ParamOrderBy:    {"name"},
		vista.ParamPaginateBy: {strconv.Itoa(pageSize)},
	}
}

func NewSupplierFields() (*vista.Fields, error) {
	return vista.MakeFields(ModelSuppliers, repositories.SupplierViewSchema,
		[]string{"name", "details", "created_when", "updated_when"})
}

func SupplierViewDefaults(pageSize int) url.Values {
	return url.Values{
		vista.ParamOrderBy:    {"updated_when"},
		vista.ParamPaginateBy: {strconv.Itoa(pageSize)},
	}
}

// NewViewManagers checks every registry and default view once; a bad
// declaration fails startup.
func NewViewManagers(store vista.Store, stash vista.Stash, limits vista.Limits, logger *zap.Logger) (*ViewManagers, error) {
	loadFields, err := NewLoadFields()
	if err != nil {
		return nil, err
	}
	locationFields, err := NewLocationFields()
	if err != nil {
		return nil, err
	}
	supplierFields, err := NewSupplierFields()
	if err != nil {
		return nil, err
	}

	loads, err := vista.NewManager(loadFields, LoadViewDefaults(limits.DefaultPageSize), limits, store, stash, logger)
	if err != nil {
		return nil, err
	}
	locations, err := vista.NewManager(locationFields, LocationViewDefaults(limits.DefaultPageSize), limits, store, stash, logger)
	if err != nil {
		return nil, err
	}
	suppliers, err := vista.NewManager(supplierFields, SupplierViewDefaults(limits.DefaultPageSize), limits, store, stash, logger)
	if err != nil {
		return nil, err
	}

	return &ViewManagers{Loads: loads, Locations: locations, Suppliers: suppliers}, nil
}

// listPage is the part of a list request shared by every model.
type listPage struct {
	result   vista.Result
	saved    []vista.Saved
	page     int
	pageSize int
}

func (p listPage) limitOffset() (uint64, uint64) {
	return uint64(p.pageSize), uint64((p.page - 1) * p.pageSize)
}

func resolveListPage(ctx context.Context, m *vista.Manager, userID uint64, values url.Values, logger *zap.Logger) (listPage, error) {
	result, err := m.Resolve(ctx, vista.Request{UserID: userID, Values: values})
	if err != nil {
		return listPage{}, err
	}

	saved, err := m.ListSaved(ctx, userID)
	if err != nil {
		logger.Warn("could not list saved views", zap.String("model", m.Fields().Model()), zap.Error(err))
		result.Warnings = append(result.Warnings, "saved views are unavailable")
		saved = nil
	}

	page := 1
	if raw := values.Get(ParamPage); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			page = p
		}
	}

	return listPage{
		result:   result,
		saved:    saved,
		page:     page,
		pageSize: result.Spec.PageSize(m.Limits().DefaultPageSize),
	}, nil
}

func newViewList[T any](m *vista.Manager, p listPage, items []T, total uint64) *ViewList[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return &ViewList[T]{
		Items:    items,
		Total:    total,
		Page:     p.page,
		PageSize: p.pageSize,
		View:     p.result,
		Context:  m.Describe(p.result.Spec),
		Saved:    p.saved,
	}
}
