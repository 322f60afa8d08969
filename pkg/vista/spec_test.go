package vista

import (
	"net/url"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidParameters(t *testing.T) {
	values := url.Values{
		"filter__fieldname__0": {"po_number"},
		"filter__op__0":        {"icontains"},
		"filter__value__0":     {"PO-1"},
		"filter__fieldname__1": {"do_install"},
		"filter__op__1":        {"in"},
		"filter__value__1":     {"1, 2"},
		"order_by":             {"-updated_when", "job_name"},
		"paginate_by":          {"50"},
		"show_columns":         {"job_name", "description"},
	}

	spec, issues := testFields().Parse(values, DefaultLimits())
	assert.Empty(t, issues)
	assert.Equal(t, []Filter{
		{Field: "po_number", Op: OpIContains, Value: "PO-1"},
		{Field: "do_install", Op: OpIn, Value: "1, 2"},
	}, spec.Filters)
	assert.Equal(t, []Order{{Field: "updated_when", Desc: true}, {Field: "job_name"}}, spec.OrderBy)
	assert.Equal(t, 50, spec.PaginateBy)
	assert.Equal(t, []string{"job_name", "description"}, spec.ShowColumns)
}

func TestParse_DropsUndeclaredField(t *testing.T) {
	values := url.Values{
		"filter__fieldname__0": {"secret_field"},
		"filter__value__0":     {"x"},
	}

	spec, issues := testFields().Parse(values, DefaultLimits())
	assert.Empty(t, spec.Filters)
	require.Len(t, issues, 1)
	assert.Equal(t, "secret_field", issues[0].Field)

	b := ApplyFilters(sq.Select("l.id").From("loads l"), testFields(), spec)
	sql, args, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT l.id FROM loads l", sql)
	assert.Empty(t, args)
}

func TestParse_DropsInvalidOperatorsAndValues(t *testing.T) {
	values := url.Values{
		"filter__fieldname__0": {"photo"},
		"filter__op__0":        {"exact"},
		"filter__value__0":     {"a.jpg"},
		"filter__fieldname__1": {"rank"},
		"filter__op__1":        {"gt"},
		"filter__value__1":     {"abc"},
		"filter__fieldname__2": {"do_install"},
		"filter__value__2":     {"7"},
		"filter__fieldname__3": {"job_name"},
		"filter__value__3":     {"kept"},
	}

	spec, issues := testFields().Parse(values, DefaultLimits())
	assert.Len(t, issues, 3)
	assert.Equal(t, []Filter{{Field: "job_name", Op: OpExact, Value: "kept"}}, spec.Filters)
}

func TestParse_NotSortableAndNotColumn(t *testing.T) {
	values := url.Values{
		"order_by":     {"notes,-photo,job_name,job_name"},
		"show_columns": {"notes"},
	}

	spec, issues := testFields().Parse(values, DefaultLimits())
	assert.Len(t, issues, 3)
	assert.Equal(t, []Order{{Field: "job_name"}}, spec.OrderBy)
	assert.Empty(t, spec.ShowColumns)
}

func TestParse_FilterLimit(t *testing.T) {
	values := url.Values{}
	for i, v := range []string{"a", "b", "c", "d", "e", "f"} {
		idx := string(rune('0' + i))
		values.Set(ParamFilterField+idx, "job_name")
		values.Set(ParamFilterValue+idx, v)
	}

	spec, issues := testFields().Parse(values, DefaultLimits())
	assert.Len(t, spec.Filters, 5)
	require.Len(t, issues, 1)
	assert.Equal(t, ParamFilterField+"5", issues[0].Field)
}

func TestParse_PageSize(t *testing.T) {
	limits := DefaultLimits()

	spec, issues := testFields().Parse(url.Values{"paginate_by": {"1000"}}, limits)
	assert.Equal(t, limits.MaxPageSize, spec.PaginateBy)
	assert.Len(t, issues, 1)

	spec, issues = testFields().Parse(url.Values{"paginate_by": {"0"}}, limits)
	assert.Empty(t, issues)
	assert.Equal(t, 30, spec.PageSize(limits.DefaultPageSize))

	spec, issues = testFields().Parse(url.Values{"paginate_by": {"lots"}}, limits)
	assert.Len(t, issues, 1)
	assert.Equal(t, 0, spec.PaginateBy)
}

func TestSpec_ValuesRoundTrip(t *testing.T) {
	spec := Spec{
		Filters:    []Filter{{Field: "job_name", Op: OpIContains, Value: "roof"}},
		OrderBy:    []Order{{Field: "updated_when", Desc: true}},
		PaginateBy: 20,
	}

	parsed, issues := testFields().Parse(spec.Values(), DefaultLimits())
	assert.Empty(t, issues)
	assert.Equal(t, spec.Filters, parsed.Filters)
	assert.Equal(t, spec.OrderBy, parsed.OrderBy)
	assert.Equal(t, spec.PaginateBy, parsed.PaginateBy)
}

func TestApply_BuildsWhereAndOrder(t *testing.T) {
	fs := testFields()
	spec := Spec{
		Filters: []Filter{
			{Field: "delivery_status__is_active", Op: OpExact, Value: "True"},
			{Field: "po_number", Op: OpIContains, Value: "50%"},
			{Field: "supplier", Op: OpIsNull, Value: "false"},
			{Field: "do_install", Op: OpIn, Value: "1,2"},
		},
		OrderBy: []Order{{Field: "supplier"}, {Field: "updated_when", Desc: true}},
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	b := psql.Select("l.id").From("loads l")
	b = ApplyOrder(ApplyFilters(b, fs, spec), fs, spec, "l.id DESC")

	sql, args, err := b.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ds.is_active = $1")
	assert.Contains(t, sql, "l.po_number ILIKE $2")
	assert.Contains(t, sql, "l.supplier_id IS NOT NULL")
	assert.Contains(t, sql, "l.do_install IN ($3,$4)")
	assert.Contains(t, sql, "ORDER BY s.name ASC, l.updated_when DESC, l.id DESC")
	assert.Equal(t, []interface{}{true, `%50\%%`, 1, 2}, args)
}

func TestApply_CaseInsensitiveExact(t *testing.T) {
	fs := testFields()
	spec := Spec{Filters: []Filter{{Field: "job_name", Op: OpIExact, Value: "Roof"}}}

	sql, args, err := ApplyFilters(sq.Select("l.id").From("loads l"), fs, spec).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "LOWER(l.job_name) = LOWER(?)")
	assert.Equal(t, []interface{}{"Roof"}, args)
}

func TestDescribeContext(t *testing.T) {
	fs := testFields()
	spec := Spec{
		Filters: []Filter{{Field: "delivery_status__is_active", Op: OpExact, Value: "True"}},
		OrderBy: []Order{{Field: "updated_when", Desc: true}},
	}

	ctx := DescribeContext(fs, spec, DefaultLimits())
	assert.Equal(t, "loads", ctx.Model)
	assert.Equal(t, 30, ctx.PaginateBy)
	assert.Equal(t, 5, ctx.MaxSearchKeys)
	assert.Equal(t, []string{"-updated_when"}, ctx.OrderBy)
	require.Len(t, ctx.Filters, 1)
	assert.Equal(t, "Delivery Is Pending", ctx.Filters[0].Label)
	assert.NotContains(t, ctx.ShowColumns, "notes")
	assert.Contains(t, ctx.ShowColumns, "description")
	assert.Len(t, ctx.Fields, 10)

	// pure: describing twice yields the same payload
	assert.Equal(t, ctx, DescribeContext(fs, spec, DefaultLimits()))
}
