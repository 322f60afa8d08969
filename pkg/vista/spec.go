package vista

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "load-tracker/pkg/errors"
)

const (
	ParamFilterField = "filter__fieldname__"
	ParamFilterOp    = "filter__op__"
	ParamFilterValue = "filter__value__"
	ParamOrderBy     = "order_by"
	ParamPaginateBy  = "paginate_by"
	ParamShowColumns = "show_columns"
)

type Operator string

const (
	OpExact       Operator = "exact"
	OpIExact      Operator = "iexact"
	OpContains    Operator = "contains"
	OpIContains   Operator = "icontains"
	OpStartsWith  Operator = "startswith"
	OpIStartsWith Operator = "istartswith"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpIn          Operator = "in"
	OpIsNull      Operator = "isnull"
)

var operatorsByType = map[FieldType][]Operator{
	TypeString:   {OpExact, OpIExact, OpContains, OpIContains, OpStartsWith, OpIStartsWith, OpIn, OpIsNull},
	TypeText:     {OpExact, OpIExact, OpContains, OpIContains, OpStartsWith, OpIStartsWith, OpIsNull},
	TypeInt:      {OpExact, OpGt, OpGte, OpLt, OpLte, OpIn, OpIsNull},
	TypeChoice:   {OpExact, OpIn},
	TypeRef:      {OpExact, OpIn, OpIsNull},
	TypeBool:     {OpExact, OpIsNull},
	TypeDateTime: {OpExact, OpGt, OpGte, OpLt, OpLte, OpIsNull},
	TypeImage:    {OpIsNull},
}

// Operators lists the operators accepted for a field type.
func Operators(t FieldType) []Operator {
	return operatorsByType[t]
}

func operatorAllowed(t FieldType, op Operator) bool {
	for _, o := range operatorsByType[t] {
		if o == op {
			return true
		}
	}
	return false
}

// Limits bound what a single request may ask for.
type Limits struct {
	MaxSearchKeys   int
	DefaultPageSize int
	MaxPageSize     int
}

func DefaultLimits() Limits {
	return Limits{MaxSearchKeys: 5, DefaultPageSize: 30, MaxPageSize: 100}
}

type Filter struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value string   `json:"value"`
}

type Order struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

func (o Order) String() string {
	if o.Desc {
		return "-" + o.Field
	}
	return o.Field
}

// Spec is a validated filter/sort/pagination request. PaginateBy is zero
// when the request did not set a page size.
type Spec struct {
	Filters     []Filter
	OrderBy     []Order
	PaginateBy  int
	ShowColumns []string
}

// PageSize returns PaginateBy when set, otherwise def.
func (s Spec) PageSize(def int) int {
	if s.PaginateBy > 0 {
		return s.PaginateBy
	}
	return def
}

func (s Spec) clone() Spec {
	return Spec{
		Filters:     append([]Filter(nil), s.Filters...),
		OrderBy:     append([]Order(nil), s.OrderBy...),
		PaginateBy:  s.PaginateBy,
		ShowColumns: append([]string(nil), s.ShowColumns...),
	}
}

// Values encodes the spec back into request parameters.
func (s Spec) Values() url.Values {
	v := url.Values{}
	for i, f := range s.Filters {
		idx := strconv.Itoa(i)
		v.Set(ParamFilterField+idx, f.Field)
		v.Set(ParamFilterOp+idx, string(f.Op))
		v.Set(ParamFilterValue+idx, f.Value)
	}
	for _, o := range s.OrderBy {
		v.Add(ParamOrderBy, o.String())
	}
	if s.PaginateBy > 0 {
		v.Set(ParamPaginateBy, strconv.Itoa(s.PaginateBy))
	}
	for _, c := range s.ShowColumns {
		v.Add(ParamShowColumns, c)
	}
	return v
}

// Parse validates raw parameters against the registry. Anything that does
// not validate is dropped and reported; the remaining subset is returned.
func (fs *Fields) Parse(values url.Values, limits Limits) (Spec, []*apperrors.ValidationError) {
	var (
		spec   Spec
		issues []*apperrors.ValidationError
	)

	for _, idx := range filterIndexes(values) {
		key := ParamFilterField + strconv.Itoa(idx)
		name := strings.TrimSpace(values.Get(key))
		if name == "" {
			continue
		}
		if idx >= limits.MaxSearchKeys {
			issues = append(issues, apperrors.NewValidationError(key, "only %d filters are allowed", limits.MaxSearchKeys))
			continue
		}
		op := Operator(strings.TrimSpace(values.Get(ParamFilterOp + strconv.Itoa(idx))))
		if op == "" {
			op = OpExact
		}
		value := values.Get(ParamFilterValue + strconv.Itoa(idx))

		f, ok := fs.byName[name]
		if !ok || !f.Can(ForFilter) {
			issues = append(issues, apperrors.NewValidationError(name, "field is not filterable"))
			continue
		}
		if !operatorAllowed(f.Type, op) {
			issues = append(issues, apperrors.NewValidationError(name, "operator %q is not allowed", op))
			continue
		}
		if _, err := f.convert(op, value); err != nil {
			issues = append(issues, apperrors.NewValidationError(name, "%v", err))
			continue
		}
		spec.Filters = append(spec.Filters, Filter{Field: name, Op: op, Value: value})
	}

	seen := make(map[string]bool)
	for _, raw := range values[ParamOrderBy] {
		for _, item := range strings.Split(raw, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			o := Order{Field: strings.TrimPrefix(item, "-"), Desc: strings.HasPrefix(item, "-")}
			f, ok := fs.byName[o.Field]
			if !ok || !f.Can(ForSort) {
				issues = append(issues, apperrors.NewValidationError(o.Field, "field is not sortable"))
				continue
			}
			if seen[o.Field] {
				continue
			}
			seen[o.Field] = true
			spec.OrderBy = append(spec.OrderBy, o)
		}
	}

	if raw := strings.TrimSpace(values.Get(ParamPaginateBy)); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			issues = append(issues, apperrors.NewValidationError(ParamPaginateBy, "not a number"))
		case n <= 0:
			// falls back to the default page size
		case limits.MaxPageSize > 0 && n > limits.MaxPageSize:
			issues = append(issues, apperrors.NewValidationError(ParamPaginateBy, "clamped to %d", limits.MaxPageSize))
			spec.PaginateBy = limits.MaxPageSize
		default:
			spec.PaginateBy = n
		}
	}

	shown := make(map[string]bool)
	for _, name := range values[ParamShowColumns] {
		name = strings.TrimSpace(name)
		if name == "" || shown[name] {
			continue
		}
		f, ok := fs.byName[name]
		if !ok || !f.Can(ForColumns) {
			issues = append(issues, apperrors.NewValidationError(name, "field cannot be shown as a column"))
			continue
		}
		shown[name] = true
		spec.ShowColumns = append(spec.ShowColumns, name)
	}

	return spec, issues
}

// filterIndexes returns the sorted N of every filter__fieldname__N key.
func filterIndexes(values url.Values) []int {
	var idx []int
	for key := range values {
		if !strings.HasPrefix(key, ParamFilterField) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(key, ParamFilterField))
		if err != nil || n < 0 {
			continue
		}
		idx = append(idx, n)
	}
	sort.Ints(idx)
	return idx
}

// convert turns a raw filter value into the typed SQL argument for op.
func (f *Field) convert(op Operator, raw string) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	switch op {
	case OpIsNull:
		return parseBool(raw)
	case OpIn:
		var out []interface{}
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := f.scalar(part)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("empty value list")
		}
		return out, nil
	default:
		return f.scalar(raw)
	}
}

func (f *Field) scalar(raw string) (interface{}, error) {
	switch f.Type {
	case TypeString, TypeText:
		return raw, nil
	case TypeInt, TypeRef:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", raw)
		}
		return n, nil
	case TypeChoice:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid choice", raw)
		}
		if _, ok := f.choiceLabel(n); !ok {
			return nil, fmt.Errorf("%d is not a valid choice", n)
		}
		return n, nil
	case TypeBool:
		return parseBool(raw)
	case TypeDateTime:
		return parseTime(raw)
	default:
		return nil, fmt.Errorf("field type %s cannot be compared", f.Type)
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", raw)
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04", "2006-01-02"}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date", raw)
}
