// Package vista implements per-user list views: a static field registry,
// parsing of filter/sort/pagination parameters, saved and latest views, and
// their application to squirrel select builders.
package vista

import (
	"fmt"
	"strings"

	apperrors "load-tracker/pkg/errors"
)

type FieldType string

const (
	TypeString   FieldType = "string"
	TypeText     FieldType = "text"
	TypeInt      FieldType = "int"
	TypeBool     FieldType = "bool"
	TypeDateTime FieldType = "datetime"
	TypeChoice   FieldType = "choice"
	TypeRef      FieldType = "ref"
	TypeImage    FieldType = "image"
)

type Purpose string

const (
	ForFilter  Purpose = "filter"
	ForSort    Purpose = "sort"
	ForColumns Purpose = "columns"
)

type Choice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// Column is the schema entry of one model attribute.
// Expr is the SQL expression filtered on; SortExpr defaults to Expr.
type Column struct {
	Type     FieldType
	Label    string
	Expr     string
	SortExpr string
	Choices  []Choice
}

// Schema maps attribute names (including "rel__attr" paths) to columns.
type Schema map[string]Column

type Field struct {
	Name         string
	Type         FieldType
	Label        string
	Expr         string
	SortExpr     string
	Choices      []Choice
	AvailableFor []Purpose
}

func (f *Field) Can(p Purpose) bool {
	for _, a := range f.AvailableFor {
		if a == p {
			return true
		}
	}
	return false
}

func (f *Field) choiceLabel(v int) (string, bool) {
	for _, c := range f.Choices {
		if c.Value == v {
			return c.Label, true
		}
	}
	return "", false
}

// Fields is the ordered registry of view fields for one model.
type Fields struct {
	model  string
	order  []string
	byName map[string]*Field
}

// Option post-processes a registry built by MakeFields.
type Option func(*Fields) error

// Allow adds purposes to a field's availability.
func Allow(name string, purposes ...Purpose) Option {
	return func(fs *Fields) error {
		f, ok := fs.byName[name]
		if !ok {
			return fmt.Errorf("%w: %s.%s", apperrors.ErrUnknownField, fs.model, name)
		}
		for _, p := range purposes {
			if !f.Can(p) {
				f.AvailableFor = append(f.AvailableFor, p)
			}
		}
		return nil
	}
}

// Relabel overrides the generated label.
func Relabel(name, label string) Option {
	return func(fs *Fields) error {
		f, ok := fs.byName[name]
		if !ok {
			return fmt.Errorf("%w: %s.%s", apperrors.ErrUnknownField, fs.model, name)
		}
		f.Label = label
		return nil
	}
}

// MakeFields builds the registry for the listed names in the given order.
// It fails on names missing from the schema; callers run it at startup.
func MakeFields(model string, schema Schema, names []string, opts ...Option) (*Fields, error) {
	fs := &Fields{model: model, byName: make(map[string]*Field, len(names))}
	for _, name := range names {
		col, ok := schema[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", apperrors.ErrUnknownField, model, name)
		}
		if _, dup := fs.byName[name]; dup {
			return nil, fmt.Errorf("duplicate view field %s.%s", model, name)
		}
		if col.Expr == "" {
			return nil, fmt.Errorf("view field %s.%s has no column expression", model, name)
		}
		f := &Field{
			Name:         name,
			Type:         col.Type,
			Label:        col.Label,
			Expr:         col.Expr,
			SortExpr:     col.SortExpr,
			Choices:      col.Choices,
			AvailableFor: defaultPurposes(col.Type),
		}
		if f.Label == "" {
			f.Label = labelFor(name)
		}
		if f.SortExpr == "" {
			f.SortExpr = f.Expr
		}
		fs.order = append(fs.order, name)
		fs.byName[name] = f
	}
	for _, opt := range opts {
		if err := opt(fs); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func defaultPurposes(t FieldType) []Purpose {
	switch t {
	case TypeText:
		return []Purpose{ForFilter}
	case TypeImage:
		return []Purpose{ForFilter, ForColumns}
	default:
		return []Purpose{ForFilter, ForSort, ForColumns}
	}
}

// labelFor turns "delivery_status__is_active" into "Delivery Status Is Active".
func labelFor(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func (fs *Fields) Model() string { return fs.model }

func (fs *Fields) Get(name string) (*Field, bool) {
	f, ok := fs.byName[name]
	return f, ok
}

// All returns the fields in declaration order.
func (fs *Fields) All() []*Field {
	out := make([]*Field, 0, len(fs.order))
	for _, name := range fs.order {
		out = append(out, fs.byName[name])
	}
	return out
}
