package vista

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Conditions converts the spec's filters into squirrel predicates.
// Filters that no longer validate against the registry are skipped.
func (fs *Fields) Conditions(s Spec) []sq.Sqlizer {
	var out []sq.Sqlizer
	for _, flt := range s.Filters {
		f, ok := fs.byName[flt.Field]
		if !ok || !f.Can(ForFilter) || !operatorAllowed(f.Type, flt.Op) {
			continue
		}
		arg, err := f.convert(flt.Op, flt.Value)
		if err != nil {
			continue
		}
		out = append(out, condition(f.Expr, flt.Op, arg))
	}
	return out
}

func condition(expr string, op Operator, arg interface{}) sq.Sqlizer {
	switch op {
	case OpIExact:
		return sq.Expr("LOWER("+expr+") = LOWER(?)", arg)
	case OpContains:
		return sq.Like{expr: "%" + likeEscaper.Replace(arg.(string)) + "%"}
	case OpIContains:
		return sq.ILike{expr: "%" + likeEscaper.Replace(arg.(string)) + "%"}
	case OpStartsWith:
		return sq.Like{expr: likeEscaper.Replace(arg.(string)) + "%"}
	case OpIStartsWith:
		return sq.ILike{expr: likeEscaper.Replace(arg.(string)) + "%"}
	case OpGt:
		return sq.Gt{expr: arg}
	case OpGte:
		return sq.GtOrEq{expr: arg}
	case OpLt:
		return sq.Lt{expr: arg}
	case OpLte:
		return sq.LtOrEq{expr: arg}
	case OpIsNull:
		if arg.(bool) {
			return sq.Eq{expr: nil}
		}
		return sq.NotEq{expr: nil}
	default:
		// exact and in; squirrel renders slices as IN (...)
		return sq.Eq{expr: arg}
	}
}

// OrderClauses returns ORDER BY items for the spec's sortable fields.
func (fs *Fields) OrderClauses(s Spec) []string {
	var out []string
	for _, o := range s.OrderBy {
		f, ok := fs.byName[o.Field]
		if !ok || !f.Can(ForSort) {
			continue
		}
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		out = append(out, f.SortExpr+dir)
	}
	return out
}

// ApplyFilters narrows b by the spec's filters. Count queries use this alone.
func ApplyFilters(b sq.SelectBuilder, fs *Fields, s Spec) sq.SelectBuilder {
	for _, c := range fs.Conditions(s) {
		b = b.Where(c)
	}
	return b
}

// ApplyOrder appends the spec's ordering followed by the tie-breakers.
func ApplyOrder(b sq.SelectBuilder, fs *Fields, s Spec, tieBreakers ...string) sq.SelectBuilder {
	order := append(fs.OrderClauses(s), tieBreakers...)
	if len(order) == 0 {
		return b
	}
	return b.OrderBy(order...)
}
