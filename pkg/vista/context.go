package vista

type FieldInfo struct {
	Name         string     `json:"name"`
	Label        string     `json:"label"`
	Type         FieldType  `json:"type"`
	AvailableFor []Purpose  `json:"available_for"`
	Operators    []Operator `json:"operators,omitempty"`
	Choices      []Choice   `json:"choices,omitempty"`
}

type FilterInfo struct {
	Index int      `json:"index"`
	Field string   `json:"field"`
	Label string   `json:"label"`
	Op    Operator `json:"op"`
	Value string   `json:"value"`
}

// Context is the presentation payload of an applied view.
type Context struct {
	Model         string       `json:"model"`
	Filters       []FilterInfo `json:"filters"`
	OrderBy       []string     `json:"order_by"`
	PaginateBy    int          `json:"paginate_by"`
	ShowColumns   []string     `json:"show_columns"`
	MaxSearchKeys int          `json:"max_search_keys"`
	Fields        []FieldInfo  `json:"fields"`
}

// DescribeContext builds the payload a list UI needs to render the applied
// view and its controls. It has no side effects.
func DescribeContext(fs *Fields, s Spec, limits Limits) Context {
	ctx := Context{
		Model:         fs.model,
		Filters:       make([]FilterInfo, 0, len(s.Filters)),
		OrderBy:       make([]string, 0, len(s.OrderBy)),
		PaginateBy:    s.PageSize(limits.DefaultPageSize),
		MaxSearchKeys: limits.MaxSearchKeys,
		Fields:        make([]FieldInfo, 0, len(fs.order)),
	}

	for i, flt := range s.Filters {
		label := flt.Field
		if f, ok := fs.byName[flt.Field]; ok {
			label = f.Label
		}
		ctx.Filters = append(ctx.Filters, FilterInfo{Index: i, Field: flt.Field, Label: label, Op: flt.Op, Value: flt.Value})
	}
	for _, o := range s.OrderBy {
		ctx.OrderBy = append(ctx.OrderBy, o.String())
	}

	if len(s.ShowColumns) > 0 {
		ctx.ShowColumns = append([]string(nil), s.ShowColumns...)
	} else {
		for _, f := range fs.All() {
			if f.Can(ForColumns) {
				ctx.ShowColumns = append(ctx.ShowColumns, f.Name)
			}
		}
	}

	for _, f := range fs.All() {
		info := FieldInfo{
			Name:         f.Name,
			Label:        f.Label,
			Type:         f.Type,
			AvailableFor: append([]Purpose(nil), f.AvailableFor...),
			Choices:      f.Choices,
		}
		if f.Can(ForFilter) {
			info.Operators = Operators(f.Type)
		}
		ctx.Fields = append(ctx.Fields, info)
	}
	return ctx
}
