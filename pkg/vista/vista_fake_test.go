package vista

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "load-tracker/pkg/errors"
)

type memStore struct {
	mu      sync.Mutex
	rows    map[string]Saved
	saves   int
	findErr error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]Saved)}
}

func memKey(userID uint64, model, name string) string {
	return fmt.Sprintf("%d|%s|%s", userID, model, name)
}

func (s *memStore) Find(_ context.Context, userID uint64, model, name string) (*Saved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	row, ok := s.rows[memKey(userID, model, name)]
	if !ok {
		return nil, apperrors.ErrVistaNotFound
	}
	return &row, nil
}

func (s *memStore) FindDefault(_ context.Context, userID uint64, model string) (*Saved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, row := range s.rows {
		if row.UserID == userID && row.Model == model && row.IsDefault {
			r := row
			return &r, nil
		}
	}
	return nil, apperrors.ErrVistaNotFound
}

func (s *memStore) Save(_ context.Context, v Saved) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if v.IsDefault {
		for k, row := range s.rows {
			if row.UserID == v.UserID && row.Model == v.Model {
				row.IsDefault = false
				s.rows[k] = row
			}
		}
	}
	s.rows[memKey(v.UserID, v.Model, v.Name)] = v
	return nil
}

func (s *memStore) Delete(_ context.Context, userID uint64, model, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, memKey(userID, model, name))
	return nil
}

func (s *memStore) List(_ context.Context, userID uint64, model string) ([]Saved, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Saved
	for _, row := range s.rows {
		if row.UserID == userID && row.Model == model && row.Name != LatestName {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memStash struct {
	mu    sync.Mutex
	items map[string]url.Values
}

func newMemStash() *memStash {
	return &memStash{items: make(map[string]url.Values)}
}

func (s *memStash) Put(_ context.Context, values url.Values) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.items[token] = values
	return token, nil
}

func (s *memStash) Take(_ context.Context, token string) (url.Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[token]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	delete(s.items, token)
	return v, nil
}

var errStoreDown = errors.New("store down")

var testSchema = Schema{
	"job_name":                   {Type: TypeString, Expr: "l.job_name"},
	"po_number":                  {Type: TypeString, Label: "PO Number", Expr: "l.po_number"},
	"description":                {Type: TypeText, Expr: "l.description"},
	"notes":                      {Type: TypeText, Expr: "l.notes"},
	"supplier":                   {Type: TypeRef, Expr: "l.supplier_id", SortExpr: "s.name"},
	"delivery_status__is_active": {Type: TypeBool, Expr: "ds.is_active"},
	"updated_when":               {Type: TypeDateTime, Expr: "l.updated_when"},
	"do_install": {Type: TypeChoice, Expr: "l.do_install", Choices: []Choice{
		{Value: 0, Label: "NA/Unknown"}, {Value: 1, Label: "Deliver"}, {Value: 2, Label: "Install"},
	}},
	"photo": {Type: TypeImage, Expr: "l.photo"},
	"rank":  {Type: TypeInt, Expr: "l.rank"},
}

func testFields() *Fields {
	fs, err := MakeFields("loads", testSchema,
		[]string{"job_name", "po_number", "description", "notes", "supplier", "delivery_status__is_active", "updated_when", "do_install", "photo", "rank"},
		Allow("description", ForColumns),
		Relabel("delivery_status__is_active", "Delivery Is Pending"),
	)
	if err != nil {
		panic(err)
	}
	return fs
}

func testDefaults() url.Values {
	return url.Values{
		"filter__fieldname__0": {"delivery_status__is_active"},
		"filter__op__0":        {"exact"},
		"filter__value__0":     {"True"},
		"order_by":             {"-updated_when"},
		"paginate_by":          {"30"},
	}
}

func newTestManager(store Store, stash Stash) *Manager {
	m, err := NewManager(testFields(), testDefaults(), DefaultLimits(), store, stash, zap.NewNop())
	if err != nil {
		panic(err)
	}
	return m
}
