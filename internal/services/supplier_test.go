package services

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/entities"
	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/vista"
)

type fakeSupplierRepo struct {
	rows   map[uint64]entities.Supplier
	nextID uint64
	limit  uint64
}

func (r *fakeSupplierRepo) List(_ context.Context, _ *vista.Fields, _ vista.Spec, limit, _ uint64) ([]entities.Supplier, uint64, error) {
	r.limit = limit
	out := make([]entities.Supplier, 0, len(r.rows))
	for _, s := range r.rows {
		out = append(out, s)
	}
	return out, uint64(len(out)), nil
}

func (r *fakeSupplierRepo) FindByID(_ context.Context, id uint64) (*entities.Supplier, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSupplierRepo) Create(_ context.Context, s entities.Supplier) (*entities.Supplier, error) {
	r.nextID++
	s.ID = r.nextID
	r.rows[s.ID] = s
	return &s, nil
}

func (r *fakeSupplierRepo) Update(_ context.Context, s entities.Supplier) (*entities.Supplier, error) {
	if _, ok := r.rows[s.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	r.rows[s.ID] = s
	return &s, nil
}

func (r *fakeSupplierRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := r.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func newSupplierFixture(t *testing.T) (*SupplierService, *fakeSupplierRepo, *ViewManagers) {
	t.Helper()
	repo := &fakeSupplierRepo{rows: map[uint64]entities.Supplier{
		3: {ID: 3, Name: "Acme Tile", Details: "net 30"},
	}, nextID: 3}
	views, err := NewViewManagers(newFakeVistaStore(), &fakeStash{}, vista.DefaultLimits(), zap.NewNop())
	require.NoError(t, err)
	return NewSupplierService(repo, views.Suppliers, views.Loads, zap.NewNop()), repo, views
}

func TestSupplierService_CreateUpdateDelete(t *testing.T) {
	svc, repo, _ := newSupplierFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateSupplierDTO{Name: "Stone Co", Details: "call first"})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), created.ID)

	details := "email only"
	updated, err := svc.Update(ctx, created.ID, dto.UpdateSupplierDTO{Details: &details})
	require.NoError(t, err)
	assert.Equal(t, "Stone Co", updated.Name)
	assert.Equal(t, "email only", updated.Details)

	closed, err := svc.Close(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stone Co", closed.Label)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.NotContains(t, repo.rows, created.ID)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), apperrors.ErrNotFound)
}

func TestSupplierService_ListUsesViewPageSize(t *testing.T) {
	svc, repo, _ := newSupplierFixture(t)

	list, err := svc.List(context.Background(), 1, url.Values{vista.ParamPaginateBy: {"10"}, vista.ParamQuerySubmitted: {"1"}})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), repo.limit)
	assert.Equal(t, 10, list.PageSize)
	assert.Equal(t, uint64(1), list.Total)
	assert.Equal(t, "Acme Tile", list.Items[0].Name)
	assert.Equal(t, vista.SourceSubmitted, list.View.Source)
}

func TestSupplierService_LoadsFrom(t *testing.T) {
	svc, _, views := newSupplierFixture(t)
	ctx := context.Background()

	stash, err := svc.LoadsFrom(ctx, 3)
	require.NoError(t, err)

	res, err := views.Loads.Resolve(ctx, vista.Request{UserID: 2, Values: url.Values{vista.ParamStash: {stash.Token}}})
	require.NoError(t, err)
	require.Len(t, res.Spec.Filters, 1)
	assert.Equal(t, vista.Filter{Field: "supplier", Op: vista.OpExact, Value: "3"}, res.Spec.Filters[0])

	_, err = svc.LoadsFrom(ctx, 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReferenceService(t *testing.T) {
	delivery := &fakeStatusRepo{statuses: []entities.Status{
		{ID: 1, Name: "Pending", IsActive: true, IsDefault: true},
		{ID: 2, Name: "Delivered", Rank: 1, RecipientIDs: []uint64{7}},
	}}
	groups := &fakeGroupRepo{groups: []entities.NotificationGroup{
		{ID: 1, Name: "Office", EmailAddresses: "a@example.com; b@example.com", IsDefault: true},
	}}
	svc := NewReferenceService(delivery, &fakeStatusRepo{}, groups, zap.NewNop())
	ctx := context.Background()

	statuses, err := svc.DeliveryStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, []uint64{}, statuses[0].RecipientIDs)
	assert.Equal(t, []uint64{7}, statuses[1].RecipientIDs)

	completion, err := svc.CompletionStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, completion)

	out, err := svc.NotificationGroups(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, out[0].Recipients)
}
