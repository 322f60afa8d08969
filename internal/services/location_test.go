package services

import (
	"context"
	"errors"
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

func u64(v uint64) *uint64 { return &v }

func newLocationFixture(t *testing.T) (*LocationService, *fakeLocationRepo, *fakeLoadRepo, *fakeTxManager, *ViewManagers) {
	t.Helper()
	locations := newFakeLocationRepo(
		entities.Location{ID: 1, Name: "Yard", IsDefault: true},
		entities.Location{ID: 2, Name: "Warehouse"},
	)
	loads := newFakeLoadRepo()
	loads.put(entities.Load{ID: 10, JobName: "A", PONumber: "1", LocationID: u64(2)})
	loads.put(entities.Load{ID: 11, JobName: "B", PONumber: "2", LocationID: u64(2)})
	loads.put(entities.Load{ID: 12, JobName: "C", PONumber: "3", LocationID: u64(1)})

	views, err := NewViewManagers(newFakeVistaStore(), &fakeStash{}, vista.DefaultLimits(), zap.NewNop())
	require.NoError(t, err)

	tx := &fakeTxManager{}
	svc := NewLocationService(tx, locations, loads, views.Locations, views.Loads, zap.NewNop())
	return svc, locations, loads, tx, views
}

func TestLocationService_Merge(t *testing.T) {
	svc, locations, loads, tx, _ := newLocationFixture(t)

	res, err := svc.Merge(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, &dto.MergeResultDTO{SourceID: 2, TargetID: 1, ReassignedIDs: 2}, res)

	assert.NotContains(t, locations.rows, uint64(2))
	for _, id := range []uint64{10, 11, 12} {
		assert.Equal(t, uint64(1), *loads.rows[id].LocationID)
	}
	assert.Equal(t, 1, tx.commits)
}

func TestLocationService_MergeIntoItself(t *testing.T) {
	svc, _, loads, tx, _ := newLocationFixture(t)

	_, err := svc.Merge(context.Background(), 2, 2)
	var invalid *apperrors.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Empty(t, loads.reassigned)
	assert.Zero(t, tx.commits+tx.rollbacks)
}

func TestLocationService_MergeMissingTarget(t *testing.T) {
	svc, locations, loads, tx, _ := newLocationFixture(t)

	_, err := svc.Merge(context.Background(), 2, 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, locations.rows, uint64(2))
	assert.Empty(t, loads.reassigned)
	assert.Equal(t, 1, tx.rollbacks)
}

func TestLocationService_MergeDeleteFailureRollsBack(t *testing.T) {
	svc, locations, _, tx, _ := newLocationFixture(t)
	locations.deleteErr = &apperrors.ConstraintError{Constraint: "loads_location_id_fkey", Err: errors.New("fk")}

	_, err := svc.Merge(context.Background(), 2, 1)
	var constraint *apperrors.ConstraintError
	assert.True(t, errors.As(err, &constraint))
	assert.Equal(t, 1, tx.rollbacks)
	assert.Zero(t, tx.commits)
}

func TestLocationService_LoadsAtStashesFilter(t *testing.T) {
	svc, _, _, _, views := newLocationFixture(t)
	ctx := context.Background()

	stash, err := svc.LoadsAt(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "/api/loads?stash="+stash.Token, stash.RedirectURL)

	res, err := views.Loads.Resolve(ctx, vista.Request{UserID: 4, Values: url.Values{vista.ParamStash: {stash.Token}}})
	require.NoError(t, err)
	assert.Equal(t, vista.SourceStash, res.Source)
	require.Len(t, res.Spec.Filters, 1)
	assert.Equal(t, vista.Filter{Field: "location", Op: vista.OpExact, Value: "2"}, res.Spec.Filters[0])

	// the token is single use
	res, err = views.Loads.Resolve(ctx, vista.Request{UserID: 4, Values: url.Values{vista.ParamStash: {stash.Token}}})
	require.NoError(t, err)
	assert.NotEqual(t, vista.SourceStash, res.Source)
	assert.Contains(t, res.Warnings, "the linked query has expired")
}

func TestLocationService_LoadsAtMissing(t *testing.T) {
	svc, _, _, _, _ := newLocationFixture(t)
	_, err := svc.LoadsAt(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLocationService_UpdateAndClose(t *testing.T) {
	svc, _, _, _, _ := newLocationFixture(t)
	ctx := context.Background()
	name := "Main Warehouse"

	out, err := svc.Update(ctx, 2, dto.UpdateLocationDTO{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Main Warehouse", out.Name)
	assert.False(t, out.IsDefault)

	closed, err := svc.Close(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Main Warehouse", closed.Label)
}
