package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"load-tracker/internal/dto"
	"load-tracker/internal/entities"
	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/vista"
)

type loadFixture struct {
	tx        *fakeTxManager
	loads     *fakeLoadRepo
	history   *fakeHistoryRepo
	locations *fakeLocationRepo
	notifs    *fakeNotificationRepo
	mail      *fakeMailer
	files     *fakeFileStorage
	stash     *fakeStash
	views     *ViewManagers
	service   *LoadService
}

func newLoadFixture(t *testing.T) *loadFixture {
	t.Helper()
	f := &loadFixture{
		tx:        &fakeTxManager{},
		loads:     newFakeLoadRepo(),
		history:   &fakeHistoryRepo{},
		locations: newFakeLocationRepo(entities.Location{ID: 5, Name: "Yard", IsDefault: true}),
		mail:      &fakeMailer{},
		files:     &fakeFileStorage{},
		stash:     &fakeStash{},
	}
	f.notifs = newFakeNotificationRepo(f.loads)
	groups := &fakeGroupRepo{
		loads:      f.loads,
		defaultIDs: []uint64{1},
		groups:     []entities.NotificationGroup{{ID: 1, Name: "Office", EmailAddresses: "a@x.com;b@x.com", IsDefault: true}},
	}
	delivery := &fakeStatusRepo{statuses: []entities.Status{{ID: 11, Name: "Ordered", IsActive: true, IsDefault: true}}}
	completion := &fakeStatusRepo{}

	views, err := NewViewManagers(newFakeVistaStore(), f.stash, vista.DefaultLimits(), zap.NewNop())
	require.NoError(t, err)
	f.views = views

	notifications := NewNotificationService(f.notifs, f.loads, groups, f.mail, "http://h", zap.NewNop())
	f.service = NewLoadService(f.tx, f.loads, f.history, f.locations, delivery, completion, groups,
		notifications, f.files, views.Loads, zap.NewNop())
	return f
}

func TestLoadService_CreateFillsDefaults(t *testing.T) {
	f := newLoadFixture(t)
	ctx := context.Background()

	out, err := f.service.Create(ctx, 3, dto.CreateLoadDTO{JobName: "Smith Kitchen", PONumber: "PO-1"}, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)

	load := out.Load
	require.NotNil(t, load.Location)
	assert.Equal(t, uint64(5), load.Location.ID)
	require.NotNil(t, load.DeliveryStatus)
	assert.Equal(t, uint64(11), load.DeliveryStatus.ID)
	assert.Nil(t, load.CompletionStatus)
	assert.Equal(t, int(entities.DoInstallDeliver), load.DoInstall)
	assert.Equal(t, "Deliver", load.DoInstallLabel)
	assert.Equal(t, []uint64{1}, load.NotificationGroupIDs)

	require.Len(t, f.history.rows, 1)
	assert.Equal(t, uint64(3), *f.history.rows[0].UserID)
	var submitted map[string]interface{}
	require.NoError(t, json.Unmarshal(f.history.rows[0].Data, &submitted))
	assert.Equal(t, "PO-1", submitted["po_number"])

	queued, err := f.notifs.FindByLoadIDForUpdate(ctx, nil, load.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, queued.Action)
	assert.Equal(t, 1, f.tx.commits)
	assert.Empty(t, f.mail.sent)
}

func TestLoadService_CreateRejectsBadDoInstall(t *testing.T) {
	f := newLoadFixture(t)
	bad := 7

	_, err := f.service.Create(context.Background(), 1, dto.CreateLoadDTO{JobName: "J", PONumber: "P", DoInstall: &bad}, nil)
	var invalid *apperrors.InvalidInputError
	assert.True(t, errors.As(err, &invalid))
	assert.Empty(t, f.loads.rows)
}

func TestLoadService_CreateSendNow(t *testing.T) {
	f := newLoadFixture(t)

	out, err := f.service.Create(context.Background(), 1, dto.CreateLoadDTO{
		JobName:  "Smith Kitchen",
		PONumber: "PO-1",
		SendNow:  true,
	}, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "Load Created: PO-1 - Smith Kitchen", f.mail.sent[0].Subject)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, f.mail.sent[0].To)
	assert.Empty(t, f.notifs.rows)
}

func TestLoadService_UpdateMergesNotificationAndReplacesPhoto(t *testing.T) {
	f := newLoadFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, 1, dto.CreateLoadDTO{JobName: "J", PONumber: "P"},
		&PhotoUpload{Reader: strings.NewReader("old"), Filename: "old.jpg"})
	require.NoError(t, err)
	assert.Equal(t, null.StringFrom("loads/old.jpg"), created.Load.Photo)

	id := created.Load.ID
	updated, err := f.service.Update(ctx, 2, id, dto.UpdateLoadDTO{
		JobName:    "J2",
		PONumber:   "P",
		LocationID: null.Uint64From(5),
		DoInstall:  int(entities.DoInstallInstall),
	}, &PhotoUpload{Reader: strings.NewReader("new"), Filename: "new.png"})
	require.NoError(t, err)
	assert.Equal(t, "J2", updated.Load.JobName)
	assert.Equal(t, null.StringFrom("loads/new.png"), updated.Load.Photo)
	assert.Equal(t, []string{"loads/old.jpg"}, f.files.deleted)
	// groups untouched when the update does not send them
	assert.Equal(t, []uint64{1}, updated.Load.NotificationGroupIDs)

	queued, err := f.notifs.FindByLoadIDForUpdate(ctx, nil, id)
	require.NoError(t, err)
	assert.Equal(t, "Created and Updated", queued.Action)

	histories, err := f.history.FindByLoadID(ctx, id)
	require.NoError(t, err)
	require.Len(t, histories, 2)
	assert.Equal(t, uint64(2), *histories[0].UserID)
}

func TestLoadService_UpdateMissingDiscardsNewPhoto(t *testing.T) {
	f := newLoadFixture(t)

	_, err := f.service.Update(context.Background(), 1, 404, dto.UpdateLoadDTO{JobName: "J", PONumber: "P"},
		&PhotoUpload{Reader: strings.NewReader("x"), Filename: "x.gif"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, []string{"loads/x.gif"}, f.files.deleted)
	assert.Equal(t, 1, f.tx.rollbacks)
}

func TestLoadService_CloseAndDelete(t *testing.T) {
	f := newLoadFixture(t)
	ctx := context.Background()
	f.loads.put(entities.Load{ID: 9, JobName: "Lee Bath", PONumber: "PO-9"})

	closed, err := f.service.Close(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "PO-9 - Lee Bath", closed.Label)

	require.NoError(t, f.service.Delete(ctx, 1, 9))
	_, err = f.service.Get(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, f.service.Delete(ctx, 1, 9), apperrors.ErrNotFound)
}

func TestLoadService_ListUsesDefaultView(t *testing.T) {
	f := newLoadFixture(t)
	for i := uint64(1); i <= 3; i++ {
		f.loads.put(entities.Load{ID: i, JobName: "J", PONumber: "P"})
	}

	list, err := f.service.List(context.Background(), 1, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, vista.SourceDefault, list.View.Source)
	assert.Equal(t, 30, list.PageSize)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, uint64(3), list.Total)
	assert.Len(t, list.Items, 3)
	require.Len(t, list.Context.Filters, 1)
	assert.Equal(t, "delivery_status__is_active", list.Context.Filters[0].Field)
	assert.Equal(t, []string{"-updated_when"}, list.Context.OrderBy)
}

func TestLoadService_ListSubmittedQueryBecomesLatest(t *testing.T) {
	f := newLoadFixture(t)
	ctx := context.Background()

	_, err := f.service.List(ctx, 1, url.Values{
		vista.ParamQuerySubmitted: {"1"},
		vista.ParamOrderBy:        {"po_number"},
		vista.ParamPaginateBy:     {"2"},
		vista.ParamVistaName:      {"Mine"},
		ParamPage:                 {"2"},
	})
	require.NoError(t, err)

	list, err := f.service.List(ctx, 1, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, vista.SourceLatest, list.View.Source)
	assert.Equal(t, 2, list.PageSize)
	require.Len(t, list.Saved, 1)
	assert.Equal(t, "Mine", list.Saved[0].Name)
}
