package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"load-tracker/internal/entities"
	apperrors "load-tracker/pkg/errors"
	"load-tracker/pkg/mailer"
	"load-tracker/pkg/vista"
)

type fakeTxManager struct {
	commits   int
	rollbacks int
}

func (m *fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	if err := fn(nil); err != nil {
		m.rollbacks++
		return err
	}
	m.commits++
	return nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	rows      map[uint64]*entities.Notification
	nextID    uint64
	loads     *fakeLoadRepo
	deleteErr map[uint64]error
	// raceLoadID makes the next Create for that load lose an insert race.
	raceLoadID uint64
}

func newFakeNotificationRepo(loads *fakeLoadRepo) *fakeNotificationRepo {
	return &fakeNotificationRepo{rows: make(map[uint64]*entities.Notification), loads: loads, deleteErr: map[uint64]error{}}
}

func (r *fakeNotificationRepo) add(loadID uint64, action string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.rows[r.nextID] = &entities.Notification{ID: r.nextID, LoadID: loadID, Action: action}
	return r.nextID
}

func (r *fakeNotificationRepo) FindByLoadIDForUpdate(_ context.Context, _ pgx.Tx, loadID uint64) (*entities.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.LoadID == loadID {
			cp := *n
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeNotificationRepo) Create(_ context.Context, _ pgx.Tx, loadID uint64, action string) (uint64, bool, error) {
	if r.raceLoadID == loadID {
		r.raceLoadID = 0
		r.add(loadID, ActionCreated)
		return 0, false, nil
	}
	for _, n := range r.rows {
		if n.LoadID == loadID {
			return 0, false, nil
		}
	}
	return r.add(loadID, action), true, nil
}

func (r *fakeNotificationRepo) UpdateAction(_ context.Context, _ pgx.Tx, id uint64, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	n.Action = action
	return nil
}

func (r *fakeNotificationRepo) FindAll(_ context.Context) ([]entities.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.Notification, 0, len(r.rows))
	for _, n := range r.rows {
		out = append(out, r.withLoad(*n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeNotificationRepo) FindByIDs(_ context.Context, ids []uint64) ([]entities.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.Notification, 0, len(ids))
	for _, id := range ids {
		if n, ok := r.rows[id]; ok {
			out = append(out, r.withLoad(*n))
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) withLoad(n entities.Notification) entities.Notification {
	if r.loads != nil {
		if l, ok := r.loads.rows[n.LoadID]; ok {
			n.JobName = l.JobName
			n.PONumber = l.PONumber
		}
	}
	return n
}

func (r *fakeNotificationRepo) DeleteByIDs(_ context.Context, ids []uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if err := r.deleteErr[id]; err != nil {
			return n, err
		}
		if _, ok := r.rows[id]; ok {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) DeleteByLoadID(_ context.Context, loadID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, row := range r.rows {
		if row.LoadID == loadID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.rows))
	r.rows = make(map[uint64]*entities.Notification)
	return n, nil
}

func (r *fakeNotificationRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

type fakeLoadRepo struct {
	rows       map[uint64]*entities.Load
	groups     map[uint64][]uint64
	nextID     uint64
	reassigned [][2]uint64
}

func newFakeLoadRepo() *fakeLoadRepo {
	return &fakeLoadRepo{rows: make(map[uint64]*entities.Load), groups: make(map[uint64][]uint64)}
}

func (r *fakeLoadRepo) put(l entities.Load) {
	if l.ID > r.nextID {
		r.nextID = l.ID
	}
	r.rows[l.ID] = &l
}

func (r *fakeLoadRepo) List(_ context.Context, _ *vista.Fields, _ vista.Spec, limit, offset uint64) ([]entities.Load, uint64, error) {
	ids := make([]uint64, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]entities.Load, 0)
	for i, id := range ids {
		if uint64(i) < offset || (limit > 0 && uint64(len(out)) >= limit) {
			continue
		}
		out = append(out, *r.rows[id])
	}
	return out, uint64(len(ids)), nil
}

func (r *fakeLoadRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64, includeDeleted bool) (*entities.Load, error) {
	l, ok := r.rows[id]
	if !ok || (l.IsDeleted() && !includeDeleted) {
		return nil, apperrors.ErrNotFound
	}
	cp := *l
	cp.NotificationGroupIDs = r.groups[id]
	return &cp, nil
}

func (r *fakeLoadRepo) FindByIDs(_ context.Context, ids []uint64) ([]entities.Load, error) {
	out := make([]entities.Load, 0, len(ids))
	for _, id := range ids {
		if l, ok := r.rows[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLoadRepo) Create(_ context.Context, _ pgx.Tx, load entities.Load) (uint64, error) {
	r.nextID++
	load.ID = r.nextID
	r.rows[load.ID] = &load
	return load.ID, nil
}

func (r *fakeLoadRepo) Update(_ context.Context, _ pgx.Tx, load entities.Load) error {
	if _, ok := r.rows[load.ID]; !ok {
		return apperrors.ErrNotFound
	}
	if load.Photo == nil {
		load.Photo = r.rows[load.ID].Photo
	}
	r.rows[load.ID] = &load
	return nil
}

func (r *fakeLoadRepo) SoftDelete(_ context.Context, id uint64) error {
	l, ok := r.rows[id]
	if !ok || l.IsDeleted() {
		return apperrors.ErrNotFound
	}
	now := l.UpdatedWhen
	l.DeletedWhen = &now
	return nil
}

func (r *fakeLoadRepo) SetNotificationGroups(_ context.Context, _ pgx.Tx, loadID uint64, groupIDs []uint64) error {
	r.groups[loadID] = append([]uint64(nil), groupIDs...)
	return nil
}

func (r *fakeLoadRepo) ReassignLocation(_ context.Context, _ pgx.Tx, fromID, toID uint64) (int64, error) {
	var n int64
	for _, l := range r.rows {
		if l.LocationID != nil && *l.LocationID == fromID {
			to := toID
			l.LocationID = &to
			n++
		}
	}
	r.reassigned = append(r.reassigned, [2]uint64{fromID, toID})
	return n, nil
}

type fakeGroupRepo struct {
	groups     []entities.NotificationGroup
	loads      *fakeLoadRepo
	defaultIDs []uint64
}

func (r *fakeGroupRepo) List(_ context.Context) ([]entities.NotificationGroup, error) {
	return r.groups, nil
}

func (r *fakeGroupRepo) FindDefaultIDs(_ context.Context, _ pgx.Tx) ([]uint64, error) {
	return r.defaultIDs, nil
}

func (r *fakeGroupRepo) FindByLoadIDs(_ context.Context, loadIDs []uint64) (map[uint64][]entities.NotificationGroup, error) {
	out := make(map[uint64][]entities.NotificationGroup)
	for _, loadID := range loadIDs {
		for _, gid := range r.loads.groups[loadID] {
			for _, g := range r.groups {
				if g.ID == gid {
					out[loadID] = append(out[loadID], g)
				}
			}
		}
	}
	return out, nil
}

type fakeHistoryRepo struct {
	rows []entities.LoadHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, _ pgx.Tx, h entities.LoadHistory) (uint64, error) {
	h.ID = uint64(len(r.rows) + 1)
	r.rows = append(r.rows, h)
	return h.ID, nil
}

func (r *fakeHistoryRepo) FindByLoadID(_ context.Context, loadID uint64) ([]entities.LoadHistory, error) {
	out := make([]entities.LoadHistory, 0)
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].LoadID == loadID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

type fakeLocationRepo struct {
	rows      map[uint64]*entities.Location
	deleteErr error
}

func newFakeLocationRepo(locs ...entities.Location) *fakeLocationRepo {
	r := &fakeLocationRepo{rows: make(map[uint64]*entities.Location)}
	for i := range locs {
		l := locs[i]
		r.rows[l.ID] = &l
	}
	return r
}

func (r *fakeLocationRepo) List(_ context.Context, _ *vista.Fields, _ vista.Spec, _, _ uint64) ([]entities.Location, uint64, error) {
	out := make([]entities.Location, 0, len(r.rows))
	for _, l := range r.rows {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, uint64(len(out)), nil
}

func (r *fakeLocationRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.Location, error) {
	l, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLocationRepo) FindDefault(_ context.Context) (*entities.Location, error) {
	for _, l := range r.rows {
		if l.IsDefault {
			cp := *l
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeLocationRepo) Create(_ context.Context, loc entities.Location) (*entities.Location, error) {
	loc.ID = uint64(len(r.rows) + 100)
	r.rows[loc.ID] = &loc
	return &loc, nil
}

func (r *fakeLocationRepo) Update(_ context.Context, loc entities.Location) (*entities.Location, error) {
	if _, ok := r.rows[loc.ID]; !ok {
		return nil, apperrors.ErrNotFound
	}
	r.rows[loc.ID] = &loc
	return &loc, nil
}

func (r *fakeLocationRepo) Delete(_ context.Context, _ pgx.Tx, id uint64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

type fakeStatusRepo struct {
	statuses []entities.Status
}

func (r *fakeStatusRepo) List(_ context.Context) ([]entities.Status, error) {
	return r.statuses, nil
}

func (r *fakeStatusRepo) FindDefault(_ context.Context) (*entities.Status, error) {
	for _, s := range r.statuses {
		if s.IsDefault {
			cp := s
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeFileStorage struct {
	saved   []string
	deleted []string
}

func (s *fakeFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	path := prefix + "/" + originalFileName
	s.saved = append(s.saved, path)
	return path, nil
}

func (s *fakeFileStorage) Delete(filePath string) error {
	s.deleted = append(s.deleted, filePath)
	return nil
}

type fakeVistaStore struct {
	rows map[string]vista.Saved
}

func newFakeVistaStore() *fakeVistaStore {
	return &fakeVistaStore{rows: make(map[string]vista.Saved)}
}

func vistaKey(userID uint64, model, name string) string {
	return fmt.Sprintf("%d|%s|%s", userID, model, name)
}

func (s *fakeVistaStore) Find(_ context.Context, userID uint64, model, name string) (*vista.Saved, error) {
	row, ok := s.rows[vistaKey(userID, model, name)]
	if !ok {
		return nil, apperrors.ErrVistaNotFound
	}
	return &row, nil
}

func (s *fakeVistaStore) FindDefault(_ context.Context, userID uint64, model string) (*vista.Saved, error) {
	for _, row := range s.rows {
		if row.UserID == userID && row.Model == model && row.IsDefault {
			r := row
			return &r, nil
		}
	}
	return nil, apperrors.ErrVistaNotFound
}

func (s *fakeVistaStore) Save(_ context.Context, v vista.Saved) error {
	if v.IsDefault {
		for k, row := range s.rows {
			if row.UserID == v.UserID && row.Model == v.Model {
				row.IsDefault = false
				s.rows[k] = row
			}
		}
	}
	s.rows[vistaKey(v.UserID, v.Model, v.Name)] = v
	return nil
}

func (s *fakeVistaStore) Delete(_ context.Context, userID uint64, model, name string) error {
	delete(s.rows, vistaKey(userID, model, name))
	return nil
}

func (s *fakeVistaStore) List(_ context.Context, userID uint64, model string) ([]vista.Saved, error) {
	out := make([]vista.Saved, 0)
	for _, row := range s.rows {
		if row.UserID == userID && row.Model == model && row.Name != vista.LatestName {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeStash struct {
	items map[string]url.Values
	n     int
}

func (s *fakeStash) Put(_ context.Context, values url.Values) (string, error) {
	if s.items == nil {
		s.items = make(map[string]url.Values)
	}
	s.n++
	token := fmt.Sprintf("tok-%d", s.n)
	s.items[token] = values
	return token, nil
}

func (s *fakeStash) Take(_ context.Context, token string) (url.Values, error) {
	v, ok := s.items[token]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	delete(s.items, token)
	return v, nil
}
