package workflow_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shootflow-backend/internal/models"
	"shootflow-backend/internal/workflow"
)

// memStore is an in-memory workflow.Store. WithShoot snapshots the whole
// store and restores it when the callback errors, matching the rollback
// semantics of the SQL implementation.
type memStore struct {
	mu          sync.Mutex
	shoots      map[uuid.UUID]*models.Shoot
	files       map[uuid.UUID][]*models.MediaFile
	reschedules map[uuid.UUID]*models.RescheduleRequest
	logs        []*models.ActivityLogEntry
}

func newMemStore() *memStore {
	return &memStore{
		shoots:      make(map[uuid.UUID]*models.Shoot),
		files:       make(map[uuid.UUID][]*models.MediaFile),
		reschedules: make(map[uuid.UUID]*models.RescheduleRequest),
	}
}

func copyShoot(s *models.Shoot) *models.Shoot {
	c := *s
	return &c
}

func copyFile(f *models.MediaFile) *models.MediaFile {
	c := *f
	c.Comments = append([]models.FileComment(nil), f.Comments...)
	return &c
}

func (m *memStore) snapshot() *memStore {
	s := newMemStore()
	for id, sh := range m.shoots {
		s.shoots[id] = copyShoot(sh)
	}
	for id, files := range m.files {
		copied := make([]*models.MediaFile, len(files))
		for i, f := range files {
			copied[i] = copyFile(f)
		}
		s.files[id] = copied
	}
	for id, r := range m.reschedules {
		c := *r
		s.reschedules[id] = &c
	}
	s.logs = append([]*models.ActivityLogEntry(nil), m.logs...)
	return s
}

func (m *memStore) restore(s *memStore) {
	m.shoots = s.shoots
	m.files = s.files
	m.reschedules = s.reschedules
	m.logs = s.logs
}

func (m *memStore) CreateShoot(_ context.Context, shoot *models.Shoot, entry *models.ActivityLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shoots[shoot.ID] = copyShoot(shoot)
	m.logs = append(m.logs, entry)
	return nil
}

func (m *memStore) GetShoot(_ context.Context, id uuid.UUID) (*models.Shoot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sh, ok := m.shoots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyShoot(sh), nil
}

func (m *memStore) GetReschedule(_ context.Context, id uuid.UUID) (*models.RescheduleRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reschedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *r
	return &c, nil
}

func (m *memStore) WithShoot(_ context.Context, shootID uuid.UUID, fn func(workflow.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sh, ok := m.shoots[shootID]
	if !ok {
		return sql.ErrNoRows
	}
	snap := m.snapshot()
	tx := &memTx{store: m, shoot: copyShoot(sh)}
	if err := fn(tx); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// logsFor returns the activity entries recorded for a shoot, oldest first.
func (m *memStore) logsFor(shootID uuid.UUID) []*models.ActivityLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ActivityLogEntry
	for _, e := range m.logs {
		if e.ShootID == shootID {
			out = append(out, e)
		}
	}
	return out
}

type memTx struct {
	store *memStore
	shoot *models.Shoot
}

func (t *memTx) Shoot() *models.Shoot { return t.shoot }

func (t *memTx) SaveShoot() error {
	t.shoot.UpdatedAt = time.Now()
	t.store.shoots[t.shoot.ID] = copyShoot(t.shoot)
	return nil
}

func (t *memTx) Files() ([]*models.MediaFile, error) {
	files := t.store.files[t.shoot.ID]
	out := make([]*models.MediaFile, len(files))
	for i, f := range files {
		out[i] = copyFile(f)
	}
	return out, nil
}

func (t *memTx) File(id uuid.UUID) (*models.MediaFile, error) {
	for _, f := range t.store.files[t.shoot.ID] {
		if f.ID == id {
			return copyFile(f), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *memTx) InsertFile(f *models.MediaFile) error {
	t.store.files[t.shoot.ID] = append(t.store.files[t.shoot.ID], copyFile(f))
	return nil
}

func (t *memTx) SaveFile(f *models.MediaFile) error {
	for i, existing := range t.store.files[t.shoot.ID] {
		if existing.ID == f.ID {
			t.store.files[t.shoot.ID][i] = copyFile(f)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (t *memTx) DeleteFile(id uuid.UUID) error {
	files := t.store.files[t.shoot.ID]
	for i, f := range files {
		if f.ID == id {
			t.store.files[t.shoot.ID] = append(files[:i:i], files[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (t *memTx) ClearCover() error {
	for _, f := range t.store.files[t.shoot.ID] {
		f.IsCover = false
	}
	return nil
}

func (t *memTx) InsertReschedule(r *models.RescheduleRequest) error {
	c := *r
	t.store.reschedules[r.ID] = &c
	return nil
}

func (t *memTx) Reschedule(id uuid.UUID) (*models.RescheduleRequest, error) {
	r, ok := t.store.reschedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c := *r
	return &c, nil
}

func (t *memTx) SaveReschedule(r *models.RescheduleRequest) error {
	c := *r
	t.store.reschedules[r.ID] = &c
	return nil
}

func (t *memTx) AppendLog(e *models.ActivityLogEntry) error {
	t.store.logs = append(t.store.logs, e)
	return nil
}

// fakeStorage keeps objects in a map keyed by handle. Failures are injected
// per operation to exercise the rollback paths.
type fakeStorage struct {
	mu       sync.Mutex
	objects  map[workflow.Handle][]byte
	folders  []uuid.UUID
	failPut  map[string]error // filename -> error
	failMove error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects: make(map[workflow.Handle][]byte),
		failPut: make(map[string]error),
	}
}

func tier(stage models.Stage) string {
	switch stage {
	case models.StageCompleted:
		return "completed"
	case models.StageVerified:
		return "final"
	default:
		return "todo"
	}
}

func (s *fakeStorage) Store(_ context.Context, shootID uuid.UUID, stage models.Stage, filename string, data []byte, _ string) (workflow.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failPut[filename]; ok {
		return "", err
	}
	h := workflow.Handle(fmt.Sprintf("shoots/%s/%s/%s", shootID, tier(stage), filename))
	s.objects[h] = data
	return h, nil
}

func (s *fakeStorage) Relocate(_ context.Context, h workflow.Handle, target models.Stage) (workflow.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMove != nil {
		return "", s.failMove
	}
	data, ok := s.objects[h]
	if !ok {
		return "", errors.New("object not found")
	}
	parts := strings.SplitN(string(h), "/", 4)
	if len(parts) != 4 {
		return "", fmt.Errorf("unrecognized handle %q", h)
	}
	dest := workflow.Handle(fmt.Sprintf("shoots/%s/%s/%s", parts[1], tier(target), parts[3]))
	delete(s.objects, h)
	s.objects[dest] = data
	return dest, nil
}

func (s *fakeStorage) ResolveURL(h workflow.Handle) string {
	return "https://storage.test/" + string(h)
}

func (s *fakeStorage) Delete(_ context.Context, h workflow.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, h)
	return nil
}

func (s *fakeStorage) EnsureShootFolders(_ context.Context, shootID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = append(s.folders, shootID)
	return nil
}

// fakeNotifier records events and optionally fails every call; the workflow
// must swallow the failures either way.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (n *fakeNotifier) Notify(_ context.Context, event string, _ *models.Shoot, _ []uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *fakeNotifier) eventNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

type fakeAvailability struct {
	available bool
	err       error
}

func (a *fakeAvailability) IsAvailable(context.Context, uuid.UUID, time.Time, uuid.UUID) (bool, error) {
	return a.available, a.err
}

type fakeQueue struct {
	mu    sync.Mutex
	kinds []string
}

func (q *fakeQueue) Enqueue(_ context.Context, _ uuid.UUID, kind string, _ any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.kinds = append(q.kinds, kind)
	return nil
}

func (q *fakeQueue) enqueued() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.kinds...)
}

type testEnv struct {
	svc       *workflow.Service
	store     *memStore
	storage   *fakeStorage
	notifier  *fakeNotifier
	available *fakeAvailability
	queue     *fakeQueue
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:     newMemStore(),
		storage:   newFakeStorage(),
		notifier:  &fakeNotifier{},
		available: &fakeAvailability{available: true},
		queue:     &fakeQueue{},
	}
	env.svc = workflow.NewService(env.store, env.storage, env.notifier, env.available, env.queue,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return env
}

// seedShoot inserts a shoot directly into the store.
func (e *testEnv) seedShoot(status models.Status, mutate func(*models.Shoot)) *models.Shoot {
	now := time.Now()
	sh := &models.Shoot{
		ID:        uuid.New(),
		ClientID:  uuid.New(),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(sh)
	}
	e.store.shoots[sh.ID] = sh
	return sh
}

// seedFile inserts a media file directly into the store.
func (e *testEnv) seedFile(sh *models.Shoot, kind models.MediaKind, stage models.Stage, filename string) *models.MediaFile {
	now := time.Now()
	f := &models.MediaFile{
		ID:          uuid.New(),
		ShootID:     sh.ID,
		Filename:    filename,
		Kind:        kind,
		Stage:       stage,
		StoragePath: fmt.Sprintf("shoots/%s/%s/%s", sh.ID, tier(stage), filename),
		MimeType:    "image/jpeg",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	e.storage.objects[workflow.Handle(f.StoragePath)] = []byte("data")
	e.store.files[sh.ID] = append(e.store.files[sh.ID], f)
	return f
}

func admin() workflow.Actor {
	return workflow.Actor{ID: uuid.New(), Role: models.RoleAdmin}
}

func clientOf(sh *models.Shoot) workflow.Actor {
	return workflow.Actor{ID: sh.ClientID, Role: models.RoleClient}
}

func photographerOf(sh *models.Shoot) workflow.Actor {
	if !sh.PhotographerID.Valid {
		panic("shoot has no photographer")
	}
	return workflow.Actor{ID: sh.PhotographerID.UUID, Role: models.RolePhotographer}
}
