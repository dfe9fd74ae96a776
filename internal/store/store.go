// Package store owns the in-memory application document for one process and
// applies every task, project, settings and activity mutation to it. Each
// change is persisted through a storage.Adapter; other processes sharing the
// medium pick it up with Reload or Sync.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/baiirun/simplrtask/internal/model"
	"github.com/baiirun/simplrtask/internal/storage"
)

// ErrNoActiveProject is returned by operations that need an active project
// when none is selected.
var ErrNoActiveProject = errors.New("no active project (use 'tasks project use <id>' to select one)")

// Store is the state container. It is safe for concurrent use.
type Store struct {
	adapter *storage.Adapter
	now     func() time.Time
	log     *zap.Logger

	mu   sync.Mutex
	data *model.AppData
}

type Option func(*Store)

// WithClock sets the time source used for createdAt and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.log = logger }
}

// New loads the document through a and returns a store owning it.
func New(a *storage.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: a,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("store")
	s.data = a.Load()
	return s
}

// Reload replaces the in-memory document with whatever the medium holds.
func (s *Store) Reload() {
	data := s.adapter.Load()

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

// Sync reloads the document every time the adapter announces an app data
// write, calling onChange (if non-nil) after each reload. It blocks until
// ctx is done.
func (s *Store) Sync(ctx context.Context, onChange func()) error {
	ch, cancel := s.adapter.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-ch:
			if !ok {
				return nil
			}
			if key != storage.AppDataKey {
				continue
			}
			s.Reload()
			if onChange != nil {
				onChange()
			}
		}
	}
}

// save persists the document. Callers hold s.mu.
func (s *Store) save() {
	s.adapter.Save(s.data)
}

// record prepends an activity entry to p.
func (s *Store) record(p *model.Project, typ model.ActivityType, t model.Task, from, to string, at time.Time) {
	entry := model.GlobalActivity{
		ID:          model.GenerateID(model.PrefixActivity),
		TaskID:      t.ID,
		Timestamp:   at,
		Type:        typ,
		TaskContent: t.Content,
		From:        from,
		To:          to,
	}
	p.Activity = append([]model.GlobalActivity{entry}, p.Activity...)
}

func (s *Store) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Project, 0, len(s.data.Projects))
	for _, p := range s.data.Projects {
		out = append(out, p.Clone())
	}
	return out
}

// ActiveProject returns a copy of the active project.
func (s *Store) ActiveProject() (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.data.ActiveProject()
	if p == nil {
		return model.Project{}, false
	}
	return p.Clone(), true
}

// Tasks returns the active project's tasks, newest first.
func (s *Store) Tasks() []model.Task {
	p, ok := s.ActiveProject()
	if !ok {
		return nil
	}
	return p.Tasks
}

// Task returns a task of the active project.
func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.data.ActiveProject()
	if p == nil {
		return model.Task{}, false
	}
	t := p.Task(id)
	if t == nil {
		return model.Task{}, false
	}
	return t.Clone(), true
}
