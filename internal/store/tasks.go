package store

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/baiirun/simplrtask/internal/model"
)

// CreateTask adds a pending task at the top of the active project. It
// returns false when content is blank or there is no active project.
func (s *Store) CreateTask(content string) (string, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.data.ActiveProject()
	if p == nil {
		return "", false
	}

	now := s.now()
	t := model.Task{
		ID:            model.GenerateID(model.PrefixTask),
		Content:       content,
		CreatedAt:     now,
		Status:        model.StatusPending,
		Modifications: []model.Modification{},
	}
	p.Tasks = append([]model.Task{t}, p.Tasks...)
	s.record(p, model.ActivityCreated, t, "", "", now)
	s.save()

	s.log.Debug("task created", zap.String("task", t.ID), zap.String("project", p.ID))
	return t.ID, true
}

// UpdateTask replaces a task's content. Blank or unchanged content, and
// unknown tasks, change nothing and return false.
func (s *Store) UpdateTask(taskID, content string) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, t := s.activeTask(taskID)
	if t == nil || t.Content == content {
		return false
	}

	now := s.now()
	old := t.Content
	s.modify(t, model.ModificationContent, old, content, now)
	t.Content = content
	s.record(p, model.ActivityContent, *t, old, content, now)
	s.save()
	return true
}

// UpdateTaskStatus moves a task to status. Invalid or unchanged statuses,
// and unknown tasks, change nothing and return false.
func (s *Store) UpdateTaskStatus(taskID string, status model.Status) bool {
	if !status.IsValid() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, t := s.activeTask(taskID)
	if t == nil || t.Status == status {
		return false
	}

	now := s.now()
	old := t.Status
	s.modify(t, model.ModificationStatus, string(old), string(status), now)
	t.Status = status
	s.record(p, model.ActivityStatus, *t, string(old), string(status), now)
	s.save()
	return true
}

// DeleteTask removes a task from the active project. Its content survives
// in the deleted activity entry.
func (s *Store) DeleteTask(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.data.ActiveProject()
	if p == nil {
		return false
	}
	for i, t := range p.Tasks {
		if t.ID != taskID {
			continue
		}
		p.Tasks = append(p.Tasks[:i:i], p.Tasks[i+1:]...)
		s.record(p, model.ActivityDeleted, t, "", "", s.now())
		s.save()
		return true
	}
	return false
}

// ClearCompletedTasks removes every done task from the active project,
// reporting each one in the activity log, and returns how many were removed.
func (s *Store) ClearCompletedTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.data.ActiveProject()
	if p == nil {
		return 0
	}

	now := s.now()
	kept := make([]model.Task, 0, len(p.Tasks))
	var removed []model.Task
	for _, t := range p.Tasks {
		if t.Status == model.StatusDone {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}
	if len(removed) == 0 {
		return 0
	}

	p.Tasks = kept
	for _, t := range removed {
		s.record(p, model.ActivityReported, t, "", "", now)
	}
	s.save()

	s.log.Debug("cleared completed tasks", zap.Int("count", len(removed)), zap.String("project", p.ID))
	return len(removed)
}

func (s *Store) activeTask(taskID string) (*model.Project, *model.Task) {
	p := s.data.ActiveProject()
	if p == nil {
		return nil, nil
	}
	return p, p.Task(taskID)
}

func (s *Store) modify(t *model.Task, typ model.ModificationType, from, to string, at time.Time) {
	m := model.Modification{
		ID:        model.GenerateID(model.PrefixModification),
		TaskID:    t.ID,
		Timestamp: at,
		Type:      typ,
		From:      from,
		To:        to,
	}
	t.Modifications = append([]model.Modification{m}, t.Modifications...)
}
