package store

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/baiirun/simplrtask/internal/activity"
	"github.com/baiirun/simplrtask/internal/model"
)

// Activity returns the active project's activity log, newest first.
func (s *Store) Activity() []model.GlobalActivity {
	p, ok := s.ActiveProject()
	if !ok {
		return nil
	}
	return p.Activity
}

// SearchActivity returns the active project's entries matching term.
func (s *Store) SearchActivity(term string) []model.GlobalActivity {
	return activity.Filter(s.Activity(), term)
}

// ExportActivity renders the active project's log in the import format.
func (s *Store) ExportActivity() ([]byte, error) {
	p, ok := s.ActiveProject()
	if !ok {
		return nil, ErrNoActiveProject
	}
	return activity.Encode(p.Activity)
}

// ImportActivity validates an exported log and merges it into the active
// project. Invalid data is rejected whole; the returned error wraps an
// *activity.ValidationError. It returns how many entries were new.
func (s *Store) ImportActivity(data []byte) (int, error) {
	if _, ok := s.ActiveProject(); !ok {
		return 0, ErrNoActiveProject
	}
	entries, err := activity.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("failed to import activity: %w", err)
	}
	return s.MergeActivity(entries)
}

// MergeActivity merges entries into the active project's log, skipping IDs
// already present, and returns how many entries were added. Nothing is
// written when none were.
func (s *Store) MergeActivity(entries []model.GlobalActivity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.data.ActiveProject()
	if p == nil {
		return 0, ErrNoActiveProject
	}

	merged := activity.Merge(p.Activity, entries)
	added := len(merged) - len(p.Activity)
	if added == 0 {
		return 0, nil
	}
	p.Activity = merged
	s.save()

	s.log.Info("activity merged", zap.Int("added", added), zap.String("project", p.ID))
	return added, nil
}
