package store

import "github.com/baiirun/simplrtask/internal/model"

// UpdateSettings replaces the settings wholesale. Callers pass the complete
// settings, typically a modified copy of Settings().
func (s *Store) UpdateSettings(settings model.AppSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Settings = settings.Clone()
	s.save()
}

func (s *Store) Settings() model.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Settings.Clone()
}
