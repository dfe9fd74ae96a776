package store

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/baiirun/simplrtask/internal/model"
)

// CreateProject appends an empty project named name. The active project is
// left alone. It returns false when name is blank.
func (s *Store) CreateProject(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.NewProject(name)
	s.data.Projects = append(s.data.Projects, p)
	s.save()

	s.log.Debug("project created", zap.String("project", p.ID))
	return p.ID, true
}

// AddProject appends a project named "Project N", N being the new project
// count, and makes it active.
func (s *Store) AddProject() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := model.NewProject(fmt.Sprintf("Project %d", len(s.data.Projects)+1))
	s.data.Projects = append(s.data.Projects, p)
	s.data.ActiveProjectID = p.ID
	s.save()
	return p.ID
}

// DeleteProject removes a project and its tasks and activity. Deleting the
// active project selects the first remaining one, or none.
func (s *Store) DeleteProject(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.data.Projects {
		if p.ID != id {
			continue
		}
		s.data.Projects = append(s.data.Projects[:i:i], s.data.Projects[i+1:]...)
		if s.data.ActiveProjectID == id {
			s.data.ActiveProjectID = ""
			if len(s.data.Projects) > 0 {
				s.data.ActiveProjectID = s.data.Projects[0].ID
			}
		}
		s.save()

		s.log.Debug("project deleted", zap.String("project", id), zap.String("active", s.data.ActiveProjectID))
		return true
	}
	return false
}

// SetActiveProject points the active project at id without checking that
// it exists. A dangling id is repaired on the next load.
func (s *Store) SetActiveProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.ActiveProjectID == id {
		return
	}
	s.data.ActiveProjectID = id
	s.save()
}

// RenameProject sets a project's name. Blank or unchanged names, and
// unknown projects, change nothing and return false.
func (s *Store) RenameProject(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.data.Project(id)
	if p == nil || p.Name == name {
		return false
	}
	p.Name = name
	s.save()
	return true
}
