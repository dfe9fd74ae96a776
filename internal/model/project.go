package model

import "time"

type ActivityType string

const (
	ActivityCreated  ActivityType = "created"
	ActivityContent  ActivityType = "content"
	ActivityStatus   ActivityType = "status"
	ActivityDeleted  ActivityType = "deleted"
	ActivityReported ActivityType = "reported"
)

func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityCreated, ActivityContent, ActivityStatus, ActivityDeleted, ActivityReported:
		return true
	}
	return false
}

// GlobalActivity is a project-level ledger entry. TaskContent is a snapshot
// taken when the event happened, so the entry outlives its task.
type GlobalActivity struct {
	ID          string
	TaskID      string
	Timestamp   time.Time
	Type        ActivityType
	TaskContent string
	From        string // empty when not applicable
	To          string
}

type Project struct {
	ID       string
	Name     string
	Tasks    []Task           // newest first
	Activity []GlobalActivity // newest first
}

// Task returns a pointer into p.Tasks, or nil.
func (p *Project) Task(id string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

const DefaultProjectName = "My Project"

// NewProject returns an empty project with a fresh ID.
func NewProject(name string) Project {
	return Project{
		ID:       GenerateID(PrefixProject),
		Name:     name,
		Tasks:    []Task{},
		Activity: []GlobalActivity{},
	}
}

// AppData is the whole persisted document.
type AppData struct {
	Projects        []Project
	ActiveProjectID string // "" when there are no projects
	Settings        AppSettings
}

// NewAppData returns the starter document: one default project, selected,
// and default settings.
func NewAppData() *AppData {
	p := NewProject(DefaultProjectName)
	return &AppData{
		Projects:        []Project{p},
		ActiveProjectID: p.ID,
		Settings:        DefaultSettings(),
	}
}

// Project returns a pointer into d.Projects, or nil.
func (d *AppData) Project(id string) *Project {
	for i := range d.Projects {
		if d.Projects[i].ID == id {
			return &d.Projects[i]
		}
	}
	return nil
}

// ActiveProject returns the project ActiveProjectID points at, or nil.
func (d *AppData) ActiveProject() *Project {
	if d.ActiveProjectID == "" {
		return nil
	}
	return d.Project(d.ActiveProjectID)
}

func (p Project) Clone() Project {
	out := Project{
		ID:       p.ID,
		Name:     p.Name,
		Tasks:    make([]Task, len(p.Tasks)),
		Activity: make([]GlobalActivity, len(p.Activity)),
	}
	for i, t := range p.Tasks {
		out.Tasks[i] = t.Clone()
	}
	copy(out.Activity, p.Activity)
	return out
}

func (t Task) Clone() Task {
	mods := make([]Modification, len(t.Modifications))
	copy(mods, t.Modifications)
	t.Modifications = mods
	return t
}
