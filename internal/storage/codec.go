package storage

import (
	"encoding/json"
	"fmt"

	"github.com/baiirun/simplrtask/internal/activity"
	"github.com/baiirun/simplrtask/internal/model"
)

// document is the JSON shape stored under AppDataKey. Dates are strings
// here and are parsed explicitly when converting to the model.
type document struct {
	Projects        []projectRecord `json:"projects"`
	ActiveProjectID *string         `json:"activeProjectId"`
	Settings        *settingsRecord `json:"settings,omitempty"`
}

type settingsRecord struct {
	CopyFormat   string            `json:"copyFormat"`
	StatusColors map[string]string `json:"statusColors,omitempty"`
}

type projectRecord struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Tasks    []taskRecord      `json:"tasks"`
	Activity []activity.Record `json:"activity"`
}

type taskRecord struct {
	ID            string               `json:"id"`
	Content       string               `json:"content"`
	CreatedAt     string               `json:"createdAt"`
	Modifications []modificationRecord `json:"modifications"`
	Status        string               `json:"status"`
}

type modificationRecord struct {
	ID        string `json:"id"`
	TaskID    string `json:"taskId"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	From      string `json:"from"`
	To        string `json:"to"`
}

func encodeDocument(d *model.AppData) ([]byte, error) {
	doc := document{
		Projects: make([]projectRecord, 0, len(d.Projects)),
		Settings: &settingsRecord{
			CopyFormat:   string(d.Settings.CopyFormat),
			StatusColors: make(map[string]string, len(d.Settings.StatusColors)),
		},
	}
	if d.ActiveProjectID != "" {
		id := d.ActiveProjectID
		doc.ActiveProjectID = &id
	}
	for status, color := range d.Settings.StatusColors {
		doc.Settings.StatusColors[string(status)] = color
	}

	for _, p := range d.Projects {
		pr := projectRecord{
			ID:       p.ID,
			Name:     p.Name,
			Tasks:    make([]taskRecord, 0, len(p.Tasks)),
			Activity: make([]activity.Record, 0, len(p.Activity)),
		}
		for _, t := range p.Tasks {
			tr := taskRecord{
				ID:            t.ID,
				Content:       t.Content,
				CreatedAt:     model.FormatTime(t.CreatedAt),
				Modifications: make([]modificationRecord, 0, len(t.Modifications)),
				Status:        string(t.Status),
			}
			for _, m := range t.Modifications {
				tr.Modifications = append(tr.Modifications, modificationRecord{
					ID:        m.ID,
					TaskID:    m.TaskID,
					Timestamp: model.FormatTime(m.Timestamp),
					Type:      string(m.Type),
					From:      m.From,
					To:        m.To,
				})
			}
			pr.Tasks = append(pr.Tasks, tr)
		}
		for _, a := range p.Activity {
			pr.Activity = append(pr.Activity, activity.FromModel(a))
		}
		doc.Projects = append(doc.Projects, pr)
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal app data: %w", err)
	}
	return b, nil
}

// decodeDocument parses a stored document. Any unparsable date, unknown
// enum value or malformed JSON is an error. Missing settings are back-filled
// and a dangling active project is repointed at the first project; an empty
// project list is returned as-is for the caller to handle.
func decodeDocument(b []byte) (*model.AppData, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal app data: %w", err)
	}

	d := &model.AppData{
		Projects: make([]model.Project, 0, len(doc.Projects)),
		Settings: decodeSettings(doc.Settings),
	}
	for _, pr := range doc.Projects {
		p, err := decodeProject(pr)
		if err != nil {
			return nil, err
		}
		d.Projects = append(d.Projects, p)
	}

	if doc.ActiveProjectID != nil {
		d.ActiveProjectID = *doc.ActiveProjectID
	}
	if len(d.Projects) > 0 && d.ActiveProject() == nil {
		d.ActiveProjectID = d.Projects[0].ID
	}
	return d, nil
}

func decodeSettings(s *settingsRecord) model.AppSettings {
	out := model.DefaultSettings()
	if s == nil {
		return out
	}
	if f := model.CopyFormat(s.CopyFormat); f.IsValid() {
		out.CopyFormat = f
	}
	for _, status := range model.Statuses() {
		if color, ok := s.StatusColors[string(status)]; ok && color != "" {
			out.StatusColors[status] = color
		}
	}
	return out
}

func decodeProject(pr projectRecord) (model.Project, error) {
	p := model.Project{
		ID:       pr.ID,
		Name:     pr.Name,
		Tasks:    make([]model.Task, 0, len(pr.Tasks)),
		Activity: make([]model.GlobalActivity, 0, len(pr.Activity)),
	}
	for _, tr := range pr.Tasks {
		t, err := decodeTask(tr)
		if err != nil {
			return model.Project{}, fmt.Errorf("project %s: %w", pr.ID, err)
		}
		p.Tasks = append(p.Tasks, t)
	}
	for _, ar := range pr.Activity {
		a, err := ar.ToModel()
		if err != nil {
			return model.Project{}, fmt.Errorf("project %s: %w", pr.ID, err)
		}
		p.Activity = append(p.Activity, a)
	}
	return p, nil
}

func decodeTask(tr taskRecord) (model.Task, error) {
	createdAt, err := model.ParseTime(tr.CreatedAt)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s createdAt: %w", tr.ID, err)
	}
	status := model.Status(tr.Status)
	if !status.IsValid() {
		return model.Task{}, fmt.Errorf("task %s: invalid status: %q", tr.ID, tr.Status)
	}

	t := model.Task{
		ID:            tr.ID,
		Content:       tr.Content,
		CreatedAt:     createdAt,
		Status:        status,
		Modifications: make([]model.Modification, 0, len(tr.Modifications)),
	}
	for _, mr := range tr.Modifications {
		ts, err := model.ParseTime(mr.Timestamp)
		if err != nil {
			return model.Task{}, fmt.Errorf("modification %s timestamp: %w", mr.ID, err)
		}
		typ := model.ModificationType(mr.Type)
		if !typ.IsValid() {
			return model.Task{}, fmt.Errorf("modification %s: invalid type: %q", mr.ID, mr.Type)
		}
		t.Modifications = append(t.Modifications, model.Modification{
			ID:        mr.ID,
			TaskID:    mr.TaskID,
			Timestamp: ts,
			Type:      typ,
			From:      mr.From,
			To:        mr.To,
		})
	}
	return t, nil
}
