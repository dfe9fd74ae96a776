// Package activity handles a project's activity log outside the store:
// the JSON shape used for persistence and export, import validation,
// merging imported entries into an existing log, and searching it.
package activity

import (
	"fmt"

	"github.com/baiirun/simplrtask/internal/model"
)

// Record is the JSON shape of a GlobalActivity, shared by the persisted
// document and by exported activity files.
type Record struct {
	ID          string `json:"id"`
	TaskID      string `json:"taskId"`
	Timestamp   string `json:"timestamp"`
	Type        string `json:"type"`
	TaskContent string `json:"taskContent"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
}

func FromModel(a model.GlobalActivity) Record {
	return Record{
		ID:          a.ID,
		TaskID:      a.TaskID,
		Timestamp:   model.FormatTime(a.Timestamp),
		Type:        string(a.Type),
		TaskContent: a.TaskContent,
		From:        a.From,
		To:          a.To,
	}
}

// ToModel parses the timestamp and checks the type.
func (r Record) ToModel() (model.GlobalActivity, error) {
	ts, err := model.ParseTime(r.Timestamp)
	if err != nil {
		return model.GlobalActivity{}, fmt.Errorf("activity %s: %w", r.ID, err)
	}
	typ := model.ActivityType(r.Type)
	if !typ.IsValid() {
		return model.GlobalActivity{}, fmt.Errorf("activity %s: invalid type: %q", r.ID, r.Type)
	}
	return model.GlobalActivity{
		ID:          r.ID,
		TaskID:      r.TaskID,
		Timestamp:   ts,
		Type:        typ,
		TaskContent: r.TaskContent,
		From:        r.From,
		To:          r.To,
	}, nil
}
