package activity

import (
	"encoding/json"
	"fmt"

	"github.com/baiirun/simplrtask/internal/model"
)

// requiredFields must be present on every imported element, in the order
// they are checked.
var requiredFields = []string{"id", "timestamp", "type", "taskContent"}

// stringFields are the Record fields; unknown extra fields are ignored.
var stringFields = []string{"id", "taskId", "timestamp", "type", "taskContent", "from", "to"}

// ValidationError describes the first element of an import that could not
// be accepted. Index is -1 when the document itself is unusable.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("invalid activity log: %s", e.Reason)
	case e.Field == "":
		return fmt.Sprintf("invalid activity log entry %d: %s", e.Index, e.Reason)
	default:
		return fmt.Sprintf("invalid activity log entry %d: field %q %s", e.Index, e.Field, e.Reason)
	}
}

// Decode parses an exported activity log. Either every element is valid
// and the whole list is returned, or a *ValidationError for the first bad
// element is returned and nothing else.
func Decode(data []byte) ([]model.GlobalActivity, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || elems == nil {
		return nil, &ValidationError{Index: -1, Reason: "expected a JSON array"}
	}

	out := make([]model.GlobalActivity, 0, len(elems))
	for i, raw := range elems {
		a, err := decodeElement(i, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeElement(i int, raw json.RawMessage) (model.GlobalActivity, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return model.GlobalActivity{}, &ValidationError{Index: i, Reason: "expected an object"}
	}
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return model.GlobalActivity{}, &ValidationError{Index: i, Field: name, Reason: "is missing"}
		}
	}
	for _, name := range stringFields {
		value, ok := fields[name]
		if !ok {
			continue
		}
		var s *string
		if err := json.Unmarshal(value, &s); err != nil {
			return model.GlobalActivity{}, &ValidationError{Index: i, Field: name, Reason: "must be a string"}
		}
	}

	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.GlobalActivity{}, &ValidationError{Index: i, Reason: err.Error()}
	}
	if r.ID == "" {
		return model.GlobalActivity{}, &ValidationError{Index: i, Field: "id", Reason: "is empty"}
	}
	ts, err := model.ParseTime(r.Timestamp)
	if err != nil {
		return model.GlobalActivity{}, &ValidationError{Index: i, Field: "timestamp", Reason: "is not a valid date"}
	}
	typ := model.ActivityType(r.Type)
	if !typ.IsValid() {
		return model.GlobalActivity{}, &ValidationError{Index: i, Field: "type", Reason: fmt.Sprintf("has unknown value %q", r.Type)}
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
