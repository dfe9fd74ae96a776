package activity

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/baiirun/simplrtask/internal/model"
)

// Encode renders entries as an indented JSON array ordered oldest first,
// the format Decode accepts.
func Encode(entries []model.GlobalActivity) ([]byte, error) {
	sorted := make([]model.GlobalActivity, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	records := make([]Record, 0, len(sorted))
	for _, a := range sorted {
		records = append(records, FromModel(a))
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity: %w", err)
	}
	return b, nil
}

// ExportFilename returns the suggested file name for an export made at now.
func ExportFilename(now time.Time) string {
	return "activity_log_" + now.Format("2006-01-02") + ".json"
}

// DisplayTimeLayout is how activity timestamps are shown and searched
// (dd/MM/yy HH:mm).
const DisplayTimeLayout = "02/01/06 15:04"

// Filter returns the entries matching term, case-insensitively, against the
// displayed date, type, task content, from, to and task ID. An empty term
// matches everything. Order is preserved.
func Filter(entries []model.GlobalActivity, term string) []model.GlobalActivity {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		out := make([]model.GlobalActivity, len(entries))
		copy(out, entries)
		return out
	}

	var out []model.GlobalActivity
	for _, a := range entries {
		fields := []string{
			a.Timestamp.Local().Format(DisplayTimeLayout),
			string(a.Type),
			a.TaskContent,
			a.From,
			a.To,
			a.TaskID,
		}
		for _, f := range fields {
			if f != "" && strings.Contains(strings.ToLower(f), term) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
