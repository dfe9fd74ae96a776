package activity

import (
	"sort"

	"github.com/baiirun/simplrtask/internal/model"
)

// Merge adds the entries of incoming whose IDs are not already known to
// existing and returns the combined log ordered newest first. Existing
// entries always win over incoming ones with the same ID, and within
// incoming the first occurrence wins. Neither input is modified.
//
// The sort is stable, so entries with equal timestamps keep their relative
// order and merging an already sorted log with itself returns it unchanged.
func Merge(existing, incoming []model.GlobalActivity) []model.GlobalActivity {
	seen := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]model.GlobalActivity, 0, len(existing)+len(incoming))

	for _, a := range existing {
		seen[a.ID] = true
		merged = append(merged, a)
	}
	for _, a := range incoming {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		merged = append(merged, a)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	return merged
}
