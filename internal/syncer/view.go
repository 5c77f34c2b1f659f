package syncer

import (
	"strings"

	"golang.org/x/text/cases"

	"stickylist/internal/service"
)

// FilterChecklists returns the checklists whose title contains query under
// Unicode case folding. An empty query returns all of them in order.
func FilterChecklists(items []service.Checklist, query string) []service.Checklist {
	out := make([]service.Checklist, 0, len(items))
	if query == "" {
		return append(out, items...)
	}

	fold := cases.Fold()
	needle := fold.String(query)
	for _, item := range items {
		if strings.Contains(fold.String(item.Title), needle) {
			out = append(out, item)
		}
	}
	return out
}

// Partition orders tasks for display: pinned tasks first, then the rest,
// each group keeping its list order.
func Partition(tasks []service.Task) []service.Task {
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Pinned {
			out = append(out, t)
		}
	}
	for _, t := range tasks {
		if !t.Pinned {
			out = append(out, t)
		}
	}
	return out
}
