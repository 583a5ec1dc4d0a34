package listquery

import (
	"fmt"
	"strings"
)

// Status filter values. StatusAll also serves as the "any project" value.
const (
	StatusAll        = "all"
	StatusTodo       = "to-do"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// ProjectAll matches every project.
const ProjectAll = "all"

// FilterState is the user's current filter selection.
type FilterState struct {
	Status  string `json:"status"`
	Project string `json:"project"`
}

// DefaultFilter matches everything.
func DefaultFilter() FilterState {
	return FilterState{Status: StatusAll, Project: ProjectAll}
}

// ParseFilter builds a FilterState from query parameters. Blank values mean
// "all"; an unknown status is an error.
func ParseFilter(status, project string) (FilterState, error) {
	state := DefaultFilter()
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case "", StatusAll:
	case StatusTodo, StatusInProgress, StatusDone:
		state.Status = status
	default:
		return state, fmt.Errorf("unknown status filter %q", status)
	}
	if project = strings.TrimSpace(project); project != "" {
		state.Project = project
	}
	return state, nil
}

// IsDefault reports whether the filter matches everything.
func (f FilterState) IsDefault() bool {
	return f.status() == StatusAll && f.project() == ProjectAll
}

func (f FilterState) status() string {
	if f.Status == "" {
		return StatusAll
	}
	return f.Status
}

func (f FilterState) project() string {
	if f.Project == "" {
		return ProjectAll
	}
	return f.Project
}

// Filterable records expose the fields FilterState matches on.
type Filterable interface {
	FilterStatus() string
	FilterProject() string
}

// Matches reports whether item passes the filter. Matching is exact.
func (f FilterState) Matches(item Filterable) bool {
	if status := f.status(); status != StatusAll && item.FilterStatus() != status {
		return false
	}
	if project := f.project(); project != ProjectAll && item.FilterProject() != project {
		return false
	}
	return true
}

// Apply returns the items that pass the filter, in their original order.
// It never fetches and does not touch the page's TotalPages, which keeps
// counting the unfiltered set.
func Apply[T Filterable](items []T, filter FilterState) []T {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		if filter.Matches(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// ProjectNames lists the distinct project names in first-seen order, for
// the project filter dropdown.
func ProjectNames[T Filterable](items []T) []string {
	seen := make(map[string]struct{}, len(items))
	names := make([]string, 0)
	for _, item := range items {
		name := item.FilterProject()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
