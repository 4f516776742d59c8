package model

import "strings"

// Filter selects tasks by completion state
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// Filters lists the filters in display order
func Filters() []Filter {
	return []Filter{FilterAll, FilterPending, FilterCompleted}
}

// ParseFilter parses a filter name ("done" is accepted for completed)
func ParseFilter(s string) (Filter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return FilterAll, true
	case "pending", "active", "todo":
		return FilterPending, true
	case "completed", "done":
		return FilterCompleted, true
	}
	return "", false
}

// Valid reports whether f is a known filter
func (f Filter) Valid() bool {
	return f == FilterAll || f == FilterPending || f == FilterCompleted
}

// Match reports whether a task passes the completion predicate
func (f Filter) Match(t *Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Next cycles all -> pending -> completed -> all
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterPending
	case FilterPending:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Label returns the display name
func (f Filter) Label() string {
	switch f {
	case FilterPending:
		return "Pending"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// SortKey orders the derived view
type SortKey string

const (
	SortDate         SortKey = "date"
	SortPriority     SortKey = "priority"
	SortAlphabetical SortKey = "alphabetical"
	// SortManual keeps the stored order, which Reorder changes
	SortManual SortKey = "manual"
)

// SortKeys lists the sort keys in cycle order
func SortKeys() []SortKey {
	return []SortKey{SortDate, SortPriority, SortAlphabetical, SortManual}
}

// ParseSortKey parses a sort key name
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date", "created", "":
		return SortDate, true
	case "priority", "pri":
		return SortPriority, true
	case "alphabetical", "alpha", "az", "text":
		return SortAlphabetical, true
	case "manual", "custom":
		return SortManual, true
	}
	return "", false
}

// Valid reports whether k is a known sort key
func (k SortKey) Valid() bool {
	switch k {
	case SortDate, SortPriority, SortAlphabetical, SortManual:
		return true
	}
	return false
}

// Next cycles through SortKeys
func (k SortKey) Next() SortKey {
	keys := SortKeys()
	for i, key := range keys {
		if key == k {
			return keys[(i+1)%len(keys)]
		}
	}
	return SortDate
}

// ViewState holds the display parameters; none of them touch stored tasks
type ViewState struct {
	Filter   Filter  `json:"filter"`
	Sort     SortKey `json:"sortBy"`
	Search   string  `json:"searchQuery"`
	DarkMode bool    `json:"darkMode"`
}

// DefaultViewState returns all / newest first / no search / light theme
func DefaultViewState() ViewState {
	return ViewState{
		Filter: FilterAll,
		Sort:   SortDate,
	}
}

// Snapshot is the unit of persistence: every task plus the theme flag
type Snapshot struct {
	Tasks    []Task `json:"todos"`
	DarkMode bool   `json:"darkMode"`
}
