package model

import (
	"slices"
	"strings"
	"time"
)

// Priority represents task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// ParsePriority accepts full names and the short forms used by quick add
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return PriorityLow, true
	case "medium", "med", "m":
		return PriorityMedium, true
	case "high", "hi", "h":
		return PriorityHigh, true
	}
	return "", false
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	return slices.Contains(Priorities(), p)
}

// OrDefault returns p, or medium when p is not a known priority
func (p Priority) OrDefault() Priority {
	if p.Valid() {
		return p
	}
	return PriorityMedium
}

// Weight returns a numeric weight for sorting by priority
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Next cycles low -> medium -> high -> low
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Task represents a todo item
type Task struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Priority  Priority   `json:"priority"`
	Category  string     `json:"category,omitempty"`
}

// Clone returns a copy that shares no pointers with t
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}

// IsOverdue returns true if the task is not done and its due day has passed
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueStatus(now) == DueOverdue
}

// DueStatus classifies the due date relative to the calendar day of now
func (t *Task) DueStatus(now time.Time) DueStatus {
	if t.DueDate == nil {
		return DueNone
	}

	due := t.DueDate.In(now.Location())
	today := startOfDay(now)
	day := startOfDay(due)

	switch {
	case day.Before(today):
		if t.Completed {
			return DueLater
		}
		return DueOverdue
	case day.Equal(today):
		return DueToday
	case day.Equal(today.AddDate(0, 0, 1)):
		return DueTomorrow
	default:
		return DueLater
	}
}

// DueLabel returns a short human label for the due date, or "" if there is none
func (t *Task) DueLabel(now time.Time) string {
	switch t.DueStatus(now) {
	case DueNone:
		return ""
	case DueOverdue:
		return "Overdue"
	case DueToday:
		return "Today"
	case DueTomorrow:
		return "Tomorrow"
	}
	return t.DueDate.In(now.Location()).Format("Jan 02")
}

// DueStatus is the relation of a due date to today
type DueStatus int

const (
	DueNone DueStatus = iota
	DueOverdue
	DueToday
	DueTomorrow
	DueLater
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
