package store

import (
	"slices"
	"strings"

	"github.com/dori/checkmark/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Derive computes the visible sequence for a view. It never modifies or
// aliases tasks: the result is a fresh slice of copies.
//
// Order of operations is completion filter, then case-insensitive search
// on the text, then a stable sort by the view's key. Ties keep the input
// order.
func Derive(tasks []model.Task, view model.ViewState) []model.Task {
	query := strings.ToLower(view.Search)

	out := make([]model.Task, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if !view.Filter.Match(t) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Text), query) {
			continue
		}
		out = append(out, t.Clone())
	}

	switch view.Sort {
	case model.SortPriority:
		slices.SortStableFunc(out, func(a, b model.Task) int {
			return b.Priority.Weight() - a.Priority.Weight()
		})
	case model.SortAlphabetical:
		// Collator is not safe for concurrent use; build one per call.
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b model.Task) int {
			return c.CompareString(a.Text, b.Text)
		})
	case model.SortManual:
		// stored order
	default:
		slices.SortStableFunc(out, func(a, b model.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}

	return out
}

// Stats summarizes the whole collection, ignoring filter and search
type Stats struct {
	Total     int
	Completed int
	Pending   int
	// Percent is Completed/Total rounded to the nearest integer, 0 when empty
	Percent int
}

// ComputeStats counts tasks by completion state
func ComputeStats(tasks []model.Task) Stats {
	var s Stats
	s.Total = len(tasks)
	for i := range tasks {
		if tasks[i].Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.Percent = (s.Completed*100 + s.Total/2) / s.Total
	}
	return s
}

// Count returns how many tasks a filter would show with no search applied
func (s Stats) Count(f model.Filter) int {
	switch f {
	case model.FilterPending:
		return s.Pending
	case model.FilterCompleted:
		return s.Completed
	default:
		return s.Total
	}
}
