// Package quickadd parses the one-line task syntax shared by the CLI and
// the TUI, e.g. "Review PR @work !high due:tomorrow".
package quickadd

import (
	"strings"
	"time"

	"github.com/dori/checkmark/internal/model"
)

// Parse splits text into a task draft. Recognized tokens:
//
//	@word          category (last one wins)
//	!low !medium !high (and !l !m !h)
//	due:<date>     today, tomorrow, weekday names, nextweek, 2006-01-02, ...
//
// Anything else stays in the text. The draft has no ID or CreatedAt.
func Parse(text string, now time.Time) model.Task {
	task := model.Task{Priority: model.PriorityMedium}

	var textParts []string
	for _, word := range strings.Fields(text) {
		switch {
		case len(word) > 1 && strings.HasPrefix(word, "@"):
			task.Category = strings.TrimPrefix(word, "@")

		case len(word) > 1 && strings.HasPrefix(word, "!"):
			if p, ok := model.ParsePriority(strings.TrimPrefix(word, "!")); ok {
				task.Priority = p
			} else {
				textParts = append(textParts, word)
			}

		case strings.HasPrefix(strings.ToLower(word), "due:"):
			dateStr := word[len("due:"):]
			if parsed := ParseDate(dateStr, now); parsed != nil {
				task.DueDate = parsed
			} else {
				textParts = append(textParts, word)
			}

		default:
			textParts = append(textParts, word)
		}
	}

	task.Text = strings.Join(textParts, " ")
	return task
}

// Change is an edit typed over a task's existing text
type Change struct {
	Text string
	// Priority is empty when no priority token was typed
	Priority model.Priority
	// DueDate is nil when no due token was typed
	DueDate  *time.Time
	ClearDue bool
}

// ParseEdit parses edited as a replacement for original. Words already
// present in original stay literal, so text such as "Fix !high bug" is
// not reinterpreted. Newly typed !priority and due:<date> tokens change
// those fields, and due:none clears the due date. @words are always kept
// as text since edits do not change the category.
func ParseEdit(original, edited string, now time.Time) Change {
	edited = strings.TrimSpace(edited)
	if edited == original {
		return Change{Text: original}
	}

	literal := make(map[string]int)
	for _, word := range strings.Fields(original) {
		literal[word]++
	}

	var change Change
	var textParts []string
	directives := 0
	for _, word := range strings.Fields(edited) {
		if literal[word] > 0 {
			literal[word]--
			textParts = append(textParts, word)
			continue
		}

		switch {
		case len(word) > 1 && strings.HasPrefix(word, "!"):
			if p, ok := model.ParsePriority(word[1:]); ok {
				change.Priority = p
				directives++
				continue
			}

		case strings.HasPrefix(strings.ToLower(word), "due:"):
			dateStr := word[len("due:"):]
			if strings.EqualFold(dateStr, "none") {
				change.DueDate = nil
				change.ClearDue = true
				directives++
				continue
			}
			if parsed := ParseDate(dateStr, now); parsed != nil {
				change.DueDate = parsed
				change.ClearDue = false
				directives++
				continue
			}
		}
		textParts = append(textParts, word)
	}

	if directives == 0 {
		change.Text = edited
	} else {
		change.Text = strings.Join(textParts, " ")
	}
	return change
}

// Apply returns t with the change applied. Fields without a typed token
// keep their current values.
func (c Change) Apply(t model.Task) model.Task {
	t = t.Clone()
	t.Text = c.Text
	if c.Priority != "" {
		t.Priority = c.Priority
	}
	switch {
	case c.ClearDue:
		t.DueDate = nil
	case c.DueDate != nil:
		due := *c.DueDate
		t.DueDate = &due
	}
	return t
}

// ParseDate resolves a natural or formatted date relative to now. Dates
// resolve to the end of the day in now's location. It returns nil when s
// is not understood.
func ParseDate(s string, now time.Time) *time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	switch strings.ToLower(s) {
	case "today":
		return &today
	case "tomorrow", "tom":
		t := today.AddDate(0, 0, 1)
		return &t
	case "monday", "mon":
		return nextWeekday(today, time.Monday)
	case "tuesday", "tue":
		return nextWeekday(today, time.Tuesday)
	case "wednesday", "wed":
		return nextWeekday(today, time.Wednesday)
	case "thursday", "thu":
		return nextWeekday(today, time.Thursday)
	case "friday", "fri":
		return nextWeekday(today, time.Friday)
	case "saturday", "sat":
		return nextWeekday(today, time.Saturday)
	case "sunday", "sun":
		return nextWeekday(today, time.Sunday)
	case "nextweek":
		t := today.AddDate(0, 0, 7)
		return &t
	}

	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"01-02-2006",
		"Jan 2",
		"Jan 2, 2006",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, now.Location()); err == nil {
			year := t.Year()
			// "Jan 2" parses with year 0
			if year == 0 {
				year = now.Year()
			}
			t = time.Date(year, t.Month(), t.Day(), 23, 59, 59, 0, now.Location())
			return &t
		}
	}

	return nil
}

// nextWeekday returns the next occurrence of day strictly after today
func nextWeekday(today time.Time, day time.Weekday) *time.Time {
	daysUntil := int(day - today.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}

	t := today.AddDate(0, 0, daysUntil)
	return &t
}
