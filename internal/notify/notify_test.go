package notify

import (
	"testing"
	"time"

	"github.com/dori/checkmark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name string
	args []string
	runs int
}

func (r *recorder) run(name string, args ...string) error {
	r.name = name
	r.args = args
	r.runs++
	return nil
}

func TestArgs(t *testing.T) {
	n := Notification{
		Title:   "Title",
		Body:    "Body",
		Urgency: UrgencyCritical,
		Timeout: 2 * time.Second,
		Icon:    "alarm",
	}
	assert.Equal(t,
		[]string{"-u", "critical", "-t", "2000", "-i", "alarm", "-a", "checkmark", "Title", "Body"},
		n.Args())

	assert.Equal(t, []string{"-u", "normal", "-a", "checkmark", "Only title"},
		Notification{Title: "Only title", Urgency: UrgencyNormal}.Args())
}

func TestDisabledSendsNothing(t *testing.T) {
	rec := &recorder{}
	n := NewNotifier(false).WithRunner(rec.run)

	require.NoError(t, n.Send(Notification{Title: "x"}))
	assert.Equal(t, 0, rec.runs)
}

func TestSendOverdue(t *testing.T) {
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -2)
	future := now.AddDate(0, 0, 3)

	tasks := []model.Task{
		{Text: "Pay rent", DueDate: &past},
		{Text: "Done already", DueDate: &past, Completed: true},
		{Text: "Later", DueDate: &future},
		{Text: "No date"},
	}

	rec := &recorder{}
	n := NewNotifier(true).WithRunner(rec.run)
	require.NoError(t, n.SendOverdue(tasks, now))
	assert.Equal(t, "notify-send", rec.name)
	assert.Contains(t, rec.args, "Task overdue")
	assert.Contains(t, rec.args, "Pay rent")

	tasks = append(tasks, model.Task{Text: "File taxes", DueDate: &past})
	summary, ok := OverdueSummary(tasks, now)
	require.True(t, ok)
	assert.Equal(t, "2 tasks overdue", summary.Title)
	assert.Equal(t, "Pay rent and 1 more", summary.Body)

	rec.runs = 0
	require.NoError(t, n.SendOverdue(tasks[2:4], now))
	assert.Equal(t, 0, rec.runs)
}
