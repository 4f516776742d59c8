package notify

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/dori/checkmark/internal/model"
)

// Urgency levels for notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification represents a desktop notification
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	Timeout time.Duration
	Icon    string // Optional icon name
}

// Runner executes a command; exec is the default
type Runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Notifier handles sending desktop notifications
type Notifier struct {
	enabled bool
	run     Runner
}

// NewNotifier creates a notifier that shells out to notify-send
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		run:     execRunner,
	}
}

// WithRunner replaces the command runner, for tests
func (n *Notifier) WithRunner(r Runner) *Notifier {
	n.run = r
	return n
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Args builds the notify-send argument list
func (nt Notification) Args() []string {
	args := []string{}

	switch nt.Urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	// milliseconds
	if nt.Timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(nt.Timeout.Milliseconds())))
	}

	if nt.Icon != "" {
		args = append(args, "-i", nt.Icon)
	}

	args = append(args, "-a", "checkmark")

	args = append(args, nt.Title)
	if nt.Body != "" {
		args = append(args, nt.Body)
	}
	return args
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(notification Notification) error {
	if !n.enabled {
		return nil
	}
	return n.run("notify-send", notification.Args()...)
}

// OverdueSummary builds the startup reminder for overdue tasks. It
// reports false when nothing is overdue.
func OverdueSummary(tasks []model.Task, now time.Time) (Notification, bool) {
	var overdue []model.Task
	for i := range tasks {
		if tasks[i].IsOverdue(now) {
			overdue = append(overdue, tasks[i])
		}
	}
	if len(overdue) == 0 {
		return Notification{}, false
	}

	n := Notification{
		Urgency: UrgencyCritical,
		Timeout: 15 * time.Second,
		Icon:    "emblem-important-symbolic",
	}
	if len(overdue) == 1 {
		n.Title = "Task overdue"
		n.Body = overdue[0].Text
	} else {
		n.Title = fmt.Sprintf("%d tasks overdue", len(overdue))
		n.Body = fmt.Sprintf("%s and %d more", overdue[0].Text, len(overdue)-1)
	}
	return n, true
}

// SendOverdue notifies about overdue tasks, if any
func (n *Notifier) SendOverdue(tasks []model.Task, now time.Time) error {
	notification, ok := OverdueSummary(tasks, now)
	if !ok {
		return nil
	}
	return n.Send(notification)
}
