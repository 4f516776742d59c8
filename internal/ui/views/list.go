package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/checkmark/internal/model"
	"github.com/dori/checkmark/internal/quickadd"
	"github.com/dori/checkmark/internal/store"
	"github.com/dori/checkmark/internal/ui/theme"
)

// ListMode represents the current input mode of the list view
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeAdd
	ListModeEdit
	ListModeSearch
	ListModeConfirmDelete
)

// ListView displays the derived task list and edits it through the store
type ListView struct {
	store *store.Store
	keys  ListKeys
	now   func() time.Time

	width  int
	height int

	tasks        []model.Task // derived view, refreshed after every change
	cursor       int
	scrollOffset int

	mode      ListMode
	input     textinput.Model
	editingID string
	deleteID  string
	statusMsg string
}

// NewListView creates a new list view
func NewListView(s *store.Store) ListView {
	ti := textinput.New()
	ti.Placeholder = "New task... (!high due:tomorrow @home)"
	ti.CharLimit = 256

	v := ListView{
		store: s,
		keys:  DefaultListKeys(),
		now:   time.Now,
		input: ti,
	}
	v.refresh()
	return v
}

// WithClock overrides time.Now, for due-date rendering and quick add
func (v ListView) WithClock(now func() time.Time) ListView {
	v.now = now
	return v
}

// Init initializes the list view
func (v ListView) Init() tea.Cmd {
	return nil
}

// IsInputMode returns true when the view is capturing keystrokes
func (v ListView) IsInputMode() bool {
	return v.mode != ListModeNormal
}

// Mode returns the current input mode
func (v ListView) Mode() ListMode {
	return v.mode
}

// Keys returns the list keybindings
func (v ListView) Keys() ListKeys {
	return v.keys
}

// Tasks returns the rows currently displayed
func (v ListView) Tasks() []model.Task {
	return v.tasks
}

// Cursor returns the highlighted row index
func (v ListView) Cursor() int {
	return v.cursor
}

// StatusMessage returns the last action feedback
func (v ListView) StatusMessage() string {
	return v.statusMsg
}

// SetSize updates the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.input.Width = width - 6
	v.ensureCursorVisible()
	return v
}

// Refresh re-derives the rows, e.g. after a change made outside the view
func (v ListView) Refresh() ListView {
	v.refresh()
	return v
}

func (v *ListView) refresh() {
	v.tasks = v.store.Derived()
	if v.cursor >= len(v.tasks) {
		v.cursor = max(0, len(v.tasks)-1)
	}
	v.ensureCursorVisible()
}

// focus moves the cursor to the row holding id, if visible
func (v *ListView) focus(id string) {
	for i, t := range v.tasks {
		if t.ID == id {
			v.cursor = i
			v.ensureCursorVisible()
			return
		}
	}
}

func (v ListView) current() (model.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return model.Task{}, false
	}
	return v.tasks[v.cursor], true
}

// visibleTaskCount returns how many tasks can fit in the viewport
func (v ListView) visibleTaskCount() int {
	// stats, tabs, blank line, status and input box
	available := v.height - 8
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible adjusts scrollOffset to keep cursor in view
func (v *ListView) ensureCursorVisible() {
	visible := v.visibleTaskCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	maxOffset := max(len(v.tasks)-visible, 0)
	v.scrollOffset = min(max(v.scrollOffset, 0), maxOffset)
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.mode == ListModeAdd || v.mode == ListModeEdit || v.mode == ListModeSearch {
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return v, cmd
		}
		return v, nil
	}

	switch v.mode {
	case ListModeAdd, ListModeEdit:
		return v.updateEditor(keyMsg)
	case ListModeSearch:
		return v.updateSearch(keyMsg)
	case ListModeConfirmDelete:
		return v.updateConfirmDelete(keyMsg)
	}
	return v.updateNormal(keyMsg)
}

func (v ListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.statusMsg = ""

	switch {
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		v.ensureCursorVisible()

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}
		v.ensureCursorVisible()

	case key.Matches(msg, v.keys.Top):
		v.cursor = 0
		v.ensureCursorVisible()

	case key.Matches(msg, v.keys.Bottom):
		v.cursor = max(0, len(v.tasks)-1)
		v.ensureCursorVisible()

	case key.Matches(msg, v.keys.Add):
		v.mode = ListModeAdd
		v.input.Reset()
		v.input.Placeholder = "New task... (!high due:tomorrow @home)"
		cmd := v.input.Focus()
		return v, cmd

	case key.Matches(msg, v.keys.Edit):
		task, ok := v.current()
		if !ok {
			return v, nil
		}
		v.mode = ListModeEdit
		v.editingID = task.ID
		v.input.SetValue(task.Text)
		v.input.CursorEnd()
		cmd := v.input.Focus()
		return v, cmd

	case key.Matches(msg, v.keys.Toggle):
		task, ok := v.current()
		if !ok {
			return v, nil
		}
		if v.store.Toggle(task.ID) {
			if task.Completed {
				v.statusMsg = fmt.Sprintf("Reopened %q", task.Text)
			} else {
				v.statusMsg = fmt.Sprintf("Completed %q", task.Text)
			}
		}
		v.refresh()

	case key.Matches(msg, v.keys.Delete):
		task, ok := v.current()
		if !ok {
			return v, nil
		}
		v.mode = ListModeConfirmDelete
		v.deleteID = task.ID

	case key.Matches(msg, v.keys.Priority):
		task, ok := v.current()
		if !ok {
			return v, nil
		}
		next := task.Priority.Next()
		if v.store.Edit(task.ID, task.Text, task.DueDate, next) {
			v.statusMsg = fmt.Sprintf("Priority: %s", next)
		}
		v.refresh()
		v.focus(task.ID)

	case key.Matches(msg, v.keys.MoveUp):
		v.move(-1)

	case key.Matches(msg, v.keys.MoveDown):
		v.move(1)

	case key.Matches(msg, v.keys.Search):
		v.mode = ListModeSearch
		v.input.SetValue(v.store.View().Search)
		v.input.Placeholder = "Search tasks..."
		v.input.CursorEnd()
		cmd := v.input.Focus()
		return v, cmd

	case key.Matches(msg, v.keys.Filter):
		next := v.store.View().Filter.Next()
		v.store.SetFilter(next)
		v.statusMsg = fmt.Sprintf("Showing %s", strings.ToLower(next.Label()))
		v.refresh()

	case key.Matches(msg, v.keys.Sort):
		next := v.store.View().Sort.Next()
		v.store.SetSort(next)
		v.statusMsg = fmt.Sprintf("Sorted by %s", next)
		v.refresh()

	case key.Matches(msg, v.keys.Clear):
		if v.store.View().Search != "" {
			v.store.SetSearch("")
			v.statusMsg = "Search cleared"
			v.refresh()
		}
	}

	return v, nil
}

// move shifts the highlighted task past its visible neighbour in the
// stored order. Only meaningful under manual sort.
func (v *ListView) move(delta int) {
	task, ok := v.current()
	if !ok {
		return
	}
	if v.store.View().Sort != model.SortManual {
		v.statusMsg = "Reordering needs manual sort (press s)"
		return
	}

	target := v.cursor + delta
	if target < 0 || target >= len(v.tasks) {
		return
	}
	neighbour := v.tasks[target]

	stored := v.store.Tasks()
	from, to := -1, -1
	for i, t := range stored {
		switch t.ID {
		case task.ID:
			from = i
		case neighbour.ID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return
	}

	if v.store.Move(task.ID, to-from) {
		v.refresh()
		v.focus(task.ID)
	}
}

func (v ListView) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Cancel):
		v.exitInput()
		return v, nil

	case key.Matches(msg, v.keys.Confirm):
		if v.mode == ListModeAdd {
			task, ok := v.store.AddTask(quickadd.Parse(v.input.Value(), v.now()))
			if !ok {
				v.statusMsg = "Task text cannot be empty"
			} else {
				v.statusMsg = fmt.Sprintf("Added %q", task.Text)
				v.refresh()
				v.focus(task.ID)
			}
		} else {
			v.statusMsg = v.applyEdit(v.input.Value())
		}
		v.exitInput()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// applyEdit saves the edited text of the task being edited and returns
// the status to show
func (v *ListView) applyEdit(value string) string {
	id := v.editingID
	task, ok := v.store.Get(id)
	if !ok {
		return "Task no longer exists"
	}

	updated := quickadd.ParseEdit(task.Text, value, v.now()).Apply(task)
	if strings.TrimSpace(updated.Text) == "" {
		return "Task text cannot be empty"
	}
	if updated.Text == task.Text && updated.Priority == task.Priority && sameDue(updated.DueDate, task.DueDate) {
		return "No changes"
	}

	if !v.store.Edit(id, updated.Text, updated.DueDate, updated.Priority) {
		return "Task text cannot be empty"
	}
	v.refresh()
	v.focus(id)
	return "Task updated"
}

func sameDue(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (v ListView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Cancel):
		v.store.SetSearch("")
		v.exitInput()
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.Confirm):
		v.exitInput()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	v.store.SetSearch(v.input.Value())
	v.refresh()
	return v, cmd
}

func (v ListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Yes):
		if task, ok := v.store.Get(v.deleteID); ok && v.store.Delete(v.deleteID) {
			v.statusMsg = fmt.Sprintf("Deleted %q", task.Text)
		}
		v.deleteID = ""
		v.mode = ListModeNormal
		v.refresh()

	case key.Matches(msg, v.keys.No):
		v.deleteID = ""
		v.mode = ListModeNormal
	}
	return v, nil
}

func (v *ListView) exitInput() {
	v.mode = ListModeNormal
	v.editingID = ""
	v.input.Blur()
	v.input.Reset()
}

// View renders the list view
func (v ListView) View() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	view := v.store.View()

	var b strings.Builder

	b.WriteString(v.renderStats())
	b.WriteString("\n")
	b.WriteString(v.renderTabs(view))
	b.WriteString("\n\n")

	switch v.mode {
	case ListModeAdd, ListModeEdit:
		b.WriteString(styles.InputFocused.Render(v.input.View()))
		b.WriteString("\n")
	case ListModeSearch:
		searchStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
		b.WriteString(searchStyle.Render("/"))
		b.WriteString(v.input.View())
		b.WriteString("\n")
	case ListModeConfirmDelete:
		confirmStyle := lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
		text := ""
		if task, ok := v.store.Get(v.deleteID); ok {
			text = task.Text
		}
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete %q? (y/n)", text)))
		b.WriteString("\n")
	}

	if v.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(t.Info).Italic(true)
		b.WriteString(statusStyle.Render(v.statusMsg))
		b.WriteString("\n")
	}

	if len(v.tasks) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Padding(1, 0)
		if v.store.Len() > 0 {
			b.WriteString(emptyStyle.Render("No tasks match the current filter or search."))
		} else {
			b.WriteString(emptyStyle.Render("No tasks. Press 'a' to add one."))
		}
		return b.String()
	}

	visible := v.visibleTaskCount()
	endIdx := min(v.scrollOffset+visible, len(v.tasks))
	scrollStyle := lipgloss.NewStyle().Foreground(t.Subtle)

	if v.scrollOffset > 0 {
		b.WriteString(scrollStyle.Render(fmt.Sprintf("  ↑ %d more above", v.scrollOffset)))
		b.WriteString("\n")
	}

	now := v.now()
	for i := v.scrollOffset; i < endIdx; i++ {
		b.WriteString(v.renderTask(v.tasks[i], i == v.cursor, now))
		b.WriteString("\n")
	}

	if remaining := len(v.tasks) - endIdx; remaining > 0 {
		b.WriteString(scrollStyle.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderStats renders totals and a completion bar
func (v ListView) renderStats() string {
	t := theme.Current.Theme
	stats := v.store.Stats()

	label := lipgloss.NewStyle().Foreground(t.Subtle)
	value := lipgloss.NewStyle().Foreground(t.Foreground).Bold(true)

	parts := []string{
		value.Render(fmt.Sprint(stats.Total)) + label.Render(" total"),
		lipgloss.NewStyle().Foreground(t.Success).Bold(true).Render(fmt.Sprint(stats.Completed)) + label.Render(" done"),
		lipgloss.NewStyle().Foreground(t.Warning).Bold(true).Render(fmt.Sprint(stats.Pending)) + label.Render(" pending"),
	}
	line := " " + strings.Join(parts, label.Render("  ·  "))

	if stats.Total > 0 {
		const barWidth = 20
		filled := stats.Percent * barWidth / 100
		bar := lipgloss.NewStyle().Foreground(t.Success).Render(strings.Repeat("█", filled)) +
			lipgloss.NewStyle().Foreground(t.Highlight).Render(strings.Repeat("░", barWidth-filled))
		line += "   " + bar + " " + value.Render(fmt.Sprintf("%d%%", stats.Percent))
	}
	return line
}

// renderTabs renders the filter tabs with counts plus sort and search
func (v ListView) renderTabs(view model.ViewState) string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	stats := v.store.Stats()

	var tabs []string
	for _, f := range model.Filters() {
		label := fmt.Sprintf("%s %d", f.Label(), stats.Count(f))
		if f == view.Filter {
			tabs = append(tabs, styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, styles.TabInactive.Render(label))
		}
	}

	meta := lipgloss.NewStyle().Foreground(t.Subtle)
	line := " " + strings.Join(tabs, " ") + meta.Render("   sort: "+string(view.Sort))
	if view.Search != "" && v.mode != ListModeSearch {
		line += meta.Render("   search: ") + lipgloss.NewStyle().Foreground(t.Info).Render(view.Search)
	}
	return line
}

// renderTask renders a single task line
func (v ListView) renderTask(task model.Task, isCursor bool, now time.Time) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	cursor := " "
	if isCursor {
		cursor = lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("›")
	}

	checkbox := "[ ]"
	if task.Completed {
		checkbox = lipgloss.NewStyle().Foreground(t.Success).Render("[x]")
	}

	var priorityChar string
	switch task.Priority {
	case model.PriorityHigh:
		priorityChar = "!"
	case model.PriorityLow:
		priorityChar = "."
	default:
		priorityChar = "-"
	}
	priority := styles.Priority.Foreground(t.PriorityColor(task.Priority)).Render(priorityChar)

	textStyle := styles.TaskNormal
	switch {
	case task.Completed:
		textStyle = styles.TaskDone
	case task.IsOverdue(now):
		textStyle = styles.TaskOverdue
	}
	if isCursor {
		textStyle = textStyle.Background(t.Highlight)
	}

	var metadata []string
	if task.Category != "" {
		metadata = append(metadata, styles.Category.Render("@"+task.Category))
	}
	if label := task.DueLabel(now); label != "" {
		dueStyle := lipgloss.NewStyle().Foreground(t.Subtle)
		switch task.DueStatus(now) {
		case model.DueOverdue:
			dueStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
		case model.DueToday:
			dueStyle = lipgloss.NewStyle().Foreground(t.Warning)
		case model.DueTomorrow:
			dueStyle = lipgloss.NewStyle().Foreground(t.Info)
		}
		metadata = append(metadata, dueStyle.Render(label))
	}

	prefix := fmt.Sprintf("%s %s %s", cursor, checkbox, priority)
	text := task.Text

	// Truncate the text so metadata stays on the line
	if v.width > 0 {
		meta := strings.Join(metadata, " ")
		avail := v.width - lipgloss.Width(prefix) - lipgloss.Width(meta) - 4
		if avail > 3 && lipgloss.Width(text) > avail {
			runes := []rune(text)
			if len(runes) > avail-1 {
				text = string(runes[:avail-1]) + "…"
			}
		}
	}

	line := prefix + textStyle.Render(text)
	if len(metadata) > 0 {
		line += " " + strings.Join(metadata, " ")
	}
	return line
}
