package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/checkmark/internal/app"
	"github.com/dori/checkmark/internal/model"
	"github.com/dori/checkmark/internal/ui/theme"
	"github.com/dori/checkmark/internal/ui/views"
)

// RootModel is the main application model
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int
	now    func() time.Time

	listView    views.ListView
	helpVisible bool

	statusMsg string
}

// NewRootModel creates a new root model and applies the stored theme
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = true

	theme.Apply(application.Store.View().DarkMode)

	return RootModel{
		app:      application,
		keys:     DefaultKeyMap(),
		help:     h,
		now:      time.Now,
		listView: views.NewListView(application.Store),
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	tasks := m.app.Store.Tasks()
	now := m.now()
	return tea.Batch(m.listView.Init(), func() tea.Msg {
		overdue := 0
		for i := range tasks {
			if tasks[i].IsOverdue(now) {
				overdue++
			}
		}
		if overdue == 0 {
			return nil
		}
		return StatusMsg{Message: fmt.Sprintf("%d overdue", overdue)}
	})
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header (1 line) and footer (2 lines)
		m.listView = m.listView.SetSize(m.width, m.height-3)
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		isInputMode := m.listView.IsInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeToggle):
			return m, m.toggleTheme()
		}

		if m.helpVisible {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.helpVisible = false
			}
			return m, nil
		}

		if !isInputMode && key.Matches(msg, m.keys.Help) {
			m.helpVisible = true
			return m, nil
		}

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		theme.Apply(msg.Dark)
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	newListView, cmd := m.listView.Update(msg)
	m.listView = newListView.(views.ListView)
	return m, cmd
}

// toggleTheme flips the stored dark-mode flag and reports the new theme
func (m RootModel) toggleTheme() tea.Cmd {
	m.app.Store.ToggleTheme()
	dark := m.app.Store.View().DarkMode
	name := theme.ForMode(dark).Name
	return func() tea.Msg {
		return ThemeChangedMsg{ThemeName: name, Dark: dark}
	}
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 3
	if m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.listView.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme
	view := m.app.Store.View()

	title := styles.Header.Render("checkmark")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s · %s]", view.Filter.Label(), view.Sort))
	themeIndicator := viewStyle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator)
	gap := max(m.width-lipgloss.Width(leftSide)-lipgloss.Width(themeIndicator), 0)

	return leftSide + strings.Repeat(" ", gap) + themeIndicator
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	hint := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var lines []string
	if m.statusMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg))
	}

	switch {
	case m.helpVisible:
		lines = append(lines, hint("?/esc", "close help"))
	case m.listView.Mode() == views.ListModeConfirmDelete:
		lines = append(lines, hint("y", "delete")+sep+hint("n/esc", "keep"))
	case m.listView.IsInputMode():
		lines = append(lines, hint("enter", "confirm")+sep+hint("esc", "cancel"))
	default:
		line := hint("a", "add") + sep +
			hint("enter", "edit") + sep +
			hint("tab", "done") + sep +
			hint("d", "del") + sep +
			hint("/", "search") + sep +
			hint("f", "filter") + sep +
			hint("s", "sort")
		if m.app.Store.View().Sort == model.SortManual {
			line += sep + hint("J/K", "move")
		}
		line += sep + hint("?", "help")
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder

	b.WriteString(titleStyle.Render("Checkmark Help"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Tasks"))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.listView.Keys()))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("System"))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Quick add"))
	b.WriteString("\n")
	syntax := [][2]string{
		{"!high !low", "Set priority"},
		{"due:tomorrow", "Due date (today, friday, nextweek, 2024-01-15)"},
		{"@home", "Category"},
	}
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Bold(true).
		Width(16)
	for _, kv := range syntax {
		b.WriteString(keyStyle.Render(kv[0]))
		b.WriteString(descStyle.Render(kv[1]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))

	return b.String()
}
