package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/checkmark/internal/app"
	"github.com/dori/checkmark/internal/config"
	"github.com/dori/checkmark/internal/model"
	"github.com/dori/checkmark/internal/quickadd"
	"github.com/dori/checkmark/internal/snapshot"
	"github.com/dori/checkmark/internal/store"
	"github.com/dori/checkmark/internal/ui"
)

var (
	version = "0.1.0"
)

// errUsage is returned after usage text has been printed
var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// cli carries the output streams and clock shared by subcommands
type cli struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func run(args []string, stdout, stderr io.Writer) error {
	c := cli{stdout: stdout, stderr: stderr, now: time.Now}

	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "add":
			return c.add(args[1:])
		case "list", "ls":
			return c.list(args[1:])
		case "done":
			return c.done(args[1:])
		case "rm", "delete":
			return c.remove(args[1:])
		case "edit":
			return c.edit(args[1:])
		case "export":
			return c.export(args[1:])
		case "import":
			return c.importFile(args[1:])
		case "version":
			fmt.Fprintf(stdout, "checkmark v%s\n", version)
			return nil
		case "help":
			printHelp(stdout)
			return nil
		default:
			fmt.Fprintf(stderr, "Unknown command %q\n\n", args[0])
			printHelp(stderr)
			return errUsage
		}
	}

	return c.tui(args)
}

func printHelp(w io.Writer) {
	help := `checkmark - A keyboard-driven todo list

Usage:
  checkmark [options]              Start the TUI
  checkmark add <task>             Quick add a task
  checkmark list [options]         Print tasks
  checkmark done <id>              Toggle a task done/pending
  checkmark rm <id>                Delete a task
  checkmark edit <id> <task>       Replace a task's text
  checkmark export [file]          Write all tasks as JSON (stdout default)
  checkmark import <file>          Replace all tasks from a JSON export
  checkmark version                Show version
  checkmark help                   Show this help

  <id> may be any unique prefix of a task ID.

Quick Add Syntax:
  checkmark add "Buy groceries"
  checkmark add "Review PR @work !high due:tomorrow"

  Category:  @word         (e.g., @home, @work)
  Priority:  !low !medium !high
  Due date:  due:today due:tomorrow due:friday due:nextweek due:2024-01-15

  When editing, due:none clears the due date and @words stay in the text.

TUI Options:
  --theme <dark|light>
  --filter <all|pending|completed>
  --sort <date|priority|alphabetical|manual>

Common Options:
  --data-dir <dir>       Data directory (default ~/.local/share/checkmark)
  --backend <name>       Storage backend: sqlite or json

Environment:
  CHECKMARK_DATA_DIR, CHECKMARK_BACKEND, CHECKMARK_LOG_LEVEL,
  CHECKMARK_THEME, CHECKMARK_NOTIFY

Keybindings:
  Navigation:   ↑/↓ or j/k    Move cursor
                g/G           Go to top/bottom

  Actions:      a             Add new task
                enter         Edit task
                tab/x         Toggle done
                d             Delete (with confirm)
                p             Cycle priority
                J/K           Move task (manual sort)

  View:         /             Search
                f             Cycle filter
                s             Cycle sort
                ctrl+t        Toggle dark/light
                ?             Help
                q             Quit`

	fmt.Fprintln(w, help)
}

// newFlagSet returns a flag set bound to the storage options shared by all
// commands
func (c cli) newFlagSet(name string, cfg *config.Config) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Data directory")
	fs.Func("backend", "Storage backend (sqlite, json)", func(s string) error {
		cfg.Backend = config.Backend(strings.ToLower(s))
		return nil
	})
	return fs
}

func (c cli) parse(fs *flag.FlagSet, args []string) error {
	// flag already printed the problem and usage
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func (c cli) openApp(cfg *config.Config) (*app.App, error) {
	return app.New(cfg, app.Options{Console: c.stderr})
}

func (c cli) tui(args []string) error {
	cfg := config.FromEnv()
	fs := c.newFlagSet("checkmark", cfg)
	fs.Func("theme", "Theme (dark, light)", func(s string) error {
		cfg.Theme = strings.ToLower(s)
		return nil
	})
	fs.Func("filter", "Initial filter (all, pending, completed)", func(s string) error {
		f, ok := model.ParseFilter(s)
		if !ok {
			return fmt.Errorf("unknown filter %q", s)
		}
		cfg.Filter = f
		return nil
	})
	fs.Func("sort", "Initial sort (date, priority, alphabetical, manual)", func(s string) error {
		k, ok := model.ParseSortKey(s)
		if !ok {
			return fmt.Errorf("unknown sort %q", s)
		}
		cfg.Sort = k
		return nil
	})
	if err := c.parse(fs, args); err != nil {
		return err
	}

	application, err := app.New(cfg, app.Options{Interactive: true})
	if err != nil {
		return err
	}
	defer application.Close()

	application.NotifyOverdue(c.now())

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}

func (c cli) add(args []string) error {
	cfg := config.FromEnv()
	fs := c.newFlagSet("add", cfg)
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(c.stderr, "Usage: checkmark add <task>")
		fmt.Fprintln(c.stderr, "Example: checkmark add \"Buy groceries @errands !high due:tomorrow\"")
		return errUsage
	}

	application, err := c.openApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	now := c.now()
	task, ok := application.Store.AddTask(quickadd.Parse(strings.Join(fs.Args(), " "), now))
	if !ok {
		return fmt.Errorf("task text cannot be empty")
	}

	fmt.Fprintf(c.stdout, "Created: %s (%s)\n", task.Text, shortID(task.ID))
	if label := task.DueLabel(now); label != "" {
		fmt.Fprintf(c.stdout, "Due: %s\n", label)
	}
	if task.Priority != model.PriorityMedium {
		fmt.Fprintf(c.stdout, "Priority: %s\n", task.Priority)
	}
	if task.Category != "" {
		fmt.Fprintf(c.stdout, "Category: %s\n", task.Category)
	}
	return nil
}

func (c cli) list(args []string) error {
	cfg := config.FromEnv()
	fs := c.newFlagSet("list", cfg)
	filter := fs.String("filter", string(model.FilterAll), "Filter (all, pending, completed)")
	sortKey := fs.String("sort", string(model.SortDate), "Sort (date, priority, alphabetical, manual)")
	search := fs.String("search", "", "Case-insensitive text search")
	if err := c.parse(fs, args); err != nil {
		return err
	}

	f, ok := model.ParseFilter(*filter)
	if !ok {
		return fmt.Errorf("unknown filter %q", *filter)
	}
	k, ok := model.ParseSortKey(*sortKey)
	if !ok {
		return fmt.Errorf("unknown sort %q", *sortKey)
	}

	application, err := c.openApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	s := application.Store
	s.SetFilter(f)
	s.SetSort(k)
	s.SetSearch(*search)

	printTasks(c.stdout, s.Derived(), c.now())
	printStats(c.stdout, s.Stats())
	return nil
}

func printTasks(w io.Writer, tasks []model.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, t := range tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s %-6s %s", shortID(t.ID), check, t.Priority, t.Text)
		if t.Category != "" {
			line += " @" + t.Category
		}
		if label := t.DueLabel(now); label != "" {
			line += " (" + label + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func printStats(w io.Writer, st store.Stats) {
	fmt.Fprintf(w, "\n%d total, %d done, %d pending (%d%%)\n",
		st.Total, st.Completed, st.Pending, st.Percent)
}

// shortID returns the first 8 characters of a task ID
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// findTask resolves an ID prefix or fails with a message naming it
func findTask(s *store.Store, prefix string) (model.Task, error) {
	task, ok := s.Find(prefix)
	if !ok {
		return model.Task{}, fmt.Errorf("no unique task matches %q", prefix)
	}
	return task, nil
}

func (c cli) done(args []string) error {
	cfg := config.FromEnv()
	fs := c.newFlagSet("done", cfg)
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Usage: checkmark done <id>")
		return errUsage
	}

	application, err := c.openApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	task, err := findTask(application.Store, fs.Arg(0))
	if err != nil {
		return err
	}
	application.Store.Toggle(task.ID)

	if task.Completed {
		fmt.Fprintf(c.stdout, "Reopened: %s\n", task.Text)
	} else {
		fmt.Fprintf(c.stdout, "Completed: %s\n", task.Text)
	}
	return nil
}

func (c cli) remove(args []string) error {
	cfg := config.FromEnv()
	fs := c.newFlagSet("rm", cfg)
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Usage: checkmark rm <id>")
		return errUsage
	}

	application, err := c.openApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	task, err := findTask(application.Store, fs.Arg(0))
	if err != nil {
		return err
	}
	application.Store.Delete(task.ID)
	fmt.Fprintf(c.stdout, "Deleted: %s\n", task.Text)
	return nil
}

// edit replaces the task text. Due date and priority keep their current
// values unless the new text sets them; the category never changes.
func (c cli) edit(args []string) error {
	cfg := config.FromEnv()
	fs := c.newFlagSet("edit", cfg)
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(c.stderr, "Usage: checkmark edit <id> <task>")
		return errUsage
	}

	application, err := c.openApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	task, err := findTask(application.Store, fs.Arg(0))
	if err != nil {
		return err
	}

	text := strings.Join(fs.Args()[1:], " ")
	updated := quickadd.ParseEdit(task.Text, text, c.now()).Apply(task)

	if !application.Store.Edit(task.ID, updated.Text, updated.DueDate, updated.Priority) {
		return fmt.Errorf("task text cannot be empty")
	}
	fmt.Fprintf(c.stdout, "Updated: %s\n", strings.TrimSpace(updated.Text))
	return nil
}

func (c cli) export(args []string) error {
	cfg := config.FromEnv()
	fs := c.newFlagSet("export", cfg)
	if err := c.parse(fs, args); err != nil {
		return err
	}

	application, err := c.openApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	snap := model.Snapshot{
		Tasks:    application.Store.Tasks(),
		DarkMode: application.Store.View().DarkMode,
	}

	if fs.NArg() == 0 || fs.Arg(0) == "-" {
		return snapshot.Encode(c.stdout, snap)
	}

	f, err := os.Create(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := snapshot.Encode(f, snap); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	fmt.Fprintf(c.stdout, "Exported %d tasks to %s\n", len(snap.Tasks), fs.Arg(0))
	return nil
}

func (c cli) importFile(args []string) error {
	cfg := config.FromEnv()
	fs := c.newFlagSet("import", cfg)
	if err := c.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "Usage: checkmark import <file>")
		return errUsage
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	snap, err := snapshot.Decode(f)
	if err != nil {
		return err
	}

	application, err := c.openApp(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	n := application.Store.Replace(snap.Tasks)
	fmt.Fprintf(c.stdout, "Imported %d tasks\n", n)
	if skipped := len(snap.Tasks) - n; skipped > 0 {
		fmt.Fprintf(c.stdout, "Skipped %d invalid tasks\n", skipped)
	}
	return nil
}
