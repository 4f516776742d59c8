// Package store holds the task collection and view state and is the only
// place either is mutated.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dori/checkmark/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSaveTimeout bounds a single persister call
const DefaultSaveTimeout = 5 * time.Second

// Persister is the storage port. The store calls it after each successful
// mutation; its errors are logged and never roll back in-memory state.
type Persister interface {
	LoadState(ctx context.Context) (model.Snapshot, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
	SaveDarkMode(ctx context.Context, dark bool) error
}

// Store owns an ordered task collection and a view state
type Store struct {
	mu    sync.RWMutex
	tasks []model.Task
	view  model.ViewState

	// saveMu is taken before mu is released so saves reach the
	// persister in mutation order
	saveMu sync.Mutex

	persister   Persister
	log         *zap.Logger
	now         func() time.Time
	newID       func() string
	saveTimeout time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithPersister sets the storage port
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger used for persistence failures
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the UUID generator
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithSaveTimeout overrides DefaultSaveTimeout
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) { s.saveTimeout = d }
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		view:        model.DefaultViewState(),
		log:         zap.NewNop(),
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
		saveTimeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection and theme flag with the persisted state.
// Any load failure is logged and leaves the store empty.
func (s *Store) Load(ctx context.Context) {
	if s.persister == nil {
		return
	}

	snap, err := s.persister.LoadState(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.log.Warn("discarding stored tasks", zap.Error(err))
		s.tasks = nil
		s.view.DarkMode = false
		return
	}

	s.tasks = make([]model.Task, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		s.tasks = append(s.tasks, t.Clone())
	}
	s.view.DarkMode = snap.DarkMode
	s.log.Debug("tasks loaded", zap.Int("count", len(s.tasks)), zap.Bool("dark_mode", snap.DarkMode))
}

// Add appends a new task. Blank text is ignored and reported as false.
func (s *Store) Add(text string, due *time.Time, priority model.Priority) (model.Task, bool) {
	return s.AddTask(model.Task{Text: text, DueDate: due, Priority: priority})
}

// AddTask appends a new task built from a draft. Only Text, DueDate,
// Priority and Category are taken from draft; identity, timestamp and
// completion are assigned here.
func (s *Store) AddTask(draft model.Task) (model.Task, bool) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return model.Task{}, false
	}

	s.mu.Lock()
	task := model.Task{
		ID:        s.newID(),
		Text:      text,
		CreatedAt: s.now(),
		Priority:  draft.Priority.OrDefault(),
		Category:  strings.TrimSpace(draft.Category),
	}
	if draft.DueDate != nil {
		due := *draft.DueDate
		task.DueDate = &due
	}
	s.tasks = append(s.tasks, task)
	s.unlockAndSave()
	return task.Clone(), true
}

// Toggle flips the completion flag of a task
func (s *Store) Toggle(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.unlockAndSave()
	return true
}

// Delete removes a task permanently
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.unlockAndSave()
	return true
}

// Edit replaces text, due date and priority. CreatedAt, Completed and
// Category are kept. Blank text or an unknown id is a no-op.
func (s *Store) Edit(id, text string, due *time.Time, priority model.Priority) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.tasks[i].Text = text
	s.tasks[i].Priority = priority.OrDefault()
	if due != nil {
		d := *due
		s.tasks[i].DueDate = &d
	} else {
		s.tasks[i].DueDate = nil
	}
	s.unlockAndSave()
	return true
}

// Reorder replaces the stored sequence. ids must be a permutation of the
// current ids, otherwise nothing changes.
func (s *Store) Reorder(ids []string) bool {
	s.mu.Lock()
	if len(ids) != len(s.tasks) {
		s.mu.Unlock()
		return false
	}

	byID := make(map[string]model.Task, len(s.tasks))
	for _, t := range s.tasks {
		byID[t.ID] = t
	}
	reordered := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			s.mu.Unlock()
			return false
		}
		delete(byID, id)
		reordered = append(reordered, t)
	}
	s.tasks = reordered
	s.unlockAndSave()
	return true
}

// Move shifts a task delta places within the stored sequence, clamped to
// the ends. It reports false when the task is absent or already at the
// requested end.
func (s *Store) Move(id string, delta int) bool {
	s.mu.RLock()
	from := s.indexLocked(id)
	ids := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		ids[i] = t.ID
	}
	s.mu.RUnlock()

	if from < 0 {
		return false
	}
	to := min(max(from+delta, 0), len(ids)-1)
	if to == from {
		return false
	}

	moved := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]string{moved}, ids[to:]...)...)
	return s.Reorder(ids)
}

// SetFilter sets the completion filter; unknown values are ignored
func (s *Store) SetFilter(f model.Filter) {
	if !f.Valid() {
		return
	}
	s.mu.Lock()
	s.view.Filter = f
	s.mu.Unlock()
}

// SetSort sets the sort key; unknown values are ignored
func (s *Store) SetSort(k model.SortKey) {
	if !k.Valid() {
		return
	}
	s.mu.Lock()
	s.view.Sort = k
	s.mu.Unlock()
}

// SetSearch sets the free-text search
func (s *Store) SetSearch(q string) {
	s.mu.Lock()
	s.view.Search = q
	s.mu.Unlock()
}

// ToggleTheme flips dark mode and returns the new value
func (s *Store) ToggleTheme() bool {
	s.mu.Lock()
	s.view.DarkMode = !s.view.DarkMode
	dark := s.view.DarkMode
	s.saveMu.Lock()
	s.mu.Unlock()
	defer s.saveMu.Unlock()

	if s.persister != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		defer cancel()
		if err := s.persister.SaveDarkMode(ctx, dark); err != nil {
			s.log.Warn("failed to save theme", zap.Bool("dark_mode", dark), zap.Error(err))
		}
	}
	return dark
}

// View returns the current view state
func (s *Store) View() model.ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Tasks returns a copy of the stored sequence
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Len returns the collection size
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Get returns a task by id
func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Find resolves an id or a unique id prefix. Ambiguous or unknown
// prefixes return false.
func (s *Store) Find(prefix string) (model.Task, bool) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.Task{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(prefix); i >= 0 {
		return s.tasks[i].Clone(), true
	}

	match := -1
	for i, t := range s.tasks {
		if strings.HasPrefix(t.ID, prefix) {
			if match >= 0 {
				return model.Task{}, false
			}
			match = i
		}
	}
	if match < 0 {
		return model.Task{}, false
	}
	return s.tasks[match].Clone(), true
}

// Derived returns the visible sequence for the current view state
func (s *Store) Derived() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Derive(s.tasks, s.view)
}

// Stats summarizes the whole collection
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(s.tasks)
}

// Replace swaps the whole collection, as done by import. Tasks with blank
// text or duplicate ids are dropped. The number kept is returned.
func (s *Store) Replace(tasks []model.Task) int {
	seen := make(map[string]bool, len(tasks))
	kept := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		t.Text = strings.TrimSpace(t.Text)
		if t.Text == "" || t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		t.Priority = t.Priority.OrDefault()
		kept = append(kept, t.Clone())
	}

	s.mu.Lock()
	s.tasks = kept
	s.unlockAndSave()
	return len(kept)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []model.Task {
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// unlockAndSave snapshots the collection, releases mu and persists the
// snapshot. Callers must hold mu.
func (s *Store) unlockAndSave() {
	snap := s.snapshotLocked()
	s.saveMu.Lock()
	s.mu.Unlock()
	defer s.saveMu.Unlock()

	s.saveTasks(snap)
}

func (s *Store) saveTasks(tasks []model.Task) {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.persister.SaveTasks(ctx, tasks); err != nil {
		s.log.Warn("failed to save tasks", zap.Int("count", len(tasks)), zap.Error(err))
	}
}
