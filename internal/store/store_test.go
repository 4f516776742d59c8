package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dori/checkmark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakePersister struct {
	snap      model.Snapshot
	loadErr   error
	saveErr   error
	saves     [][]model.Task
	darkSaves []bool
}

func (f *fakePersister) LoadState(ctx context.Context) (model.Snapshot, error) {
	return f.snap, f.loadErr
}

func (f *fakePersister) SaveTasks(ctx context.Context, tasks []model.Task) error {
	f.saves = append(f.saves, tasks)
	return f.saveErr
}

func (f *fakePersister) SaveDarkMode(ctx context.Context, dark bool) error {
	f.darkSaves = append(f.darkSaves, dark)
	return f.saveErr
}

// newTestStore returns a store whose clock advances one second per task
// and whose ids are sequential.
func newTestStore(opts ...Option) *Store {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	seq := 0
	defaults := []Option{
		WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("task-%02d", seq)
		}),
	}
	return New(append(defaults, opts...)...)
}

func texts(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func TestAddRejectsBlankText(t *testing.T) {
	s := newTestStore()

	for _, text := range []string{"", "   ", "\t\n"} {
		_, ok := s.Add(text, nil, model.PriorityHigh)
		assert.False(t, ok, "text %q", text)
	}
	assert.Equal(t, 0, s.Len())
}

func TestAddAssignsDistinctIDs(t *testing.T) {
	s := New()

	seen := make(map[string]bool)
	for i := 0; i < 25; i++ {
		task, ok := s.Add(fmt.Sprintf("task %d", i), nil, model.PriorityMedium)
		require.True(t, ok)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
	assert.Equal(t, 25, s.Len())
}

func TestAddDefaults(t *testing.T) {
	s := newTestStore()

	task, ok := s.Add("  Buy milk  ", nil, "")
	require.True(t, ok)
	assert.Equal(t, "Buy milk", task.Text)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.False(t, task.Completed)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Nil(t, task.DueDate)

	task, ok = s.Add("Bogus priority", nil, model.Priority("urgent"))
	require.True(t, ok)
	assert.Equal(t, model.PriorityMedium, task.Priority)
}

func TestAddCopiesDueDate(t *testing.T) {
	s := newTestStore()
	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	task, _ := s.Add("Pay rent", &due, model.PriorityHigh)
	due = due.AddDate(1, 0, 0)

	got, ok := s.Get(task.ID)
	require.True(t, ok)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, 2024, got.DueDate.Year())
}

func TestToggleTwiceRestores(t *testing.T) {
	s := newTestStore()
	task, _ := s.Add("Walk dog", nil, model.PriorityLow)

	require.True(t, s.Toggle(task.ID))
	got, _ := s.Get(task.ID)
	assert.True(t, got.Completed)

	require.True(t, s.Toggle(task.ID))
	got, _ = s.Get(task.ID)
	assert.False(t, got.Completed)

	assert.False(t, s.Toggle("missing"))
}

func TestDelete(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add("a", nil, "")
	b, _ := s.Add("b", nil, "")
	c, _ := s.Add("c", nil, "")

	assert.False(t, s.Delete("missing"))
	assert.Equal(t, 3, s.Len())

	require.True(t, s.Delete(b.ID))
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get(b.ID)
	assert.False(t, ok)

	ids := []string{}
	for _, task := range s.Tasks() {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{a.ID, c.ID}, ids)
}

func TestEdit(t *testing.T) {
	s := newTestStore()
	task, _ := s.AddTask(model.Task{Text: "Draft", Priority: model.PriorityLow, Category: "work"})
	s.Toggle(task.ID)

	due := time.Date(2024, 4, 1, 23, 59, 59, 0, time.UTC)
	require.True(t, s.Edit(task.ID, " Final ", &due, model.PriorityHigh))

	got, _ := s.Get(task.ID)
	assert.Equal(t, "Final", got.Text)
	assert.Equal(t, model.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.True(t, got.Completed)
	assert.Equal(t, task.CreatedAt, got.CreatedAt)
	assert.Equal(t, "work", got.Category)

	assert.False(t, s.Edit(task.ID, "   ", nil, model.PriorityLow))
	assert.False(t, s.Edit("missing", "text", nil, model.PriorityLow))

	got, _ = s.Get(task.ID)
	assert.Equal(t, "Final", got.Text)

	require.True(t, s.Edit(task.ID, "Final", nil, model.PriorityHigh))
	got, _ = s.Get(task.ID)
	assert.Nil(t, got.DueDate)
}

func TestPrioritySortExample(t *testing.T) {
	s := newTestStore()
	s.Add("Buy milk", nil, model.PriorityHigh)
	s.Add("Walk dog", nil, model.PriorityLow)

	s.SetSort(model.SortPriority)
	assert.Equal(t, []string{"Buy milk", "Walk dog"}, texts(s.Derived()))
}

func TestDerivedDoesNotReorderStore(t *testing.T) {
	s := newTestStore()
	s.Add("one", nil, model.PriorityLow)
	s.Add("two", nil, model.PriorityHigh)
	s.Add("three", nil, model.PriorityMedium)

	s.SetSort(model.SortPriority)
	assert.Equal(t, []string{"two", "three", "one"}, texts(s.Derived()))
	assert.Equal(t, []string{"one", "two", "three"}, texts(s.Tasks()))

	s.SetSort(model.SortDate)
	assert.Equal(t, []string{"three", "two", "one"}, texts(s.Derived()))
}

func TestSetFilterAndSortIgnoreUnknown(t *testing.T) {
	s := newTestStore()
	s.SetFilter(model.FilterCompleted)
	s.SetFilter(model.Filter("bogus"))
	s.SetSort(model.SortAlphabetical)
	s.SetSort(model.SortKey("bogus"))

	v := s.View()
	assert.Equal(t, model.FilterCompleted, v.Filter)
	assert.Equal(t, model.SortAlphabetical, v.Sort)
}

func TestReorder(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add("a", nil, "")
	b, _ := s.Add("b", nil, "")
	c, _ := s.Add("c", nil, "")

	assert.False(t, s.Reorder([]string{a.ID, b.ID}), "short list")
	assert.False(t, s.Reorder([]string{a.ID, a.ID, b.ID}), "duplicate")
	assert.False(t, s.Reorder([]string{a.ID, b.ID, "x"}), "unknown id")
	assert.Equal(t, []string{"a", "b", "c"}, texts(s.Tasks()))

	require.True(t, s.Reorder([]string{c.ID, a.ID, b.ID}))
	assert.Equal(t, []string{"c", "a", "b"}, texts(s.Tasks()))

	s.SetSort(model.SortManual)
	assert.Equal(t, []string{"c", "a", "b"}, texts(s.Derived()))
}

func TestMove(t *testing.T) {
	s := newTestStore()
	a, _ := s.Add("a", nil, "")
	s.Add("b", nil, "")
	c, _ := s.Add("c", nil, "")

	require.True(t, s.Move(a.ID, 1))
	assert.Equal(t, []string{"b", "a", "c"}, texts(s.Tasks()))

	require.True(t, s.Move(c.ID, -10))
	assert.Equal(t, []string{"c", "b", "a"}, texts(s.Tasks()))

	assert.False(t, s.Move(c.ID, -1), "already first")
	assert.False(t, s.Move("missing", 1))
}

func TestFind(t *testing.T) {
	s := New(WithIDGenerator(func() func() string {
		ids := []string{"abc123", "abd456", "xyz789"}
		i := 0
		return func() string {
			id := ids[i]
			i++
			return id
		}
	}()))
	s.Add("first", nil, "")
	s.Add("second", nil, "")
	s.Add("third", nil, "")

	got, ok := s.Find("x")
	require.True(t, ok)
	assert.Equal(t, "third", got.Text)

	got, ok = s.Find("abd456")
	require.True(t, ok)
	assert.Equal(t, "second", got.Text)

	_, ok = s.Find("ab")
	assert.False(t, ok, "ambiguous prefix")
	_, ok = s.Find("q")
	assert.False(t, ok)
	_, ok = s.Find("")
	assert.False(t, ok)
}

func TestPersisterCalledAfterMutations(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(WithPersister(p))

	task, _ := s.Add("a", nil, "")
	s.Add("  ", nil, "")
	s.Toggle(task.ID)
	s.Toggle("missing")
	s.Edit(task.ID, "b", nil, model.PriorityHigh)
	s.SetFilter(model.FilterPending)
	s.SetSort(model.SortPriority)
	s.SetSearch("b")
	s.Delete(task.ID)

	require.Len(t, p.saves, 4)
	assert.Len(t, p.saves[0], 1)
	assert.True(t, p.saves[1][0].Completed)
	assert.Equal(t, "b", p.saves[2][0].Text)
	assert.Empty(t, p.saves[3])

	assert.True(t, s.ToggleTheme())
	assert.False(t, s.ToggleTheme())
	assert.Equal(t, []bool{true, false}, p.darkSaves)
}

func TestPersisterFailureKeepsState(t *testing.T) {
	p := &fakePersister{saveErr: errors.New("disk full")}
	s := newTestStore(WithPersister(p))

	task, ok := s.Add("a", nil, "")
	require.True(t, ok)
	require.True(t, s.Toggle(task.ID))
	assert.True(t, s.ToggleTheme())

	got, ok := s.Get(task.ID)
	require.True(t, ok)
	assert.True(t, got.Completed)
	assert.True(t, s.View().DarkMode)
}

// blockingPersister never finishes a save before its context ends
type blockingPersister struct{ fakePersister }

func (b *blockingPersister) SaveTasks(ctx context.Context, tasks []model.Task) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestSaveTimeoutIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := newTestStore(
		WithPersister(&blockingPersister{}),
		WithLogger(zap.New(core)),
		WithSaveTimeout(10*time.Millisecond),
	)

	start := time.Now()
	_, ok := s.Add("a", nil, "")
	require.True(t, ok)
	assert.Less(t, time.Since(start), DefaultSaveTimeout)
	assert.Equal(t, 1, s.Len())

	entries := logs.FilterMessage("failed to save tasks").All()
	require.Len(t, entries, 1)
	assert.Equal(t, context.DeadlineExceeded.Error(), entries[0].ContextMap()["error"])
}

func TestConcurrentSavesArriveInOrder(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(WithPersister(p))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(fmt.Sprintf("task %d", i), nil, "")
		}()
	}
	wg.Wait()

	require.Len(t, p.saves, n)
	for i, saved := range p.saves {
		assert.Len(t, saved, i+1, "save %d is stale", i)
	}
}

func TestLoad(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &fakePersister{snap: model.Snapshot{
		Tasks: []model.Task{
			{ID: "1", Text: "stored", CreatedAt: created, Priority: model.PriorityLow},
		},
		DarkMode: true,
	}}
	s := newTestStore(WithPersister(p))
	s.Load(context.Background())

	require.Equal(t, 1, s.Len())
	assert.True(t, s.View().DarkMode)
	got, _ := s.Get("1")
	assert.Equal(t, created, got.CreatedAt)
	assert.Empty(t, p.saves, "loading must not write back")
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("malformed")}
	s := newTestStore(WithPersister(p))
	s.Add("before", nil, "")

	s.Load(context.Background())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.View().DarkMode)
}

func TestReplaceDropsInvalid(t *testing.T) {
	p := &fakePersister{}
	s := newTestStore(WithPersister(p))
	s.Add("old", nil, "")

	n := s.Replace([]model.Task{
		{ID: "1", Text: "keep", Priority: "weird"},
		{ID: "1", Text: "duplicate"},
		{ID: "2", Text: "  "},
		{ID: "", Text: "no id"},
		{ID: "3", Text: "also keep", Priority: model.PriorityHigh},
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"keep", "also keep"}, texts(s.Tasks()))
	got, _ := s.Get("1")
	assert.Equal(t, model.PriorityMedium, got.Priority)
	assert.Len(t, p.saves, 2)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := newTestStore()
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task, _ := s.Add("a", &due, "")

	tasks := s.Tasks()
	tasks[0].Text = "mutated"
	*tasks[0].DueDate = due.AddDate(1, 0, 0)

	got, _ := s.Get(task.ID)
	assert.Equal(t, "a", got.Text)
	assert.Equal(t, 2024, got.DueDate.Year())
}
