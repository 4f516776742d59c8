package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dori/checkmark/internal/model"
	"github.com/dori/checkmark/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CHECKMARK_DATA_DIR", dir)
	t.Setenv("CHECKMARK_BACKEND", "json")
	t.Setenv("CHECKMARK_NOTIFY", "false")
	t.Setenv("CHECKMARK_LOG_LEVEL", "")
	t.Setenv("CHECKMARK_THEME", "")
	return dir
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func storedTasks(t *testing.T, dir string) []model.Task {
	t.Helper()
	snap, err := snapshot.NewFile(filepath.Join(dir, "todos.json")).LoadState(context.Background())
	require.NoError(t, err)
	return snap.Tasks
}

func TestAddAndList(t *testing.T) {
	dir := setupEnv(t)

	out, _, err := runCmd(t, "add", "Buy", "milk", "@home", "!high")
	require.NoError(t, err)
	assert.Contains(t, out, "Created: Buy milk")
	assert.Contains(t, out, "Priority: high")
	assert.Contains(t, out, "Category: home")

	_, _, err = runCmd(t, "add", "Walk dog")
	require.NoError(t, err)

	tasks := storedTasks(t, dir)
	require.Len(t, tasks, 2)

	out, _, err = runCmd(t, "list", "--sort", "priority")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Buy milk")), bytes.Index([]byte(out), []byte("Walk dog")))
	assert.Contains(t, out, "2 total, 0 done, 2 pending (0%)")

	out, _, err = runCmd(t, "list", "--search", "DOG")
	require.NoError(t, err)
	assert.Contains(t, out, "Walk dog")
	assert.NotContains(t, out, "Buy milk")
}

func TestAddRejectsEmpty(t *testing.T) {
	setupEnv(t)

	_, stderr, err := runCmd(t, "add")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "Usage: checkmark add")

	_, _, err = runCmd(t, "add", "!high")
	assert.Error(t, err)
}

func TestDoneEditRemoveByPrefix(t *testing.T) {
	dir := setupEnv(t)

	_, _, err := runCmd(t, "add", "Write report due:2030-05-01")
	require.NoError(t, err)
	task := storedTasks(t, dir)[0]
	prefix := task.ID[:6]

	out, _, err := runCmd(t, "done", prefix)
	require.NoError(t, err)
	assert.Contains(t, out, "Completed: Write report")
	assert.True(t, storedTasks(t, dir)[0].Completed)

	out, _, err = runCmd(t, "done", prefix)
	require.NoError(t, err)
	assert.Contains(t, out, "Reopened: Write report")

	_, _, err = runCmd(t, "edit", prefix, "Write", "final", "report", "!low")
	require.NoError(t, err)
	edited := storedTasks(t, dir)[0]
	assert.Equal(t, "Write final report", edited.Text)
	assert.Equal(t, model.PriorityLow, edited.Priority)
	require.NotNil(t, edited.DueDate, "due date kept when not given")
	assert.Equal(t, 2030, edited.DueDate.Year())
	assert.True(t, task.CreatedAt.Equal(edited.CreatedAt))

	_, _, err = runCmd(t, "rm", "zzz")
	assert.Error(t, err)

	out, _, err = runCmd(t, "rm", prefix)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted: Write final report")
	assert.Empty(t, storedTasks(t, dir))
}

func TestEditKeepsCategoryAndLiteralText(t *testing.T) {
	dir := setupEnv(t)

	_, _, err := runCmd(t, "add", "report @work")
	require.NoError(t, err)
	task := storedTasks(t, dir)[0]

	_, _, err = runCmd(t, "edit", task.ID, "report", "@home", "due:none")
	require.NoError(t, err)

	edited := storedTasks(t, dir)[0]
	assert.Equal(t, "report @home", edited.Text)
	assert.Equal(t, "work", edited.Category)
	assert.Nil(t, edited.DueDate)
}

func TestExportImport(t *testing.T) {
	dir := setupEnv(t)

	_, _, err := runCmd(t, "add", "One")
	require.NoError(t, err)
	_, _, err = runCmd(t, "add", "Two")
	require.NoError(t, err)

	exported, _, err := runCmd(t, "export")
	require.NoError(t, err)
	assert.Contains(t, exported, `"todos"`)

	file := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(file, []byte(exported), 0644))

	// Import into a fresh data directory
	other := t.TempDir()
	out, _, err := runCmd(t, "import", "--data-dir", other, file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 tasks")

	assert.Equal(t, storedTasks(t, dir), storedTasks(t, other))
}

func TestImportMalformed(t *testing.T) {
	setupEnv(t)

	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0644))

	_, _, err := runCmd(t, "import", file)
	assert.ErrorIs(t, err, snapshot.ErrMalformed)
}

func TestUnknownCommand(t *testing.T) {
	setupEnv(t)

	_, stderr, err := runCmd(t, "frobnicate")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, `Unknown command "frobnicate"`)
}

func TestVersion(t *testing.T) {
	out, _, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "checkmark v"+version+"\n", out)
}

func TestListRejectsUnknownFilter(t *testing.T) {
	setupEnv(t)

	_, _, err := runCmd(t, "list", "--filter", "someday")
	assert.Error(t, err)
}
