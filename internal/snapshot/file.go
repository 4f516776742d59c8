package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dori/checkmark/internal/model"
)

// File persists snapshots to a single JSON file
type File struct {
	path string

	mu   sync.Mutex
	last model.Snapshot
}

// NewFile returns a File backed by path. The file is created on first save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path
func (f *File) Path() string {
	return f.path
}

// LoadState reads the file; a missing file is an empty snapshot
func (f *File) LoadState(ctx context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.last = model.Snapshot{Tasks: []model.Task{}}
		return f.last, nil
	}
	if err != nil {
		return model.Snapshot{}, err
	}
	defer file.Close()

	snap, err := Decode(file)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to load %s: %w", f.path, err)
	}
	f.last = snap
	return snap, nil
}

// SaveTasks rewrites the file with tasks and the last known theme flag
func (f *File) SaveTasks(ctx context.Context, tasks []model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := model.Snapshot{Tasks: tasks, DarkMode: f.last.DarkMode}
	if err := f.write(next); err != nil {
		return err
	}
	f.last = next
	return nil
}

// SaveDarkMode rewrites the file with the new theme flag
func (f *File) SaveDarkMode(ctx context.Context, dark bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := model.Snapshot{Tasks: f.last.Tasks, DarkMode: dark}
	if err := f.write(next); err != nil {
		return err
	}
	f.last = next
	return nil
}

// write replaces the file atomically via a temp file in the same directory
func (f *File) write(snap model.Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
