// Package snapshot reads and writes the JSON form of the task collection:
//
//	{"todos": [{"id": "...", "text": "...", "createdAt": "2024-01-02T03:04:05Z", ...}], "darkMode": false}
//
// Dates are RFC 3339 strings. There is no schema version.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dori/checkmark/internal/model"
)

// ErrMalformed wraps every validation failure from Decode
var ErrMalformed = errors.New("malformed snapshot")

// Encode writes snap as indented JSON
func Encode(w io.Writer, snap model.Snapshot) error {
	if snap.Tasks == nil {
		snap.Tasks = []model.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Decode reads and validates a snapshot. Empty input decodes to an empty
// snapshot.
func Decode(r io.Reader) (model.Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Snapshot{}, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return model.Snapshot{Tasks: []model.Task{}}, nil
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if snap.Tasks == nil {
		snap.Tasks = []model.Task{}
	}
	if err := Validate(snap.Tasks); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// Validate checks the store invariants on a decoded collection
func Validate(tasks []model.Task) error {
	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		switch {
		case t.ID == "":
			return fmt.Errorf("%w: task %d has no id", ErrMalformed, i)
		case seen[t.ID]:
			return fmt.Errorf("%w: duplicate id %s", ErrMalformed, t.ID)
		case strings.TrimSpace(t.Text) == "":
			return fmt.Errorf("%w: task %s has empty text", ErrMalformed, t.ID)
		case !t.Priority.Valid():
			return fmt.Errorf("%w: task %s has unknown priority %q", ErrMalformed, t.ID, t.Priority)
		case t.CreatedAt.IsZero():
			return fmt.Errorf("%w: task %s has no createdAt", ErrMalformed, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}
