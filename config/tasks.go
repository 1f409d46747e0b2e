package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// TaskConfigEntry is one declared task in the tasks file
type TaskConfigEntry struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// TasksFile is the parsed tasks file. Entries are kept raw so malformed
// items can be skipped individually during resolution instead of failing
// the whole file.
type TasksFile struct {
	Entries []json.RawMessage
}

// LoadTasksFile reads and parses the tasks file at path.
// A missing file, invalid JSON, or a non-list "tasks" value is a fatal
// configuration error; the caller must not run any task after it.
func LoadTasksFile(path string) (*TasksFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("missing config file %s: %w", path, err)
	}

	var doc struct {
		Tasks json.RawMessage `json:"tasks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	if len(doc.Tasks) == 0 {
		// Absent "tasks" key behaves as an empty list
		return &TasksFile{}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(doc.Tasks, &entries); err != nil {
		return nil, fmt.Errorf("'tasks' must be a list in %s: %w", path, err)
	}

	return &TasksFile{Entries: entries}, nil
}
