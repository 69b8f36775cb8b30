package storage

import (
	"encoding/json"
	"os"

	"mt/internal/logger"
)

// FailureMemory is the list of identities that failed in the last recorded
// run, kept as a JSON array.
type FailureMemory struct {
	path string
}

// NewFailureMemory returns a FailureMemory stored at path.
func NewFailureMemory(path string) *FailureMemory {
	return &FailureMemory{path: path}
}

// Path returns the file backing the memory.
func (m *FailureMemory) Path() string {
	return m.path
}

// Load returns the remembered identities. A missing or malformed file is
// an empty memory.
func (m *FailureMemory) Load() []string {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		logger.Warn("ignoring malformed failure memory", "path", m.path, "error", err)
		return nil
	}
	return ids
}

// Save replaces the remembered identities.
func (m *FailureMemory) Save(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return writeJSON(m.path, ids)
}
