package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mt/internal/domain"
)

// Save writes the report to the configured JSON file.
func (s *JSONStorage) Save(report *domain.RunReport) error {
	return writeJSON(s.cfg.GetReportPath(), report)
}

// Load reads the last report from the configured JSON file.
func (s *JSONStorage) Load() (*domain.RunReport, error) {
	data, err := os.ReadFile(s.cfg.GetReportPath())
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &report, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
