package storage

import (
	"mt/internal/config"
	"mt/internal/domain"
)

// Storage persists and loads the report of the last run (e.g. for the
// failures viewer).
type Storage interface {
	Save(report *domain.RunReport) error
	Load() (*domain.RunReport, error)
}

// JSONStorage stores the report in a JSON file under the configured report path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's report path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
