package ui

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt/internal/config"
	"mt/internal/domain"
	"mt/internal/options"
	"mt/internal/registry"
	"mt/internal/storage"
)

type memoryStorage struct {
	report *domain.RunReport
}

func (m *memoryStorage) Save(report *domain.RunReport) error {
	m.report = report
	return nil
}

func (m *memoryStorage) Load() (*domain.RunReport, error) {
	return m.report, nil
}

func TestFailureRecorder(t *testing.T) {
	memory := storage.NewFailureMemory(filepath.Join(t.TempDir(), ".minitestfailures"))
	reg := registry.New()
	c := NewComposite(reg, "/app", NewFailureRecorder(memory))

	c.Start()
	c.Record(passEvent)
	c.Record(failEvent)
	c.Record(domain.ResultEvent{Identity: "TestOther", Package: "/app/other", Outcome: domain.OutcomeError})
	c.Report()
	assert.Equal(t, []string{"TestUser#test_it_fails", "TestOther"}, memory.Load())

	c.Start()
	c.Record(passEvent)
	c.Report()
	assert.Empty(t, memory.Load())
}

func TestReportSaver(t *testing.T) {
	cfg := config.New()
	cfg.ProjectPath = "/app"
	cfg.Options = options.RunOptions{Seed: 42}

	st := &memoryStorage{}
	saver := NewReportSaver(st, cfg)
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{times: []time.Time{t0, t0.Add(1500 * time.Millisecond)}}
	saver.now = clock.now

	reg := registry.New()
	_, err := reg.Declare(domain.TestRecord{
		Identity: "TestUser#test_it_fails", Suite: "TestUser", Method: "test_it_fails",
		Description: "it fails", Package: "/app/models",
		Location: domain.Location{File: "models/user_test.go", Line: 18},
	})
	require.NoError(t, err)

	c := NewComposite(reg, "/app", saver)
	c.Start()
	c.Record(passEvent)
	c.Record(failEvent)
	c.Report()

	require.NotNil(t, st.report)
	meta := st.report.Meta
	assert.Equal(t, 2, meta.Runs)
	assert.Equal(t, 2, meta.Assertions)
	assert.Equal(t, 1, meta.Failures)
	assert.Equal(t, 42, meta.Seed)
	assert.Equal(t, 1.5, meta.DurationSeconds)
	assert.Equal(t, "2024-01-01T12:00:01Z", meta.Timestamp)

	require.Len(t, st.report.Details, 1)
	detail := st.report.Details[0]
	assert.Equal(t, "it fails", detail.Description)
	assert.Equal(t, domain.OutcomeFailure, detail.Outcome)
	assert.Equal(t, []string{"models/user_test.go:18"}, detail.Backtrace)
	assert.Equal(t, "mt models/user_test.go:18 # it fails", detail.Command)
}
