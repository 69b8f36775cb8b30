package ui

import (
	"time"

	"mt/internal/config"
	"mt/internal/domain"
	"mt/internal/logger"
	"mt/internal/palette"
	"mt/internal/storage"
)

// FailureRecorder writes the failing identities of a run to the failure
// memory when the run ends
type FailureRecorder struct {
	memory *storage.FailureMemory
	ids    []string
}

// NewFailureRecorder creates a FailureRecorder
func NewFailureRecorder(memory *storage.FailureMemory) *FailureRecorder {
	return &FailureRecorder{memory: memory}
}

func (f *FailureRecorder) Start() { f.ids = nil }

func (f *FailureRecorder) Record(res Result) {
	if res.Event.Outcome.Failing() {
		f.ids = append(f.ids, res.Event.Identity)
	}
}

func (f *FailureRecorder) Report() {
	if err := f.memory.Save(f.ids); err != nil {
		logger.Error("failed to record failures", "path", f.memory.Path(), "error", err)
	}
}

// ReportSaver stores the run report for the failures viewer
type ReportSaver struct {
	storage storage.Storage
	cfg     *config.Config
	now     func() time.Time

	started time.Time
	stats   Stats
	details []domain.ReportedResult
}

// NewReportSaver creates a ReportSaver
func NewReportSaver(s storage.Storage, cfg *config.Config) *ReportSaver {
	return &ReportSaver{storage: s, cfg: cfg, now: time.Now}
}

func (s *ReportSaver) Start() {
	s.started = s.now()
	s.stats = Stats{}
	s.details = nil
}

func (s *ReportSaver) Record(res Result) {
	s.stats.Add(res.Event)
	if res.Event.Outcome == domain.OutcomePass {
		return
	}
	s.details = append(s.details, domain.ReportedResult{
		Identity:    res.Event.Identity,
		Description: res.Record.Description,
		Outcome:     res.Event.Outcome,
		Location:    res.Record.Location,
		Message:     res.Event.Message,
		Backtrace:   FilterBacktrace(res.Event.Backtrace, s.cfg.ProjectPath),
		Command:     ReplayCommand(s.cfg.TestCommand, DefaultTestCommand(palette.Palette{}), res.Record),
	})
}

func (s *ReportSaver) Report() {
	s.Save()
}

// Save writes the report and returns it
func (s *ReportSaver) Save() *domain.RunReport {
	end := s.now()
	duration := end.Sub(s.started)
	report := &domain.RunReport{
		Meta: domain.RunReportMeta{
			Runs:            s.stats.Runs,
			Assertions:      s.stats.Assertions,
			Failures:        s.stats.Failures,
			Errors:          s.stats.Errors,
			Skips:           s.stats.Skips,
			Seed:            s.cfg.Options.Seed,
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Timestamp:       end.Format(time.RFC3339),
		},
		Details: s.details,
	}
	if err := s.storage.Save(report); err != nil {
		logger.Error("failed to save run report", "error", err)
	}
	return report
}
