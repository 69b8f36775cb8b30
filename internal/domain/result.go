package domain

import "time"

// Outcome is the result kind of one executed test
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFailure Outcome = "failure"
	OutcomeError   Outcome = "error"
	OutcomeSkip    Outcome = "skip"
)

// Code returns the single-character status code printed while running.
func (o Outcome) Code() string {
	switch o {
	case OutcomeFailure:
		return "F"
	case OutcomeError:
		return "E"
	case OutcomeSkip:
		return "S"
	default:
		return "."
	}
}

// Failing reports whether the outcome counts as a failing result.
func (o Outcome) Failing() bool {
	return o == OutcomeFailure || o == OutcomeError
}

// ResultEvent is one outcome notification emitted by the execution engine
type ResultEvent struct {
	Identity   string
	Package    string // Package directory the test ran in
	Outcome    Outcome
	Message    string
	Backtrace  []string // Absolute "path:line" frames, innermost first
	Elapsed    time.Duration
	Assertions int
}

// RunReportMeta contains metadata about a finished run
type RunReportMeta struct {
	Runs            int     `json:"runs"`
	Assertions      int     `json:"assertions"`
	Failures        int     `json:"failures"`
	Errors          int     `json:"errors"`
	Skips           int     `json:"skips"`
	Seed            int     `json:"seed"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// ReportedResult is a failing or skipped result kept in the run report
type ReportedResult struct {
	Identity    string   `json:"identity"`
	Description string   `json:"description"`
	Outcome     Outcome  `json:"outcome"`
	Location    Location `json:"location"`
	Message     string   `json:"message"`
	Backtrace   []string `json:"backtrace"`
	Command     string   `json:"command,omitempty"`
	Resolved    bool     `json:"resolved,omitempty"` // Toggled in the failures viewer
}

// RunReport is the complete output structure of the last run
type RunReport struct {
	Meta    RunReportMeta    `json:"meta"`
	Details []ReportedResult `json:"details"`
}
