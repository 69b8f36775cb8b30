package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestFileSuffix marks Go test files
	DefaultTestFileSuffix = "_test.go"
	// DefaultIgnoreFile lists path fragments excluded from runs
	DefaultIgnoreFile = ".minitestignore"
	// DefaultFailuresFile holds the identities that failed in the last recorded run
	DefaultFailuresFile = ".minitestfailures"
	// DefaultReportDir is the directory of the last-run report
	DefaultReportDir = ".minitest"
	// DefaultReportFile is the last-run report file name
	DefaultReportFile = "results.json"
	// DefaultSlowThreshold is used when neither the test nor the flags set one
	DefaultSlowThreshold = 100 * time.Millisecond
	// DefaultSlowListLimit caps the slow test list
	DefaultSlowListLimit = 10
	// DefaultGoBinary runs the engine
	DefaultGoBinary = "go"
	// DefaultEnvFile is loaded from the project path when present
	DefaultEnvFile = ".env"
)

// DefaultEntries are used when no entries are given
var DefaultEntries = []string{"test", "spec"}

// DefaultPathsToIgnore are directory names never descended into
var DefaultPathsToIgnore = []string{
	"vendor",
	"testdata",
	"node_modules",
}

// Environment variables read by Load
const (
	EnvGoBinary          = "MT_GO"
	EnvTestCommand       = "MT_TEST_COMMAND"
	EnvRecordFailures    = "MT_RECORD_FAILURES"
	EnvShowSlowOnFailure = "MT_SHOW_SLOW_ON_FAILURE"
	EnvNoColor           = "NO_COLOR"
)
