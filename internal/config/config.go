package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"mt/internal/options"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath    string
	DefaultEntries []string
	TestFileSuffix string
	PathsToIgnore  []string

	// State files
	IgnoreFile   string
	FailuresFile string
	ReportDir    string
	ReportFile   string

	// Engine
	GoBinary string

	// Reporting
	TestCommand          string
	DefaultSlowThreshold time.Duration
	SlowListLimit        int
	ShowSlowOnFailure    bool
	RecordFailures       bool
	NoColorEnv           bool

	// Options holds the parsed run flags
	Options options.RunOptions
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:          DefaultProjectPath,
		TestFileSuffix:       DefaultTestFileSuffix,
		IgnoreFile:           DefaultIgnoreFile,
		FailuresFile:         DefaultFailuresFile,
		ReportDir:            DefaultReportDir,
		ReportFile:           DefaultReportFile,
		GoBinary:             DefaultGoBinary,
		DefaultSlowThreshold: DefaultSlowThreshold,
		SlowListLimit:        DefaultSlowListLimit,
	}
	cfg.DefaultEntries = append([]string(nil), DefaultEntries...)
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	return cfg
}

// Load creates a config rooted at projectPath, loads its .env file and
// applies the environment.
func Load(projectPath string) (*Config, error) {
	cfg := New()

	abs, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}
	cfg.ProjectPath = abs

	// Variables already set in the environment win over .env
	if err := godotenv.Load(filepath.Join(abs, DefaultEnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overlays environment variables on the config
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvGoBinary); v != "" {
		c.GoBinary = v
	}
	c.TestCommand = os.Getenv(EnvTestCommand)
	c.RecordFailures = os.Getenv(EnvRecordFailures) != ""
	c.ShowSlowOnFailure = os.Getenv(EnvShowSlowOnFailure) != ""
	c.NoColorEnv = os.Getenv(EnvNoColor) != ""
}

// Path resolves name against the project path
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ProjectPath, name)
}

// GetIgnorePath returns the ignore list path
func (c *Config) GetIgnorePath() string {
	return c.Path(c.IgnoreFile)
}

// GetFailuresPath returns the failure memory path
func (c *Config) GetFailuresPath() string {
	return c.Path(c.FailuresFile)
}

// GetReportPath returns the path of the last-run report, so run and
// failures always read and write the same file regardless of cwd.
func (c *Config) GetReportPath() string {
	return filepath.Join(c.Path(c.ReportDir), c.ReportFile)
}

// SlowThreshold returns the run-wide slow threshold: the flag when given,
// the default otherwise.
func (c *Config) SlowThreshold() time.Duration {
	if c.Options.HasSlowThreshold {
		return time.Duration(c.Options.SlowThreshold * float64(time.Second))
	}
	return c.DefaultSlowThreshold
}
