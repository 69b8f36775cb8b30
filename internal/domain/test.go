package domain

import "time"

// TestFile represents a resolved test file to be loaded
type TestFile struct {
	Path    string // Absolute path to the test file
	RelPath string // Path relative to the project root
	Dir     string // Absolute package directory
}

// Declaration is a test declaration found while loading a test file
type Declaration struct {
	Suite         string        // Enclosing top-level test function
	Method        string        // Empty for the top-level function itself
	Description   string        // Description as written, or derived from the name
	File          string        // Absolute path of the declaring file
	Line          int           // 1-based line of the declaration
	SlowThreshold time.Duration // Suite-level threshold, when declared
	HasThreshold  bool
}
