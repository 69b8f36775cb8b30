package domain

import (
	"fmt"
	"time"
)

// Location is a file/line pair. File is relative to the project root when
// the file lives under it.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// IsZero reports whether the location is unknown.
func (l Location) IsZero() bool {
	return l.File == ""
}

// String renders the location as "file:line".
func (l Location) String() string {
	if l.IsZero() {
		return ""
	}
	if l.Line <= 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// TestRecord is the metadata of one declared test
type TestRecord struct {
	Identity    string   // Suite#Method, or Suite for a top-level function
	Suite       string   // Top-level test function
	Method      string   // Method name, empty for top-level functions
	Description string   // Human description
	Location    Location // Declaration site
	Package     string   // Package directory

	Elapsed       time.Duration
	HasElapsed    bool
	SlowThreshold time.Duration
	HasThreshold  bool
}

// Name returns the method name, falling back to the suite for top-level
// functions.
func (r *TestRecord) Name() string {
	if r.Method == "" {
		return r.Suite
	}
	return r.Method
}
