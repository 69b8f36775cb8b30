package parser

// Parser splits the raw output of one test into a message and backtrace
type Parser interface {
	Parse(lines []string, dir string) Output
}

// Output is the parsed output of a test
type Output struct {
	Message   string
	Backtrace []string // Absolute "path:line" frames, innermost first
	Panicked  bool
}
