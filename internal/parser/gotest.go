package parser

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// "    user_test.go:14: expected: truthy value"
	logLine = regexp.MustCompile(`^ {4}([^\s:]+\.go):(\d+): ?(.*)$`)
	// "	/home/app/models/user_test.go:14 +0x1d"
	frameLine = regexp.MustCompile(`^\s+(/\S+\.go):(\d+)(?:\s+\+0x[0-9a-f]+)?\s*$`)
	// "goroutine 7 [running]:"
	goroutineLine = regexp.MustCompile(`^goroutine \d+ \[`)
)

// GoTestParser parses output written by the testing package
type GoTestParser struct{}

// NewGoTestParser creates a new GoTestParser
func NewGoTestParser() *GoTestParser {
	return &GoTestParser{}
}

// Parse turns test output into a message and frames. Log lines contribute
// their text and their call site; absolute source frames (panic traces and
// frames reported by the suite library) go to the backtrace; anything else
// is kept as message text.
func (p *GoTestParser) Parse(lines []string, dir string) Output {
	var (
		out       Output
		message   []string
		inLog     bool
		inTrace   bool
		traceSeen = make(map[string]bool)
		panicSite string
	)

	addFrame := func(frame string) {
		if !traceSeen[frame] {
			traceSeen[frame] = true
			out.Backtrace = append(out.Backtrace, frame)
		}
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")

		if m := logLine.FindStringSubmatch(line); m != nil {
			inLog, inTrace = true, false
			file := m[1]
			if !filepath.IsAbs(file) {
				file = filepath.Join(dir, file)
			}
			message = append(message, m[3])
			// A recovered panic lists its own frames; they come first.
			if strings.HasPrefix(m[3], "panic: ") {
				out.Panicked = true
				panicSite = file + ":" + m[2]
				continue
			}
			addFrame(file + ":" + m[2])
			continue
		}

		if m := frameLine.FindStringSubmatch(line); m != nil {
			addFrame(m[1] + ":" + m[2])
			continue
		}

		if goroutineLine.MatchString(line) {
			inTrace, inLog = true, false
			continue
		}
		if inTrace {
			// function lines of a goroutine dump
			continue
		}

		if strings.HasPrefix(line, "panic: ") {
			out.Panicked = true
			inLog = false
			message = append(message, line)
			continue
		}

		if inLog && strings.HasPrefix(line, "        ") {
			message = append(message, line[8:])
			continue
		}

		inLog = false
		message = append(message, strings.TrimSpace(line))
	}

	if panicSite != "" {
		addFrame(panicSite)
	}
	out.Message = strings.TrimSpace(strings.Join(trimBlank(message), "\n"))
	return out
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
