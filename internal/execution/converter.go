package execution

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"mt/internal/domain"
	"mt/internal/naming"
	"mt/internal/options"
	"mt/internal/parser"
)

// test2json actions
const (
	ActionStart       = "start"
	ActionRun         = "run"
	ActionPause       = "pause"
	ActionCont        = "cont"
	ActionOutput      = "output"
	ActionPass        = "pass"
	ActionFail        = "fail"
	ActionSkip        = "skip"
	ActionBuildOutput = "build-output"
	ActionBuildFail   = "build-fail"
)

// TestEvent is one line of `go test -json` output
type TestEvent struct {
	Time       time.Time
	Action     string
	Package    string
	ImportPath string
	Test       string
	Output     string
	Elapsed    float64 // Seconds
}

var (
	framingLine    = regexp.MustCompile(`^\s*(?:=== (?:RUN|PAUSE|CONT|NAME)|--- (?:PASS|FAIL|SKIP):)`)
	assertionsLine = regexp.MustCompile(`^\s+\S+\.go:\d+: ` + regexp.QuoteMeta(options.AssertionsMarker) + `(\d+)\s*$`)
	elapsedLine    = regexp.MustCompile(`^\s+\S+\.go:\d+: ` + regexp.QuoteMeta(options.ElapsedMarker) + `(\S+)\s*$`)
)

type testState struct {
	output      []string
	children    bool
	childFailed bool
	assertions  int
	elapsed     time.Duration
	hasElapsed  bool
}

// Converter turns the test2json events of one package into result events
type Converter struct {
	dir    string
	parser parser.Parser
	handle Handler

	tests       map[string]*testState
	pkgOutput   []string
	buildOutput []string
	failedTests int
	emitted     int
	pkgFailed   bool
	importPath  string
}

// NewConverter creates a converter for the package in dir
func NewConverter(dir string, p parser.Parser, handle Handler) *Converter {
	return &Converter{dir: dir, parser: p, handle: handle, tests: make(map[string]*testState)}
}

func (c *Converter) state(name string) *testState {
	st, ok := c.tests[name]
	if !ok {
		st = &testState{}
		c.tests[name] = st
	}
	return st
}

// Handle processes one event
func (c *Converter) Handle(ev TestEvent) {
	if ev.Package != "" {
		c.importPath = ev.Package
	}

	switch ev.Action {
	case ActionBuildOutput:
		c.buildOutput = append(c.buildOutput, ev.Output)
		return
	case ActionBuildFail:
		c.pkgFailed = true
		return
	}

	if ev.Test == "" {
		switch ev.Action {
		case ActionOutput:
			c.pkgOutput = append(c.pkgOutput, ev.Output)
		case ActionFail:
			c.pkgFailed = true
		}
		return
	}

	switch ev.Action {
	case ActionRun:
		c.state(ev.Test)
		if i := strings.LastIndex(ev.Test, "/"); i > 0 {
			c.state(ev.Test[:i]).children = true
		}
	case ActionOutput:
		c.output(ev)
	case ActionPass, ActionFail, ActionSkip:
		c.finish(ev)
	}
}

func (c *Converter) output(ev TestEvent) {
	st := c.state(ev.Test)
	if framingLine.MatchString(ev.Output) {
		return
	}
	if m := assertionsLine.FindStringSubmatch(ev.Output); m != nil {
		n, _ := strconv.Atoi(m[1])
		st.assertions += n
		return
	}
	if m := elapsedLine.FindStringSubmatch(ev.Output); m != nil {
		if d, err := time.ParseDuration(m[1]); err == nil {
			st.elapsed, st.hasElapsed = d, true
		}
		return
	}
	st.output = append(st.output, ev.Output)
}

func (c *Converter) finish(ev TestEvent) {
	st := c.state(ev.Test)
	failed := ev.Action == ActionFail

	if failed {
		c.failedTests++
		if i := strings.LastIndex(ev.Test, "/"); i > 0 {
			c.state(ev.Test[:i]).childFailed = true
		}
	}

	// Containers report through their children
	if st.children && !(failed && !st.childFailed) {
		return
	}

	out := c.parser.Parse(st.output, c.dir)
	result := domain.ResultEvent{
		Identity:   naming.FromTestName(ev.Test),
		Package:    c.dir,
		Message:    out.Message,
		Backtrace:  out.Backtrace,
		Elapsed:    seconds(ev.Elapsed),
		Assertions: st.assertions,
	}
	if st.hasElapsed {
		result.Elapsed = st.elapsed
	}
	switch {
	case failed && out.Panicked:
		result.Outcome = domain.OutcomeError
	case failed:
		result.Outcome = domain.OutcomeFailure
	case ev.Action == ActionSkip:
		result.Outcome = domain.OutcomeSkip
	default:
		result.Outcome = domain.OutcomePass
	}

	c.emitted++
	c.handle(result)
}

// Close reports a package that failed without any failing test, such as a
// build failure or a panic outside of tests, as one error result. stderr
// holds whatever the engine wrote outside of the event stream.
func (c *Converter) Close(stderr string) {
	if !c.pkgFailed || c.failedTests > 0 {
		return
	}

	var lines []string
	lines = append(lines, c.buildOutput...)
	if stderr != "" {
		lines = append(lines, strings.SplitAfter(stderr, "\n")...)
	}
	lines = append(lines, c.pkgOutput...)

	out := c.parser.Parse(lines, c.dir)
	identity := c.importPath
	if identity == "" {
		identity = c.dir
	}
	c.emitted++
	c.handle(domain.ResultEvent{
		Identity:  identity,
		Package:   c.dir,
		Outcome:   domain.OutcomeError,
		Message:   out.Message,
		Backtrace: out.Backtrace,
	})
}

// Emitted returns the number of result events produced so far
func (c *Converter) Emitted() int {
	return c.emitted
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
