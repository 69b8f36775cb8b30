package suite

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"mt/internal/domain"
	"mt/internal/filter"
	"mt/internal/integration"
	"mt/internal/naming"
	"mt/internal/options"
	"mt/internal/palette"
	"mt/internal/registry"
)

// RunSlowTestsEnv runs slow tests even without --slow
const RunSlowTestsEnv = "MT_RUN_SLOW_TESTS"

// Body is the body of a test, a setup or a teardown
type Body func(c *Context)

// Cleaner resets shared state before every test
type Cleaner interface {
	Clean(ctx context.Context) error
}

// Registry is where suites declare their tests unless WithRegistry is
// given.
var Registry = registry.New()

type test struct {
	method      string
	description string
	identity    string
	body        Body
	bodiless    bool
}

type let struct {
	fn func(c *Context) any
}

// Suite collects the tests of one top-level test function
type Suite struct {
	t        *testing.T
	name     string
	pkg      string
	registry *registry.Registry

	tests     []*test
	declared  map[string]bool
	setups    []Body
	teardowns []Body
	lets      map[string]let

	threshold    time.Duration
	hasThreshold bool

	opts     options.RunOptions
	managed  bool
	selector *filter.Selector
	palette  palette.Palette
	cleaner  Cleaner
	detect   bool
}

// Option configures a Suite
type Option func(*Suite)

// WithRegistry declares the suite's tests in r
func WithRegistry(r *registry.Registry) Option {
	return func(s *Suite) { s.registry = r }
}

// WithOptions runs the suite as if mt had passed opts
func WithOptions(opts options.RunOptions) Option {
	return func(s *Suite) {
		s.opts = opts
		s.managed = true
	}
}

// WithCleaner runs c before every test in place of the detected database
// cleaner
func WithCleaner(c Cleaner) Option {
	return func(s *Suite) {
		s.cleaner = c
		s.detect = false
	}
}

// New creates the suite of the top-level test t. Options passed by the mt
// runner are read from the environment.
func New(t *testing.T, opts ...Option) *Suite {
	t.Helper()

	s := &Suite{
		t:        t,
		name:     t.Name(),
		registry: Registry,
		lets:     make(map[string]let),
		declared: make(map[string]bool),
		detect:   true,
	}
	if wd, err := os.Getwd(); err == nil {
		s.pkg = wd
	}

	runOpts, managed, err := options.FromEnv()
	if err != nil {
		t.Fatalf("invalid %s: %v", options.ArgsEnv, err)
	}
	s.opts, s.managed = runOpts, managed

	for _, opt := range opts {
		opt(s)
	}

	// A rerun of the same test function (-count, -cpu) declares afresh
	s.registry.Delete(func(rec *domain.TestRecord) bool {
		return rec.Package == s.pkg && rec.Suite == s.name
	})

	if s.managed {
		s.selector, err = filter.NewSelector(s.opts.Name, s.opts.Exclude)
		if err != nil {
			t.Fatalf("invalid filter: %v", err)
		}
	}
	s.palette = palette.New(s.opts.NoColor)
	if s.detect {
		if c := integration.Shared().DatabaseCleaner; c != nil {
			s.cleaner = c
		}
	}
	return s
}

// Test declares a test described by description. Without a body the test
// fails as not implemented.
func (s *Suite) Test(description string, body ...Body) *Suite {
	method := naming.MethodName(description)
	if s.declared[method] {
		panic(configError(registry.ErrDuplicateTest, fmt.Sprintf("%s is already defined in %s", method, s.name)))
	}
	tc := &test{
		method:      method,
		description: description,
		identity:    naming.Identity(s.name, method),
	}
	if len(body) == 0 || body[0] == nil {
		tc.bodiless = true
	} else {
		tc.body = body[0]
	}

	rec := domain.TestRecord{
		Identity:      tc.identity,
		Suite:         s.name,
		Method:        method,
		Description:   description,
		Package:       s.pkg,
		SlowThreshold: s.threshold,
		HasThreshold:  s.hasThreshold,
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		rec.Location = domain.Location{File: s.relative(file), Line: line}
	}
	if _, err := s.registry.Declare(rec); err != nil {
		if errors.Is(err, registry.ErrDuplicateTest) {
			panic(configError(err, fmt.Sprintf("%s is already defined in %s", method, s.name)))
		}
		panic(configError(err, err.Error()))
	}

	s.declared[method] = true
	s.tests = append(s.tests, tc)
	return s
}

// Setup adds a hook run before every test. Hooks run in the order they
// were added.
func (s *Suite) Setup(fn Body) *Suite {
	s.setups = append(s.setups, fn)
	return s
}

// Teardown adds a hook run after every test, even a failed one. Hooks run
// in the order they were added.
func (s *Suite) Teardown(fn Body) *Suite {
	s.teardowns = append(s.teardowns, fn)
	return s
}

// Let defines a named value computed at most once per test and read with
// Context.Get.
func (s *Suite) Let(name string, fn func(c *Context) any) *Suite {
	prefix := fmt.Sprintf("Cannot define let(%s);", name)
	if strings.HasPrefix(name, "test") {
		panic(configError(nil, prefix+" method cannot begin with 'test'."))
	}
	if _, ok := s.lets[name]; ok {
		panic(configError(nil, fmt.Sprintf("%s method already defined by %s.", prefix, s.name)))
	}
	s.lets[name] = let{fn: fn}
	return s
}

// SlowThreshold sets the slow threshold of the tests declared after it.
func (s *Suite) SlowThreshold(d time.Duration) *Suite {
	s.threshold, s.hasThreshold = d, true
	return s
}

// Run runs the selected tests as subtests.
func (s *Suite) Run() {
	s.t.Helper()

	tests := append([]*test(nil), s.tests...)
	if s.managed {
		r := rand.New(rand.NewSource(int64(s.opts.Seed)))
		r.Shuffle(len(tests), func(i, j int) { tests[i], tests[j] = tests[j], tests[i] })
	}

	for _, tc := range tests {
		if s.selector != nil && s.selector.Active() && !s.selector.Selects(tc.method, tc.identity) {
			continue
		}
		s.t.Run(tc.method, func(t *testing.T) {
			s.runTest(t, tc)
		})
	}
}

func (s *Suite) runTest(t *testing.T, tc *test) {
	t.Helper()

	c := newContext(t, s)
	start := time.Now()
	defer func() {
		t.Helper()
		elapsed := time.Since(start)
		s.registry.SetElapsed(s.pkg, tc.identity, elapsed)
		if s.managed {
			t.Logf("%s%d", options.AssertionsMarker, c.assertions)
			t.Logf("%s%s", options.ElapsedMarker, elapsed)
		}
	}()

	// Teardowns run after failures too; FailNow unwinds through them.
	defer func() {
		t.Helper()
		for _, fn := range s.teardowns {
			s.call(c, fn)
		}
	}()

	if s.cleaner != nil {
		if err := s.cleaner.Clean(context.Background()); err != nil {
			t.Fatalf("database cleaner: %v", err)
		}
	}
	for _, fn := range s.setups {
		s.call(c, fn)
	}

	if tc.bodiless {
		c.Flunk("No implementation provided for " + tc.method)
		return
	}
	s.call(c, tc.body)
}

// call runs fn and reports a panic as an error of the running test
func (s *Suite) call(c *Context, fn Body) {
	c.t.Helper()

	var (
		recovered any
		frames    []string
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				recovered = r
				frames = panicFrames()
			}
		}()
		fn(c)
	}()

	if recovered == nil {
		return
	}
	msg := fmt.Sprintf("panic: %v", recovered)
	if len(frames) > 0 {
		msg += "\n" + strings.Join(frames, "\n")
	}
	c.t.Fatal(msg)
}

// panicFrames lists the source frames of a panicking goroutine, outside of
// the runtime, the testing package and this package.
func panicFrames() []string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(3, pcs)
	iter := runtime.CallersFrames(pcs[:n])

	var frames []string
	for {
		frame, more := iter.Next()
		if !internalFrame(frame.Function) {
			frames = append(frames, fmt.Sprintf("%s:%d", frame.File, frame.Line))
		}
		if !more {
			break
		}
	}
	return frames
}

func internalFrame(function string) bool {
	for _, prefix := range []string{"runtime.", "testing.", "mt/suite.(*Suite)", "mt/suite.(*Context)"} {
		if strings.HasPrefix(function, prefix) {
			return true
		}
	}
	return function == ""
}

func (s *Suite) relative(file string) string {
	if s.pkg == "" {
		return file
	}
	if rel, err := filepath.Rel(s.pkg, file); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return file
}
