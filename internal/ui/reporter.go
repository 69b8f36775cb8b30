package ui

import (
	"path/filepath"
	"strconv"
	"strings"

	"mt/internal/domain"
	"mt/internal/naming"
	"mt/internal/registry"
)

// Result is a result event paired with the record of the test it belongs to
type Result struct {
	Event  domain.ResultEvent
	Record *domain.TestRecord
}

// Reporter receives the lifecycle of a run
type Reporter interface {
	Start()
	Record(Result)
	Report()
}

// Stats aggregates the counts of a run
type Stats struct {
	Runs       int
	Assertions int
	Failures   int
	Errors     int
	Skips      int
}

// Add counts one result
func (s *Stats) Add(ev domain.ResultEvent) {
	s.Runs++
	s.Assertions += ev.Assertions
	switch ev.Outcome {
	case domain.OutcomeFailure:
		s.Failures++
	case domain.OutcomeError:
		s.Errors++
	case domain.OutcomeSkip:
		s.Skips++
	}
}

// Failing reports whether any result failed or errored
func (s Stats) Failing() bool {
	return s.Failures+s.Errors > 0
}

// Summary renders the pluralized counts
func (s Stats) Summary() string {
	return strings.Join([]string{
		Pluralize("run", s.Runs),
		Pluralize("assertion", s.Assertions),
		Pluralize("failure", s.Failures),
		Pluralize("error", s.Errors),
		Pluralize("skip", s.Skips),
	}, ", ")
}

// Composite fans a run out to several reporters. It attaches every event to
// its registry record, declaring an ad-hoc record for tests the loader
// never saw, and stores the elapsed time on the record.
type Composite struct {
	registry  *registry.Registry
	root      string
	reporters []Reporter
}

// NewComposite creates a Composite. root is the project root used to make
// ad-hoc locations relative.
func NewComposite(reg *registry.Registry, root string, reporters ...Reporter) *Composite {
	return &Composite{registry: reg, root: root, reporters: reporters}
}

// Add appends a reporter
func (c *Composite) Add(r Reporter) {
	c.reporters = append(c.reporters, r)
}

// Start starts every reporter
func (c *Composite) Start() {
	for _, r := range c.reporters {
		r.Start()
	}
}

// Record records ev with every reporter
func (c *Composite) Record(ev domain.ResultEvent) {
	rec := c.registry.Ensure(ev.Package, ev.Identity, func() domain.TestRecord {
		return adHocRecord(ev, c.root)
	})
	c.registry.SetElapsed(ev.Package, ev.Identity, ev.Elapsed)

	result := Result{Event: ev, Record: rec}
	for _, r := range c.reporters {
		r.Record(result)
	}
}

// Report finishes every reporter
func (c *Composite) Report() {
	for _, r := range c.reporters {
		r.Report()
	}
}

func adHocRecord(ev domain.ResultEvent, root string) domain.TestRecord {
	suite, method := naming.SplitIdentity(ev.Identity)
	description := naming.Describe(suite)
	if method != "" {
		description = strings.ReplaceAll(strings.TrimPrefix(method, naming.MethodPrefix), "_", " ")
	}

	rec := domain.TestRecord{
		Identity:    ev.Identity,
		Suite:       suite,
		Method:      method,
		Description: description,
		Package:     ev.Package,
	}
	if frames := FilterBacktrace(ev.Backtrace, root); len(frames) > 0 {
		rec.Location = parseLocation(frames[0])
	}
	return rec
}

// FilterBacktrace keeps the frames under root and makes them relative.
func FilterBacktrace(frames []string, root string) []string {
	prefix := strings.TrimSuffix(root, string(filepath.Separator)) + string(filepath.Separator)
	var kept []string
	for _, frame := range frames {
		if strings.HasPrefix(frame, prefix) {
			kept = append(kept, strings.TrimPrefix(frame, prefix))
		}
	}
	return kept
}

func parseLocation(frame string) domain.Location {
	i := strings.LastIndex(frame, ":")
	if i < 0 {
		return domain.Location{File: frame}
	}
	line, err := strconv.Atoi(frame[i+1:])
	if err != nil {
		return domain.Location{File: frame}
	}
	return domain.Location{File: frame[:i], Line: line}
}
