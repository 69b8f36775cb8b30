package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"mt/internal/config"
	"mt/internal/domain"
	"mt/internal/palette"
	"mt/internal/registry"
)

// terminal is replaced in tests
var terminal = IsTerminal

// ColorEnabled reports whether w is a terminal and color was not disabled
func ColorEnabled(w io.Writer, cfg *config.Config) bool {
	if cfg.Options.NoColor || cfg.NoColorEnv {
		return false
	}
	return terminal(w)
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// DefaultTestCommand is the replay template used without MT_TEST_COMMAND
func DefaultTestCommand(p palette.Palette) string {
	return "mt %{location}:%{line} " + p.Blue("# %{description}")
}

// TerminalReporter prints status codes while running and the failure,
// skip, statistics and slow test blocks at the end
type TerminalReporter struct {
	out      io.Writer
	cfg      *config.Config
	registry *registry.Registry
	palette  palette.Palette
	now      func() time.Time

	started time.Time
	stats   Stats
	failing []Result
	skipped []Result
}

// NewTerminalReporter creates a TerminalReporter writing to out
func NewTerminalReporter(out io.Writer, cfg *config.Config, reg *registry.Registry) *TerminalReporter {
	return &TerminalReporter{
		out:      out,
		cfg:      cfg,
		registry: reg,
		palette:  palette.Palette{Enabled: ColorEnabled(out, cfg)},
		now:      time.Now,
	}
}

// Start prints the run options banner
func (r *TerminalReporter) Start() {
	r.started = r.now()
	fmt.Fprintf(r.out, "Run options: %s\n", r.cfg.Options.Banner())
}

// Record prints the status code of a result
func (r *TerminalReporter) Record(res Result) {
	r.stats.Add(res.Event)
	switch {
	case res.Event.Outcome.Failing():
		r.failing = append(r.failing, res)
	case res.Event.Outcome == domain.OutcomeSkip:
		r.skipped = append(r.skipped, res)
	}

	code := res.Event.Outcome.Code()
	switch res.Event.Outcome {
	case domain.OutcomePass:
		code = r.palette.Green(code)
	case domain.OutcomeSkip:
		code = r.palette.Yellow(code)
	default:
		code = r.palette.Red(code)
	}
	fmt.Fprint(r.out, code)
}

// Report prints the end of run blocks
func (r *TerminalReporter) Report() {
	elapsed := r.now().Sub(r.started)

	for i, res := range r.failing {
		r.printFailing(res, i+1)
	}
	for i, res := range r.skipped {
		r.printSkipped(res, len(r.failing)+i+1)
	}

	fmt.Fprint(r.out, "\n\n")
	fmt.Fprintln(r.out, Statistics(elapsed, r.stats.Runs, r.stats.Assertions))

	summary := r.stats.Summary()
	switch {
	case r.stats.Failing():
		summary = r.palette.Red(summary)
	case len(r.skipped) > 0:
		summary = r.palette.Yellow(summary)
	default:
		summary = r.palette.Green(summary)
	}
	fmt.Fprintln(r.out, summary)

	if r.stats.Failing() {
		fmt.Fprint(r.out, "\nFailed Tests:\n")
		for _, res := range r.failing {
			if cmd := r.Command(res.Record); cmd != "" {
				fmt.Fprint(r.out, "\n"+r.palette.Red(cmd))
			}
		}
		fmt.Fprint(r.out, "\n\n")
		if !r.cfg.ShowSlowOnFailure {
			return
		}
	}
	r.printSlow()
}

// Stats returns the counts recorded so far
func (r *TerminalReporter) Stats() Stats {
	return r.stats
}

func (r *TerminalReporter) printFailing(res Result, index int) {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(r.palette.Paint(fmt.Sprintf("%4d) %s", index, res.Record.Description), color.Reset))
	b.WriteString("\n" + r.palette.Red(indent(res.Event.Message)))

	frames := FilterBacktrace(res.Event.Backtrace, r.cfg.ProjectPath)
	var trace []string
	for _, frame := range frames {
		trace = append(trace, "      # "+frame)
	}
	b.WriteString("\n" + r.palette.Blue(strings.Join(trace, "\n")))

	fmt.Fprint(r.out, b.String())
}

func (r *TerminalReporter) printSkipped(res Result, index int) {
	location := res.Record.Location.String()
	if frames := FilterBacktrace(res.Event.Backtrace, r.cfg.ProjectPath); len(frames) > 0 {
		location = frames[0]
	}

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(r.palette.Yellow(fmt.Sprintf("%4d) %s [SKIPPED]", index, res.Record.Description)))
	b.WriteString("\n" + indent(r.palette.Yellow("Reason: "+res.Event.Message)))
	b.WriteString("\n" + indent(r.palette.Yellow(location)))

	fmt.Fprint(r.out, b.String())
}

// Command renders the replay command of a record, or "" when the record has
// no location
func (r *TerminalReporter) Command(rec *domain.TestRecord) string {
	return ReplayCommand(r.cfg.TestCommand, DefaultTestCommand(r.palette), rec)
}

// ReplayCommand fills a replay template with the record's location,
// line, description and name
func ReplayCommand(template, fallback string, rec *domain.TestRecord) string {
	if rec == nil || rec.Location.IsZero() {
		return ""
	}
	if template == "" {
		template = fallback
	}
	return strings.NewReplacer(
		"%{location}", rec.Location.File,
		"%{line}", strconv.Itoa(rec.Location.Line),
		"%{description}", rec.Description,
		"%{name}", rec.Name(),
	).Replace(template)
}

// SlowTests returns the records slower than their threshold, slowest first
func SlowTests(reg *registry.Registry, fallback time.Duration, limit int) []*domain.TestRecord {
	var slow []*domain.TestRecord
	for _, rec := range reg.Records() {
		if !rec.HasElapsed {
			continue
		}
		threshold := fallback
		if rec.HasThreshold {
			threshold = rec.SlowThreshold
		}
		if rec.Elapsed > threshold {
			slow = append(slow, rec)
		}
	}
	sort.SliceStable(slow, func(i, j int) bool { return slow[i].Elapsed > slow[j].Elapsed })
	if limit > 0 && len(slow) > limit {
		slow = slow[:limit]
	}
	return slow
}

func (r *TerminalReporter) printSlow() {
	if r.cfg.Options.HideSlow {
		return
	}
	slow := SlowTests(r.registry, r.cfg.SlowThreshold(), r.cfg.SlowListLimit)
	if len(slow) == 0 {
		return
	}

	fmt.Fprint(r.out, "\nSlow Tests:\n")
	for i, rec := range slow {
		prefix := fmt.Sprintf("%d) ", i+1)
		padding := strings.Repeat(" ", len(prefix))
		fmt.Fprintln(r.out, r.palette.Red(fmt.Sprintf("%s%s (%s)", prefix, rec.Description, FormatDuration(rec.Elapsed))))
		fmt.Fprintln(r.out, r.palette.Blue(padding+rec.Location.String()))
		fmt.Fprintln(r.out)
	}
}
