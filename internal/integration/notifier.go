package integration

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"mt/internal/logger"
	"mt/internal/ui"
)

// Notifier sends desktop notifications through an installed command
type Notifier struct {
	Command string
	run     func(name string, args ...string) error
}

// LookNotifier finds notify-send or terminal-notifier on PATH
func LookNotifier() (*Notifier, bool) {
	for _, name := range []string{"notify-send", "terminal-notifier"} {
		if path, err := exec.LookPath(name); err == nil {
			return &Notifier{Command: path, run: runCommand}, true
		}
	}
	return nil, false
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Args renders the command line of one notification
func (n *Notifier) Args(title, message string) []string {
	if filepath.Base(n.Command) == "terminal-notifier" {
		return []string{"-title", title, "-message", message}
	}
	return []string{title, message}
}

// Notify sends one notification
func (n *Notifier) Notify(title, message string) error {
	if err := n.run(n.Command, n.Args(title, message)...); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// NotifierReporter notifies the summary of a run when it ends
type NotifierReporter struct {
	notifier *Notifier
	stats    ui.Stats
}

// NewNotifierReporter creates a NotifierReporter
func NewNotifierReporter(n *Notifier) *NotifierReporter {
	return &NotifierReporter{notifier: n}
}

func (r *NotifierReporter) Start() { r.stats = ui.Stats{} }

func (r *NotifierReporter) Record(res ui.Result) { r.stats.Add(res.Event) }

func (r *NotifierReporter) Report() {
	title, message := Summary(r.stats)
	if err := r.notifier.Notify(title, message); err != nil {
		logger.Warn("failed to send notification", "error", err)
	}
}

// Summary renders the notification of a run
func Summary(s ui.Stats) (title, message string) {
	switch {
	case s.Errors > 0:
		title = "Error"
	case s.Failures > 0:
		title = "Failed"
	default:
		title = "Passed"
	}
	message = fmt.Sprintf("%d tests, %d assertions, %d failures, %d errors", s.Runs, s.Assertions, s.Failures, s.Errors)
	return title, message
}
