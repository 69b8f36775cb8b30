package integration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt/internal/domain"
	"mt/internal/ui"
)

func fakeNotifier(command string, calls *[][]string, err error) *Notifier {
	return &Notifier{Command: command, run: func(name string, args ...string) error {
		*calls = append(*calls, append([]string{name}, args...))
		return err
	}}
}

func TestNotifier_Args(t *testing.T) {
	assert.Equal(t, []string{"Passed", "1 tests"}, (&Notifier{Command: "/usr/bin/notify-send"}).Args("Passed", "1 tests"))
	assert.Equal(t, []string{"-title", "Passed", "-message", "1 tests"}, (&Notifier{Command: "/usr/local/bin/terminal-notifier"}).Args("Passed", "1 tests"))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name  string
		stats ui.Stats
		title string
	}{
		{"passed", ui.Stats{Runs: 2, Assertions: 3}, "Passed"},
		{"failed", ui.Stats{Runs: 2, Failures: 1}, "Failed"},
		{"errored", ui.Stats{Runs: 2, Failures: 1, Errors: 1}, "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, _ := Summary(tt.stats)
			assert.Equal(t, tt.title, title)
		})
	}

	_, message := Summary(ui.Stats{Runs: 2, Assertions: 3, Failures: 1})
	assert.Equal(t, "2 tests, 3 assertions, 1 failures, 0 errors", message)
}

func TestNotifierReporter(t *testing.T) {
	var calls [][]string
	r := NewNotifierReporter(fakeNotifier("notify-send", &calls, nil))

	r.Start()
	r.Record(ui.Result{Event: domain.ResultEvent{Outcome: domain.OutcomePass, Assertions: 1}})
	r.Record(ui.Result{Event: domain.ResultEvent{Outcome: domain.OutcomeFailure, Assertions: 1}})
	r.Report()

	require.Len(t, calls, 1)
	assert.Equal(t, []string{"notify-send", "Failed", "2 tests, 2 assertions, 1 failures, 0 errors"}, calls[0])

	t.Run("errors are not fatal", func(t *testing.T) {
		var calls [][]string
		r := NewNotifierReporter(fakeNotifier("notify-send", &calls, errors.New("no display")))
		r.Start()
		r.Report()
		assert.Len(t, calls, 1)
	})
}
