package ui

import (
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Spinner shows that the engine is compiling until the first result arrives
type Spinner struct {
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}

	started   bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSpinner creates a spinner writing to w
func NewSpinner(w io.Writer, description string) *Spinner {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(65*time.Millisecond),
	)

	return &Spinner{bar: bar, stop: make(chan struct{}), done: make(chan struct{})}
}

// Start animates the spinner until Stop is called
func (s *Spinner) Start() {
	s.startOnce.Do(func() {
		s.started = true
		go func() {
			defer close(s.done)
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-s.stop:
					return
				case <-ticker.C:
					_ = s.bar.Add(1)
				}
			}
		}()
	})
}

// Stop halts and clears the spinner. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		// Never started: nothing to wait for or clear
		s.startOnce.Do(func() { close(s.done) })
		<-s.done
		if s.started {
			_ = s.bar.Finish()
		}
	})
}
