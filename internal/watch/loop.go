// Package watch re-runs tests when files change. Every run is a fresh child
// process of the mt binary; the loop only decides what the child runs.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"mt/internal/config"
	"mt/internal/filter"
	"mt/internal/logger"
	"mt/internal/storage"
	"mt/internal/ui"
)

// RecordFailuresEnv is set on every child so its failures are remembered
const RecordFailuresEnv = config.EnvRecordFailures + "=1"

// Settle is how long the loop waits for related changes before spawning
const Settle = 100 * time.Millisecond

// Loop watches the project and respawns runs
type Loop struct {
	cfg       *config.Config
	spawner   Spawner
	memory    *storage.FailureMemory
	formatter *ui.Formatter
	out       io.Writer
	settle    time.Duration
}

// NewLoop creates a Loop printing to out
func NewLoop(cfg *config.Config, spawner Spawner, memory *storage.FailureMemory, out io.Writer) *Loop {
	return &Loop{
		cfg:       cfg,
		spawner:   spawner,
		memory:    memory,
		formatter: ui.NewFormatter(out),
		out:       out,
		settle:    Settle,
	}
}

// InitialArgs are the arguments of the first run: the full options and the
// entries given on the command line.
func (l *Loop) InitialArgs(entries []string) []string {
	return append(l.cfg.Options.Args(), entries...)
}

// NextArgs are the arguments of a respawned run. Remembered failures win
// over changed files; otherwise changed test files are run directly, other
// Go files contribute their package and module files run everything.
func (l *Loop) NextArgs(changed []string) []string {
	args := l.cfg.Options.Forwarded(true)

	if failures := l.memory.Load(); len(failures) > 0 {
		return append(args, "--name", filter.Exactly(failures))
	}

	var entries []string
	seen := make(map[string]bool)
	add := func(entry string) {
		if !seen[entry] {
			seen[entry] = true
			entries = append(entries, entry)
		}
	}
	for _, path := range changed {
		base := filepath.Base(path)
		if base == "go.mod" || base == "go.sum" {
			return args
		}
		if filepath.Ext(base) != ".go" {
			continue
		}
		rel, err := filepath.Rel(l.cfg.ProjectPath, path)
		if err != nil {
			rel = path
		}
		if strings.HasSuffix(base, l.cfg.TestFileSuffix) {
			add(rel)
			continue
		}
		add(filepath.Dir(rel))
	}
	return append(args, entries...)
}

// Run performs the initial run, then respawns on every settled batch of
// relevant changes until ctx is cancelled. Changes seen while a child is
// running are dropped.
func (l *Loop) Run(ctx context.Context, entries []string) error {
	watcher, err := newTreeWatcher(l.cfg.ProjectPath, l.cfg.PathsToIgnore)
	if err != nil {
		return err
	}
	defer watcher.Close()

	done := make(chan error, 1)
	busy := true
	go func() {
		done <- l.spawner.Spawn(ctx, l.InitialArgs(entries), []string{RecordFailuresEnv})
	}()

	pending := make(map[string]bool)
	timer := time.NewTimer(l.settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if busy {
				<-done
			}
			fmt.Fprintln(l.out, "Exiting...")
			return nil

		case err := <-done:
			busy = false
			if err != nil {
				logger.Error("run failed", "error", err)
			}

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			watcher.follow(ev)
			if busy || !Relevant(ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			if len(pending) == 0 {
				timer.Reset(l.settle)
			}
			pending[ev.Name] = true

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-timer.C:
			if busy || len(pending) == 0 {
				pending = make(map[string]bool)
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)

			l.formatter.ClearScreen()
			busy = true
			args := l.NextArgs(changed)
			go func() {
				done <- l.spawner.Spawn(ctx, args, []string{RecordFailuresEnv})
			}()
		}
	}
}
