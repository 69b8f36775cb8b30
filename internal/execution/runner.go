package execution

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"mt/internal/config"
	"mt/internal/logger"
	"mt/internal/parser"
)

// Runner runs `go test -json` for one package
type Runner struct {
	config *config.Config
	parser parser.Parser
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, p parser.Parser) *Runner {
	return &Runner{config: cfg, parser: p}
}

// Args builds the engine arguments for an invocation
func (r *Runner) Args(inv Invocation) []string {
	args := []string{"test", "-json", "-count=1", "-shuffle=" + strconv.Itoa(r.config.Options.Seed)}
	if pattern := inv.RunPattern(); pattern != "" {
		args = append(args, "-run", pattern)
	}
	return append(args, ".")
}

// Run executes the invocation, streaming result events to handle. The
// returned exit code is the engine's; err is set only when the engine could
// not be started or its output could not be read.
func (r *Runner) Run(ctx context.Context, inv Invocation, handle Handler) (int, error) {
	cmd := exec.CommandContext(ctx, r.config.GoBinary, r.Args(inv)...)
	cmd.Dir = inv.Dir
	cmd.Env = append(os.Environ(), r.config.Options.Env())
	if r.config.NoColorEnv {
		cmd.Env = append(cmd.Env, config.EnvNoColor+"=1")
	}
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to open engine output: %w", err)
	}

	logger.Debug("engine start", "dir", inv.Dir, "args", cmd.Args)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", r.config.GoBinary, err)
	}

	conv := NewConverter(inv.Dir, r.parser, handle)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		var ev TestEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			// Not an event: treat as package output
			conv.Handle(TestEvent{Action: ActionOutput, Output: string(line) + "\n"})
			continue
		}
		conv.Handle(ev)
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return 0, fmt.Errorf("engine failed: %w", waitErr)
		}
		exitCode = exitErr.ExitCode()
		if exitCode < 0 {
			// Killed by a signal
			exitCode = 1
		}
	}
	if scanErr != nil {
		return exitCode, fmt.Errorf("failed to read engine output: %w", scanErr)
	}

	if exitCode != 0 {
		conv.pkgFailed = true
	}
	conv.Close(stderr.String())
	logger.Debug("engine done", "dir", inv.Dir, "exit", exitCode, "results", conv.Emitted())
	return exitCode, nil
}
