package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Spawner starts one child run and waits for it to finish
type Spawner interface {
	Spawn(ctx context.Context, args []string, env []string) error
}

// ProcessSpawner re-executes the running binary in the project directory
type ProcessSpawner struct {
	Path   string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewProcessSpawner creates a spawner for the current executable
func NewProcessSpawner(dir string) (*ProcessSpawner, error) {
	path, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return &ProcessSpawner{
		Path:   path,
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// Spawn runs the child to completion. A failing run is not an error; only
// a child that could not be started or waited for is. Cancelling ctx
// interrupts the child.
func (s *ProcessSpawner) Spawn(ctx context.Context, args []string, env []string) error {
	cmd := exec.CommandContext(ctx, s.Path, args...)
	cmd.Dir = s.Dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
