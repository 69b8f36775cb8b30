package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"mt/internal/config"
	"mt/internal/options"
)

// Flags holds command-line flags
type Flags struct {
	Run       options.RunOptions
	TestCases bool
}

// BindRun registers the run flags on fs
func (f *Flags) BindRun(fs *pflag.FlagSet) {
	options.Bind(fs, &f.Run)
}

// ApplyRun finalizes the parsed run flags and stores them in cfg
func (f *Flags) ApplyRun(fs *pflag.FlagSet, cfg *config.Config) {
	options.Finalize(fs, &f.Run)
	cfg.Options = f.Run
}

// ExitError carries a non-zero exit status to main without a message
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
