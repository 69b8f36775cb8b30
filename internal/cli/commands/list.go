package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mt/internal/cli"
	"mt/internal/config"
	"mt/internal/discovery"
	"mt/internal/storage"
	"mt/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config  *config.Config
	flags   *cli.Flags
	scanner *discovery.Scanner
	parser  *discovery.Parser
	loader  *discovery.Loader
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	flags *cli.Flags,
	scanner *discovery.Scanner,
	parser *discovery.Parser,
	loader *discovery.Loader,
) *ListCommand {
	return &ListCommand{
		config:  cfg,
		flags:   flags,
		scanner: scanner,
		parser:  parser,
		loader:  loader,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	files, reg, err := resolveAndLoad(lc.config, lc.scanner, lc.parser, lc.loader, args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No tests found.")
		return nil
	}

	failed := make(map[string]bool)
	for _, id := range storage.NewFailureMemory(lc.config.GetFailuresPath()).Load() {
		failed[id] = true
	}

	ui.NewFormatter(cmd.OutOrStdout()).PrintTestList(files, reg, lc.flags.TestCases, failed)
	return nil
}
