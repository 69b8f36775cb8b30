package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mt/internal/integration"
)

// CleanCommand handles the clean command
type CleanCommand struct {
	caps *integration.Capabilities
}

// NewCleanCommand creates a new CleanCommand
func NewCleanCommand(caps *integration.Capabilities) *CleanCommand {
	return &CleanCommand{caps: caps}
}

// Execute runs the command
func (cc *CleanCommand) Execute(cmd *cobra.Command, args []string) error {
	cleaner := cc.caps.DatabaseCleaner
	if cleaner == nil {
		return fmt.Errorf("no database available, set %s", integration.DatabaseDSNEnv)
	}

	if err := cleaner.Clean(cmd.Context()); err != nil {
		return fmt.Errorf("clean database: %w", err)
	}

	color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "✓ Database cleaned")
	return nil
}
