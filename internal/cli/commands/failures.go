package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"mt/internal/storage"
	"mt/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	storage storage.Storage
	viewer  ui.Viewer

	// Stats prints the report statistics instead of opening the viewer
	Stats bool
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(st storage.Storage, viewer ui.Viewer) *FailuresCommand {
	return &FailuresCommand{
		storage: st,
		viewer:  viewer,
	}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	report, err := fc.storage.Load()
	if err != nil {
		return fmt.Errorf("no previous run found, run mt first: %w", err)
	}

	if fc.Stats {
		ui.NewFormatter(cmd.OutOrStdout()).PrintReportStats(report)
		return nil
	}

	return fc.viewer.View(report)
}
