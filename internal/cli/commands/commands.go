package commands

import (
	"github.com/spf13/cobra"

	"mt/internal/cli"
	"mt/internal/config"
	"mt/internal/discovery"
	"mt/internal/execution"
	"mt/internal/integration"
	"mt/internal/parser"
	"mt/internal/storage"
	"mt/internal/ui"
)

// Banner is the help text of the root command
const Banner = `A better test runner for Go tests.

You can run specific files by using ` + "`file:number`" + `.

$ mt models/user_test.go:42

You can also run files by the test name:

$ mt models/user_test.go --name /validations/

You can also run specific directories:

$ mt models

To exclude tests by name, use --exclude:

$ mt models --exclude /validations/`

// Commands holds all CLI commands
type Commands struct {
	// Capabilities are detected once, after the config is loaded
	Capabilities *integration.Capabilities

	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
	Clean    *CleanCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config, flags *cli.Flags) *Commands {
	// Initialize dependencies
	scanner := discovery.NewScanner(cfg.TestFileSuffix, cfg.PathsToIgnore)
	declarations := discovery.NewParser()
	loader := discovery.NewLoader(declarations)
	runner := execution.NewRunner(cfg, parser.NewGoTestParser())
	executor := execution.NewExecutor(runner)
	planner := execution.NewPlanner(scanner)
	jsonStorage := storage.NewJSONStorage(cfg)
	viewer := ui.NewFailureViewer(jsonStorage)
	caps := &integration.Capabilities{}

	return &Commands{
		Capabilities: caps,
		Run:          NewRunCommand(cfg, caps, scanner, declarations, loader, planner, executor, jsonStorage),
		List:         NewListCommand(cfg, flags, scanner, declarations, loader),
		Failures:     NewFailuresCommand(jsonStorage, viewer),
		Clean:        NewCleanCommand(caps),
	}
}

// Close releases the detected integrations
func (c *Commands) Close() error {
	return c.Capabilities.Close()
}

// Register wires the commands into root. The root command itself runs
// tests.
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.Use = "mt [OPTIONS] [FILES|DIR|FILE:LINE]..."
	rootCmd.Long = Banner
	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.RunE = c.Run.Execute
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Load the project config, then overlay the flags
		loaded, err := config.Load(cfg.ProjectPath)
		if err != nil {
			return err
		}
		*cfg = *loaded
		if cmd == rootCmd {
			flags.ApplyRun(cmd.Flags(), cfg)
		}

		// .env may carry the integration settings, so detect after loading
		*c.Capabilities = integration.Detect(cmd.Context())
		return nil
	}
	flags.BindRun(rootCmd.Flags())

	// List command
	listCmd := &cobra.Command{
		Use:   "list [FILES|DIR|FILE:LINE]...",
		Short: "List resolved test files",
		Long:  "Resolve entries the way a run does and list the test files, or the tests declared in them, without running anything",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases instead of test files")
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "View failures of the last run interactively",
		Long:  "Display the failing and skipped tests of the last run in an interactive viewer",
		Args:  cobra.NoArgs,
		RunE:  c.Failures.Execute,
	}
	failuresCmd.Flags().BoolVar(&c.Failures.Stats, "stats", false, "Print the statistics of the last run instead of opening the viewer")
	rootCmd.AddCommand(failuresCmd)

	// Clean command
	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Truncate the test database",
		Long:  "Truncate every table of the database named by " + integration.DatabaseDSNEnv + " except schema_migrations",
		Args:  cobra.NoArgs,
		RunE:  c.Clean.Execute,
	}
	rootCmd.AddCommand(cleanCmd)
}
