package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mt/internal/cli"
	"mt/internal/config"
	"mt/internal/discovery"
	"mt/internal/domain"
	"mt/internal/execution"
	"mt/internal/filter"
	"mt/internal/integration"
	"mt/internal/logger"
	"mt/internal/registry"
	"mt/internal/storage"
	"mt/internal/ui"
	"mt/internal/watch"
)

// RunCommand handles the root command: resolve, load, run and report
type RunCommand struct {
	config   *config.Config
	caps     *integration.Capabilities
	scanner  *discovery.Scanner
	parser   *discovery.Parser
	loader   *discovery.Loader
	planner  *execution.Planner
	executor *execution.Executor
	storage  storage.Storage

	// Stderr receives the compile spinner; nil means os.Stderr
	Stderr io.Writer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	caps *integration.Capabilities,
	scanner *discovery.Scanner,
	parser *discovery.Parser,
	loader *discovery.Loader,
	planner *execution.Planner,
	executor *execution.Executor,
	st storage.Storage,
) *RunCommand {
	return &RunCommand{
		config:   cfg,
		caps:     caps,
		scanner:  scanner,
		parser:   parser,
		loader:   loader,
		planner:  planner,
		executor: executor,
		storage:  st,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := rc.config
	out := cmd.OutOrStdout()

	if cfg.Options.Watch {
		spawner, err := watch.NewProcessSpawner(cfg.ProjectPath)
		if err != nil {
			return err
		}
		memory := storage.NewFailureMemory(cfg.GetFailuresPath())
		return watch.NewLoop(cfg, spawner, memory, out).Run(cmd.Context(), args)
	}

	files, reg, err := rc.load(args)
	if err != nil {
		return err
	}

	selector, err := filter.NewSelector(cfg.Options.Name, cfg.Options.Exclude)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	// Children inherit our color decision through NO_COLOR
	if !ui.ColorEnabled(out, cfg) {
		cfg.NoColorEnv = true
	}

	composite := ui.NewComposite(reg, cfg.ProjectPath,
		ui.NewTerminalReporter(out, cfg, reg),
		ui.NewReportSaver(rc.storage, cfg),
	)
	if cfg.RecordFailures {
		composite.Add(ui.NewFailureRecorder(storage.NewFailureMemory(cfg.GetFailuresPath())))
	}
	if n := rc.caps.Notifier; n != nil {
		composite.Add(integration.NewNotifierReporter(n))
	}

	if len(files) == 0 {
		ui.NewFormatter(out).PrintNoTests()
	}

	invocations := rc.planner.Plan(files, reg, selector)
	logger.Debug("run planned", "files", len(files), "tests", reg.Len(), "invocations", len(invocations))

	composite.Start()

	stderr := rc.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	spinner := ui.NewSpinner(stderr, "Compiling")
	if len(invocations) > 0 && ui.IsTerminal(stderr) {
		spinner.Start()
	}

	code, err := rc.executor.Execute(cmd.Context(), invocations, func(ev domain.ResultEvent) {
		spinner.Stop()
		composite.Record(ev)
	})
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("run tests: %w", err)
	}

	composite.Report()

	if code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}

// load resolves entries and loads the declared tests into a fresh
// registry. Tests selected through file:line entries replace --name.
func (rc *RunCommand) load(entries []string) ([]domain.TestFile, *registry.Registry, error) {
	return resolveAndLoad(rc.config, rc.scanner, rc.parser, rc.loader, entries)
}

func resolveAndLoad(cfg *config.Config, scanner *discovery.Scanner, parser *discovery.Parser, loader *discovery.Loader, entries []string) ([]domain.TestFile, *registry.Registry, error) {
	ignore, err := discovery.LoadIgnoreList(cfg.GetIgnorePath())
	if err != nil {
		return nil, nil, err
	}

	res, err := discovery.NewResolver(cfg, scanner, parser, ignore).Resolve(entries)
	if err != nil {
		return nil, nil, err
	}
	if len(res.Only) > 0 {
		cfg.Options.Name = filter.Only(res.Only)
	}

	reg := registry.New()
	if err := loader.Load(reg, res.Files); err != nil {
		if errors.Is(err, registry.ErrDuplicateTest) {
			return nil, nil, fmt.Errorf("invalid test suite: %w", err)
		}
		return nil, nil, err
	}
	return res.Files, reg, nil
}
