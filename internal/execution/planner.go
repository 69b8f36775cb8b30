package execution

import (
	"path/filepath"
	"regexp"
	"strings"

	"mt/internal/discovery"
	"mt/internal/domain"
	"mt/internal/filter"
	"mt/internal/logger"
	"mt/internal/registry"
)

// Invocation is one run of the engine over a package directory
type Invocation struct {
	Dir string
	// Run restricts the top-level test functions; empty runs all of them
	Run []string
}

// RunPattern renders Run as a -run expression
func (i Invocation) RunPattern() string {
	if len(i.Run) == 0 {
		return ""
	}
	quoted := make([]string, len(i.Run))
	for n, name := range i.Run {
		quoted[n] = regexp.QuoteMeta(name)
	}
	return "^(" + strings.Join(quoted, "|") + ")$"
}

// Planner groups resolved files into per-package invocations
type Planner struct {
	scanner *discovery.Scanner
}

// NewPlanner creates a new Planner
func NewPlanner(scanner *discovery.Scanner) *Planner {
	return &Planner{scanner: scanner}
}

// Plan returns one invocation per package directory, in the order the
// packages first appear in files. A package whose test files are all
// selected and that no filter applies to runs as a whole; otherwise -run
// is restricted to the top-level functions declared in the selected files
// whose own record or any of whose suite records the selector keeps.
// Packages left with nothing to run are skipped.
func (p *Planner) Plan(files []domain.TestFile, reg *registry.Registry, sel *filter.Selector) []Invocation {
	var dirs []string
	selected := make(map[string]map[string]bool)
	for _, f := range files {
		if selected[f.Dir] == nil {
			selected[f.Dir] = make(map[string]bool)
			dirs = append(dirs, f.Dir)
		}
		selected[f.Dir][f.RelPath] = true
	}

	var invocations []Invocation
	for _, dir := range dirs {
		if !sel.Active() && p.complete(dir, files) {
			invocations = append(invocations, Invocation{Dir: dir})
			continue
		}

		var run []string
		seen := make(map[string]bool)
		for _, rec := range reg.Records() {
			if rec.Package != dir || !selected[dir][rec.Location.File] || seen[rec.Suite] {
				continue
			}
			if sel.Selects(rec.Method, rec.Identity) {
				seen[rec.Suite] = true
				run = append(run, rec.Suite)
			}
		}

		if len(run) == 0 {
			logger.Debug("package skipped", "dir", dir)
			continue
		}
		invocations = append(invocations, Invocation{Dir: dir, Run: run})
	}
	return invocations
}

// complete reports whether every test file of dir is among files
func (p *Planner) complete(dir string, files []domain.TestFile) bool {
	all, err := p.scanner.PackageFiles(dir)
	if err != nil {
		return false
	}
	have := make(map[string]bool)
	for _, f := range files {
		if f.Dir == dir {
			have[filepath.Clean(f.Path)] = true
		}
	}
	for _, path := range all {
		if !have[filepath.Clean(path)] {
			return false
		}
	}
	return true
}
