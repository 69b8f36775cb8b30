package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"mt/internal/domain"
	"mt/internal/registry"
)

// ClearScreen clears the terminal and homes the cursor
const ClearScreen = "\033[2J\033[H"

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
)

// Formatter formats and displays listings and stored reports
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// ClearScreen clears the terminal
func (f *Formatter) ClearScreen() {
	fmt.Fprint(f.out, ClearScreen)
}

// PrintNoTests tells the user nothing matched
func (f *Formatter) PrintNoTests() {
	fmt.Fprintln(f.out, "\nNo tests found.")
}

// PrintTestList prints test files, or with showTests the tests declared in
// each file. Files and tests that failed in the last recorded run are
// marked with [F].
func (f *Formatter) PrintTestList(files []domain.TestFile, reg *registry.Registry, showTests bool, failed map[string]bool) {
	word := "test file(s)"
	if showTests {
		word = "test file(s) with tests"
	}
	green.Fprintf(f.out, "Found %d %s:\n\n", len(files), word)

	for i, file := range files {
		tests := fileRecords(reg, file)

		failMarker := ""
		for _, rec := range tests {
			if failed[rec.Identity] {
				failMarker = " " + red.Sprint("[F]")
				break
			}
		}

		isLastFile := i == len(files)-1
		branch := "├── "
		if isLastFile {
			branch = "└── "
		}
		cyan.Fprintf(f.out, "%s%s", branch, file.RelPath)
		fmt.Fprintf(f.out, "%s\n", failMarker)

		if !showTests {
			continue
		}

		stem := "│   "
		if isLastFile {
			stem = "    "
		}
		if len(tests) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", stem, red.Sprint("(no tests found)"))
		}
		for j, rec := range tests {
			leaf := "├── "
			if j == len(tests)-1 {
				leaf = "└── "
			}
			marker := ""
			if failed[rec.Identity] {
				marker = " " + red.Sprint("[F]")
			}
			fmt.Fprintf(f.out, "%s%s%s%s\n", stem, leaf, yellow.Sprint(rec.Description), marker)
		}

		if !isLastFile {
			fmt.Fprintln(f.out)
		}
	}
}

// fileRecords returns the records declared in file, top-level functions
// with suite records skipped when the suite declares described tests
func fileRecords(reg *registry.Registry, file domain.TestFile) []*domain.TestRecord {
	var recs []*domain.TestRecord
	suites := make(map[string]bool)
	for _, rec := range reg.Records() {
		if rec.Package == file.Dir && rec.Location.File == file.RelPath && rec.Method != "" {
			suites[rec.Suite] = true
		}
	}
	for _, rec := range reg.Records() {
		if rec.Package != file.Dir || rec.Location.File != file.RelPath {
			continue
		}
		if rec.Method == "" && suites[rec.Suite] {
			continue
		}
		recs = append(recs, rec)
	}
	return recs
}

// PrintReportStats prints the meta statistics of a stored report and a
// tree of the files with failing results
func (f *Formatter) PrintReportStats(report *domain.RunReport) {
	meta := report.Meta

	fmt.Fprint(f.out, "\n")
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                      Last Run Statistics                      ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	const sep = "├─────────────────────────────────┼─────────────────────────────┤"
	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Runs", fmt.Sprint(meta.Runs), white},
		{"Assertions", fmt.Sprint(meta.Assertions), white},
		{"Failures", fmt.Sprint(meta.Failures), red},
		{"Errors", fmt.Sprint(meta.Errors), red},
		{"Skips", fmt.Sprint(meta.Skips), yellow},
		{"Seed", fmt.Sprint(meta.Seed), white},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Timestamp", meta.Timestamp, white},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-27s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, sep)
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	failing := 0
	for _, res := range report.Details {
		if res.Outcome.Failing() {
			failing++
		}
	}
	if failing == 0 {
		green.Fprintln(f.out, "✓ All tests passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d failing test(s)\n\n", failing)
	f.printFailedTestsTree(report.Details)
}

// TreeNode represents a node in the file tree structure
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Results  []domain.ReportedResult
	IsFile   bool
}

func (f *Formatter) printFailedTestsTree(results []domain.ReportedResult) {
	root := &TreeNode{Children: make(map[string]*TreeNode)}

	for _, res := range results {
		if !res.Outcome.Failing() {
			continue
		}
		path := res.Location.File
		if path == "" {
			path = "(unknown)"
		}
		parts := strings.Split(strings.TrimPrefix(path, "./"), "/")
		current := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{
					Name:     part,
					Children: make(map[string]*TreeNode),
					IsFile:   i == len(parts)-1,
				}
			}
			current = current.Children[part]
		}
		current.Results = append(current.Results, res)
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	var keys []string
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		isLast := i == len(keys)-1

		connector, childPrefix := "├── ", "│   "
		if isLast {
			connector, childPrefix = "└── ", "    "
		}

		if child.IsFile {
			yellow.Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
			for j, res := range child.Results {
				leaf := "├── "
				if j == len(child.Results)-1 {
					leaf = "└── "
				}
				red.Fprintf(f.out, "%s%s%s\n", prefix+childPrefix, leaf, res.Description)
			}
		} else {
			cyan.Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
		}

		f.printTreeNode(child, prefix+childPrefix)
	}
}
