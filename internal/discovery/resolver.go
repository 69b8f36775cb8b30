// Package discovery turns command-line entries into test files, and test
// files into declared tests.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"mt/internal/config"
	"mt/internal/domain"
	"mt/internal/logger"
)

var lineSuffix = regexp.MustCompile(`:(\d+)$`)

// Resolution is the outcome of resolving entries
type Resolution struct {
	Files []domain.TestFile
	// Only lists identities selected through file:line entries
	Only []string
}

// Resolver expands entries (files, globs, directories, file:line) into
// test files
type Resolver struct {
	cfg     *config.Config
	scanner *Scanner
	parser  *Parser
	ignore  IgnoreList
}

// NewResolver creates a new Resolver
func NewResolver(cfg *config.Config, scanner *Scanner, parser *Parser, ignore IgnoreList) *Resolver {
	return &Resolver{cfg: cfg, scanner: scanner, parser: parser, ignore: ignore}
}

// Resolve expands entries. With no entries the configured default
// directories are used, or the project root when none of them exists.
func (r *Resolver) Resolve(entries []string) (*Resolution, error) {
	if len(entries) == 0 {
		entries = r.defaultEntries()
	}

	res := &Resolution{}
	seen := make(map[string]bool)

	for _, entry := range entries {
		paths, err := r.expand(entry, res)
		if err != nil {
			return nil, err
		}
		for _, path := range r.ignore.Filter(paths) {
			if seen[path] {
				continue
			}
			seen[path] = true
			res.Files = append(res.Files, r.testFile(path))
		}
	}

	logger.Debug("entries resolved", "entries", entries, "files", len(res.Files), "only", res.Only)
	return res, nil
}

func (r *Resolver) defaultEntries() []string {
	var entries []string
	for _, dir := range r.cfg.DefaultEntries {
		if info, err := os.Stat(r.cfg.Path(dir)); err == nil && info.IsDir() {
			entries = append(entries, dir)
		}
	}
	if len(entries) == 0 {
		entries = []string{"."}
	}
	return entries
}

func (r *Resolver) expand(entry string, res *Resolution) ([]string, error) {
	path := r.extract(entry, res)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		files, err := r.scanner.Scan(path)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", entry, err)
		}
		return files, nil
	}

	matches, err := filepath.Glob(path)
	if err != nil {
		return nil, fmt.Errorf("invalid entry %s: %w", entry, err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.IsDir() {
			scanned, err := r.scanner.Scan(match)
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", match, err)
			}
			files = append(files, scanned...)
			continue
		}
		if r.scanner.IsTestFile(match) {
			files = append(files, match)
		}
	}
	return files, nil
}

// extract makes entry absolute and strips a :<line> suffix, recording the
// identity declared on that line when there is one.
func (r *Resolver) extract(entry string, res *Resolution) string {
	path := r.cfg.Path(entry)
	m := lineSuffix.FindStringSubmatchIndex(path)
	if m == nil {
		return filepath.Clean(path)
	}

	file := filepath.Clean(path[:m[0]])
	line, _ := strconv.Atoi(path[m[2]:m[3]])

	if info, err := os.Stat(file); err != nil || info.IsDir() {
		return file
	}
	if id, ok := r.parser.IdentityAt(file, line); ok {
		res.Only = append(res.Only, id)
	} else {
		logger.Debug("no test declared on line", "file", file, "line", line)
	}
	return file
}

func (r *Resolver) testFile(path string) domain.TestFile {
	rel := path
	if p, err := filepath.Rel(r.cfg.ProjectPath, path); err == nil && !startsWithParent(p) {
		rel = p
	}
	return domain.TestFile{Path: path, RelPath: rel, Dir: filepath.Dir(path)}
}

func startsWithParent(p string) bool {
	return p == ".." || len(p) > 3 && p[:3] == ".."+string(filepath.Separator)
}
