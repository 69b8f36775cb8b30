package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scanner scans for test files in a directory
type Scanner struct {
	skipDirs map[string]bool
	suffix   string
}

// NewScanner creates a new Scanner matching files with the given suffix and
// skipping the given directory names
func NewScanner(suffix string, skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, suffix: suffix}
}

// IsTestFile reports whether path names a test file
func (s *Scanner) IsTestFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), s.suffix)
}

// Scan finds all test files below root, in lexical order
func (s *Scanner) Scan(root string) ([]string, error) {
	var files []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Hidden and underscore directories are ignored by the go tool too
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if s.IsTestFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// PackageFiles lists the test files directly inside dir
func (s *Scanner) PackageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read package %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && s.IsTestFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
