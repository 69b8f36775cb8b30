package discovery

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// IgnoreList holds path fragments; any path containing one of them is
// excluded from a run
type IgnoreList []string

// LoadIgnoreList reads an ignore file. Lines starting with # and blank
// lines are skipped. A missing file yields an empty list.
func LoadIgnoreList(path string) (IgnoreList, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading ignore file %s: %w", path, err)
	}
	defer f.Close()

	var list IgnoreList
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error reading ignore file %s: %w", path, err)
	}
	return list, nil
}

// Ignored reports whether path contains any entry
func (l IgnoreList) Ignored(path string) bool {
	for _, entry := range l {
		if strings.Contains(path, entry) {
			return true
		}
	}
	return false
}

// Filter drops ignored paths
func (l IgnoreList) Filter(paths []string) []string {
	if len(l) == 0 {
		return paths
	}
	kept := paths[:0:0]
	for _, p := range paths {
		if !l.Ignored(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
