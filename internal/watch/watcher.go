package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fsnotify/fsnotify"

	"mt/internal/logger"
)

// relevantFile matches the files whose changes trigger a run
var relevantFile = regexp.MustCompile(`(\.go|(^|/)go\.(mod|sum))$`)

// Relevant reports whether a change to path should trigger a run
func Relevant(path string) bool {
	return relevantFile.MatchString(filepath.ToSlash(path))
}

// treeWatcher watches a directory tree, following directories created
// after it started
type treeWatcher struct {
	*fsnotify.Watcher
	skipDirs map[string]bool
}

func newTreeWatcher(root string, skipDirs []string) (*treeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	tw := &treeWatcher{Watcher: w, skipDirs: make(map[string]bool)}
	for _, dir := range skipDirs {
		tw.skipDirs[dir] = true
	}
	if err := tw.addTree(root); err != nil {
		w.Close()
		return nil, err
	}
	return tw, nil
}

func (tw *treeWatcher) skip(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || tw.skipDirs[name]
}

func (tw *treeWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && tw.skip(d.Name()) {
			return filepath.SkipDir
		}
		if err := tw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		logger.Debug("watching directory", "path", path)
		return nil
	})
}

// follow starts watching a directory created below the tree
func (tw *treeWatcher) follow(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.IsDir() || tw.skip(info.Name()) {
		return
	}
	if err := tw.addTree(ev.Name); err != nil {
		logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
	}
}
