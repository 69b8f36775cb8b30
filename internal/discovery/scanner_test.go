package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		fullPath := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", name, err)
		}
	}
}

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	writeFiles(t, tmpDir, map[string]string{
		"pkg/unit/user_test.go":        "package unit",
		"pkg/unit/user.go":             "package unit",
		"pkg/integration/order_test.go": "package integration",
		"vendor/some/lib_test.go":      "package lib",
		"node_modules/some/x_test.go":  "package x",
		"pkg/testdata/fixture_test.go": "package fixture",
		".git/hooks/a_test.go":         "package hooks",
		"_examples/b_test.go":          "package b",
	})

	scanner := NewScanner("_test.go", []string{"vendor", "node_modules", "testdata"})

	t.Run("scans test files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			filepath.Join(tmpDir, "pkg/integration/order_test.go"),
			filepath.Join(tmpDir, "pkg/unit/user_test.go"),
		}
		if len(results) != len(expected) {
			t.Fatalf("expected %d test files, got %d: %v", len(expected), len(results), results)
		}
		for i := range expected {
			if results[i] != expected[i] {
				t.Errorf("result %d: expected %s, got %s", i, expected[i], results[i])
			}
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "pkg/unit/user.go"))
		if err == nil {
			t.Error("expected error for file path")
		}
	})

	t.Run("lists package files without descending", func(t *testing.T) {
		files, err := scanner.PackageFiles(filepath.Join(tmpDir, "pkg/unit"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 || filepath.Base(files[0]) != "user_test.go" {
			t.Errorf("unexpected package files: %v", files)
		}
	})
}
