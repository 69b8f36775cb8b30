package discovery

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt/internal/config"
	"mt/internal/registry"
)

func newTestResolver(t *testing.T, root string, ignore IgnoreList) *Resolver {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = root
	return NewResolver(cfg, NewScanner(cfg.TestFileSuffix, cfg.PathsToIgnore), NewParser(), ignore)
}

func relPaths(res *Resolution) []string {
	var out []string
	for _, f := range res.Files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"test/a_test.go":          "package test\n",
		"test/b_test.go":          "package test\n",
		"test/fixtures/c_test.go": "package fixtures\n",
		"test/helper.go":          "package test\n",
		"models/user_test.go":     userTestSource,
	})

	t.Run("directory", func(t *testing.T) {
		res, err := newTestResolver(t, root, nil).Resolve([]string{"test"})
		require.NoError(t, err)
		assert.Equal(t, []string{"test/a_test.go", "test/b_test.go", "test/fixtures/c_test.go"}, relPaths(res))
		assert.Empty(t, res.Only)
	})

	t.Run("ignore list", func(t *testing.T) {
		res, err := newTestResolver(t, root, IgnoreList{"fixtures"}).Resolve([]string{"test"})
		require.NoError(t, err)
		assert.Equal(t, []string{"test/a_test.go", "test/b_test.go"}, relPaths(res))
	})

	t.Run("default entries", func(t *testing.T) {
		res, err := newTestResolver(t, root, nil).Resolve(nil)
		require.NoError(t, err)
		assert.Len(t, res.Files, 3)
	})

	t.Run("project root when no default directory exists", func(t *testing.T) {
		other := t.TempDir()
		writeFiles(t, other, map[string]string{"pkg/x_test.go": "package pkg\n"})
		res, err := newTestResolver(t, other, nil).Resolve(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"pkg/x_test.go"}, relPaths(res))
	})

	t.Run("glob and dedup", func(t *testing.T) {
		res, err := newTestResolver(t, root, nil).Resolve([]string{"test/*_test.go", "test/a_test.go", "test/helper.go"})
		require.NoError(t, err)
		assert.Equal(t, []string{"test/a_test.go", "test/b_test.go"}, relPaths(res))
	})

	t.Run("file and line of a described test", func(t *testing.T) {
		res, err := newTestResolver(t, root, nil).Resolve([]string{"models/user_test.go:14"})
		require.NoError(t, err)
		assert.Equal(t, []string{"models/user_test.go"}, relPaths(res))
		assert.Equal(t, []string{"TestUser#test_creates_a_user"}, res.Only)
	})

	t.Run("file and line of a top-level function", func(t *testing.T) {
		res, err := newTestResolver(t, root, nil).Resolve([]string{filepath.Join(root, "models/user_test.go") + ":23"})
		require.NoError(t, err)
		assert.Equal(t, []string{"TestPlainFunction"}, res.Only)
	})

	t.Run("unmatched line keeps the file", func(t *testing.T) {
		res, err := newTestResolver(t, root, nil).Resolve([]string{"models/user_test.go:2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"models/user_test.go"}, relPaths(res))
		assert.Empty(t, res.Only)
	})

	t.Run("missing entry resolves to nothing", func(t *testing.T) {
		res, err := newTestResolver(t, root, nil).Resolve([]string{"nope_test.go:3"})
		require.NoError(t, err)
		assert.Empty(t, res.Files)
	})

	t.Run("package directory", func(t *testing.T) {
		res, err := newTestResolver(t, root, nil).Resolve([]string{"models"})
		require.NoError(t, err)
		require.Len(t, res.Files, 1)
		assert.Equal(t, filepath.Join(root, "models"), res.Files[0].Dir)
	})
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"models/user_test.go": userTestSource,
		"models/dup_test.go":  "package models\n\nfunc TestUser(t *testing.T) {}\n",
		"other/user_test.go":  "package other\n\nfunc TestUser(t *testing.T) {}\n",
	})
	resolver := newTestResolver(t, root, nil)
	loader := NewLoader(NewParser())

	t.Run("declares records", func(t *testing.T) {
		res, err := resolver.Resolve([]string{"models/user_test.go", "other"})
		require.NoError(t, err)

		reg := registry.New()
		require.NoError(t, loader.Load(reg, res.Files))
		assert.Equal(t, 5, reg.Len())

		rec, ok := reg.Lookup(filepath.Join(root, "models"), "TestUser#test_creates_a_user")
		require.True(t, ok)
		assert.Equal(t, "creates a user", rec.Description)
		assert.Equal(t, "models/user_test.go:14", rec.Location.String())
		assert.True(t, rec.HasThreshold)

		_, ok = reg.Lookup(filepath.Join(root, "other"), "TestUser")
		assert.True(t, ok)
	})

	t.Run("duplicate identity in one package", func(t *testing.T) {
		res, err := resolver.Resolve([]string{"models"})
		require.NoError(t, err)

		err = loader.Load(registry.New(), res.Files)
		require.Error(t, err)
		assert.True(t, errors.Is(err, registry.ErrDuplicateTest))
	})
}
