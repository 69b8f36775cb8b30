package suite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt/internal/options"
	"mt/internal/registry"
)

// newSuite builds a suite with its own registry, ignoring the options of
// an enclosing mt run.
func newSuite(t *testing.T, opts ...Option) *Suite {
	t.Helper()
	t.Setenv(options.ArgsEnv, "")
	t.Setenv(RunSlowTestsEnv, "")
	return New(t, append([]Option{WithRegistry(registry.New()), WithCleaner(nil)}, opts...)...)
}

func TestSuite_Declare(t *testing.T) {
	reg := registry.New()
	s := newSuite(t, WithRegistry(reg))

	s.Test("creates a user", func(c *Context) {})
	s.SlowThreshold(2 * time.Second)
	s.Test("is slow to build", func(c *Context) {})

	recs := reg.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "TestSuite_Declare#test_creates_a_user", recs[0].Identity)
	assert.Equal(t, "test_creates_a_user", recs[0].Method)
	assert.Equal(t, "creates a user", recs[0].Description)
	assert.Equal(t, "suite_test.go", recs[0].Location.File)
	assert.False(t, recs[0].HasThreshold)
	assert.True(t, recs[1].HasThreshold)
	assert.Equal(t, 2*time.Second, recs[1].SlowThreshold)

	s.Run()

	for _, rec := range reg.Records() {
		assert.True(t, rec.HasElapsed, rec.Identity)
	}
}

func TestSuite_DuplicateTest(t *testing.T) {
	s := newSuite(t)
	s.Test("does something", func(c *Context) {})

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*ConfigError)
		require.True(t, ok, "panic value %#v", r)
		assert.Equal(t, "test_does_something is already defined in TestSuite_DuplicateTest", err.Error())
		assert.True(t, errors.Is(err, registry.ErrDuplicateTest))
	}()
	s.Test("Does  something!")
}

func TestSuite_Redeclare(t *testing.T) {
	t.Setenv(options.ArgsEnv, "")
	reg := registry.New()

	// The same test function running twice in one process
	for i := 0; i < 2; i++ {
		New(t, WithRegistry(reg), WithCleaner(nil)).
			Test("adds numbers", func(c *Context) { c.Equal(2, 1+1) }).
			Run()
	}

	recs := reg.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "TestSuite_Redeclare#test_adds_numbers", recs[0].Identity)
	assert.True(t, recs[0].HasElapsed)
}

func TestSuite_Let(t *testing.T) {
	t.Run("reserved names", func(t *testing.T) {
		s := newSuite(t)
		assert.PanicsWithError(t, "Cannot define let(test_user); method cannot begin with 'test'.", func() {
			s.Let("test_user", func(c *Context) any { return nil })
		})

		s.Let("user", func(c *Context) any { return nil })
		assert.PanicsWithError(t, "Cannot define let(user); method already defined by TestSuite_Let/reserved_names.", func() {
			s.Let("user", func(c *Context) any { return nil })
		})
	})

	t.Run("memoized per test", func(t *testing.T) {
		calls := 0
		s := newSuite(t)
		s.Let("counter", func(c *Context) any {
			calls++
			return calls
		})
		s.Test("reads twice", func(c *Context) {
			first := c.Get("counter")
			c.Equal(first, c.Get("counter"))
		})
		s.Test("reads again", func(c *Context) {
			c.Get("counter")
		})
		s.Run()
		assert.Equal(t, 2, calls)
	})
}

func TestSuite_HooksRunInOrder(t *testing.T) {
	var calls []string
	s := newSuite(t)
	s.Setup(func(c *Context) { calls = append(calls, "setup 1") })
	s.Setup(func(c *Context) { calls = append(calls, "setup 2") })
	s.Teardown(func(c *Context) { calls = append(calls, "teardown 1") })
	s.Teardown(func(c *Context) { calls = append(calls, "teardown 2") })
	s.Test("runs", func(c *Context) { calls = append(calls, "test") })
	s.Run()

	expected := []string{"setup 1", "setup 2", "test", "teardown 1", "teardown 2"}
	if diff := cmp.Diff(expected, calls); diff != "" {
		t.Errorf("hooks mismatch (-want +got):\n%s", diff)
	}
}

type countingCleaner struct{ calls int }

func (c *countingCleaner) Clean(ctx context.Context) error {
	c.calls++
	return nil
}

func TestSuite_Cleaner(t *testing.T) {
	cleaner := &countingCleaner{}
	s := newSuite(t, WithCleaner(cleaner))
	s.Test("one", func(c *Context) {})
	s.Test("two", func(c *Context) {})
	s.Run()
	assert.Equal(t, 2, cleaner.calls)
}

func TestSuite_ManagedRun(t *testing.T) {
	declare := func(t *testing.T, opts options.RunOptions, ran *[]string) *Suite {
		s := newSuite(t, WithOptions(opts))
		for _, d := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
			d := d
			s.Test(d, func(c *Context) { *ran = append(*ran, d) })
		}
		return s
	}

	t.Run("shuffled by seed", func(t *testing.T) {
		var first, second []string
		declare(t, options.RunOptions{Seed: 42}, &first).Run()
		declare(t, options.RunOptions{Seed: 42}, &second).Run()
		assert.Equal(t, first, second)
		assert.ElementsMatch(t, []string{"alpha", "beta", "gamma", "delta", "epsilon"}, first)
	})

	t.Run("name filter", func(t *testing.T) {
		var ran []string
		declare(t, options.RunOptions{Seed: 1, Name: "/a$/"}, &ran).Run()
		assert.ElementsMatch(t, []string{"alpha", "beta", "gamma", "delta"}, ran)
	})

	t.Run("exclude filter", func(t *testing.T) {
		var ran []string
		declare(t, options.RunOptions{Seed: 1, Exclude: "test_beta"}, &ran).Run()
		assert.NotContains(t, ran, "beta")
		assert.Len(t, ran, 4)
	})
}

func TestSuite_UnmanagedRunKeepsOrder(t *testing.T) {
	var ran []string
	s := newSuite(t)
	for _, d := range []string{"one", "two", "three"} {
		d := d
		s.Test(d, func(c *Context) { ran = append(ran, d) })
	}
	s.Run()
	assert.Equal(t, []string{"one", "two", "three"}, ran)
}
