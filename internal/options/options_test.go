package options

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOptions_Banner(t *testing.T) {
	tests := []struct {
		name     string
		opts     RunOptions
		expected string
	}{
		{name: "seed only", opts: RunOptions{Seed: 1234}, expected: "--seed 1234"},
		{name: "slow", opts: RunOptions{Seed: 1234, Slow: true}, expected: "--seed 1234 --slow"},
		{name: "hide slow", opts: RunOptions{Seed: 1234, HideSlow: true}, expected: "--seed 1234 --hide-slow"},
		{
			name:     "negative threshold",
			opts:     RunOptions{Seed: 1234, SlowThreshold: -1, HasSlowThreshold: true},
			expected: "--seed 1234 --slow-threshold -1",
		},
		{
			name:     "full order",
			opts:     RunOptions{Seed: 7, Exclude: "/x/", Slow: true, Name: "/y/", HideSlow: true, NoColor: true, SlowThreshold: 0.25, HasSlowThreshold: true},
			expected: "--seed 7 --exclude /x/ --slow --name /y/ --hide-slow --no-color --slow-threshold 0.25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.opts.Banner())
		})
	}
}

func TestFormatThreshold(t *testing.T) {
	assert.Equal(t, "1", FormatThreshold(1.0))
	assert.Equal(t, "-1", FormatThreshold(-1))
	assert.Equal(t, "0.5", FormatThreshold(0.5))
	assert.Equal(t, "10.25", FormatThreshold(10.25))
}

func TestParse_RoundTrip(t *testing.T) {
	in := RunOptions{Seed: 42, Name: "/a b/", Exclude: "slow", Slow: true, HideSlow: true, SlowThreshold: 2, HasSlowThreshold: true}
	out, err := Parse(in.Args())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFromEnv(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		t.Setenv(ArgsEnv, "")
		_, ok, err := FromEnv()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("present", func(t *testing.T) {
		opts := RunOptions{Seed: 99, Slow: true}
		env := opts.Env()
		t.Setenv(ArgsEnv, env[len(ArgsEnv)+1:])

		got, ok, err := FromEnv()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, opts, got)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Setenv(ArgsEnv, "not json")
		_, ok, err := FromEnv()
		assert.True(t, ok)
		assert.Error(t, err)
	})
}

func TestFinalize(t *testing.T) {
	t.Setenv(SeedEnv, "70000")

	var o RunOptions
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Bind(fs, &o)
	require.NoError(t, fs.Parse([]string{"--slow-threshold", "0"}))
	Finalize(fs, &o)

	assert.True(t, o.HasSlowThreshold)
	assert.Equal(t, 70000%0xFFFF, o.Seed)
}

func TestForwarded(t *testing.T) {
	o := RunOptions{Seed: 1, Name: "/x/", Slow: true, HideSlow: true, NoColor: true, SlowThreshold: 1, HasSlowThreshold: true}
	assert.Equal(t, []string{"--slow", "--hide-slow", "--no-color", "--slow-threshold", "1"}, o.Forwarded(true))
	assert.Equal(t, []string{"--hide-slow", "--no-color", "--slow-threshold", "1"}, o.Forwarded(false))
}
