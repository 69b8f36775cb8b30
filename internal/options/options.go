// Package options defines the run options shared by the CLI, the watch loop
// and the suite library running inside test binaries.
package options

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// ArgsEnv carries the effective argument vector into test binaries.
const ArgsEnv = "MT_ARGS"

// SeedEnv overrides the random default seed.
const SeedEnv = "SEED"

// Markers prefix the log lines a test binary reports metadata with. The
// runner consumes them; they never reach the reporter.
const (
	AssertionsMarker = "mt:assertions="
	ElapsedMarker    = "mt:elapsed="
)

// RunOptions holds the options of one run
type RunOptions struct {
	Seed             int
	Name             string
	Exclude          string
	Slow             bool
	HideSlow         bool
	SlowThreshold    float64 // Seconds
	HasSlowThreshold bool
	NoColor          bool
	Watch            bool
}

// Bind registers the run flags on fs.
func Bind(fs *pflag.FlagSet, o *RunOptions) {
	fs.StringVarP(&o.Name, "name", "n", "", "Run tests that match this name")
	fs.IntVarP(&o.Seed, "seed", "s", 0, "Sets fixed seed.")
	fs.BoolVar(&o.Slow, "slow", false, "Run slow tests.")
	fs.BoolVar(&o.HideSlow, "hide-slow", false, "Hide list of slow tests.")
	fs.Float64Var(&o.SlowThreshold, "slow-threshold", 0, "Set the slow threshold (in seconds)")
	fs.BoolVar(&o.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&o.Watch, "watch", false, "Watch for changes, and re-run tests.")
	fs.StringVarP(&o.Exclude, "exclude", "e", "", "Exclude /regexp/ or string from run.")
}

// Finalize fills in what parsing alone cannot know: whether a threshold was
// given and the default seed.
func Finalize(fs *pflag.FlagSet, o *RunOptions) {
	o.HasSlowThreshold = fs.Changed("slow-threshold")
	if !fs.Changed("seed") {
		o.Seed = NewSeed()
	}
}

// NewSeed returns SEED when set, a random seed otherwise.
func NewSeed() int {
	if v := os.Getenv(SeedEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n % 0xFFFF
		}
	}
	return rand.Intn(0xFFFF)
}

// FormatThreshold renders a threshold without a meaningless fraction:
// 1.0 becomes "1", -1.0 becomes "-1", 0.25 stays "0.25".
func FormatThreshold(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

// Args renders the options as the argument vector consumed by test
// binaries, in a fixed order.
func (o RunOptions) Args() []string {
	args := []string{"--seed", strconv.Itoa(o.Seed)}
	if o.Exclude != "" {
		args = append(args, "--exclude", o.Exclude)
	}
	if o.Slow {
		args = append(args, "--slow")
	}
	if o.Name != "" {
		args = append(args, "--name", o.Name)
	}
	args = append(args, o.Forwarded(false)...)
	return args
}

// Forwarded renders the options a watch loop forwards to every respawned
// run. With slow set, --slow is included too.
func (o RunOptions) Forwarded(slow bool) []string {
	var args []string
	if slow && o.Slow {
		args = append(args, "--slow")
	}
	if o.HideSlow {
		args = append(args, "--hide-slow")
	}
	if o.NoColor {
		args = append(args, "--no-color")
	}
	if o.HasSlowThreshold {
		args = append(args, "--slow-threshold", FormatThreshold(o.SlowThreshold))
	}
	return args
}

// Banner is the argument vector as shown in the run options banner.
func (o RunOptions) Banner() string {
	return strings.Join(o.Args(), " ")
}

// Env encodes the argument vector for ArgsEnv.
func (o RunOptions) Env() string {
	data, _ := json.Marshal(o.Args())
	return ArgsEnv + "=" + string(data)
}

// FromEnv parses ArgsEnv. ok is false when the variable is absent, i.e.
// the test binary was started by plain "go test".
func FromEnv() (o RunOptions, ok bool, err error) {
	raw, present := os.LookupEnv(ArgsEnv)
	if !present || raw == "" {
		return RunOptions{}, false, nil
	}

	var args []string
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return RunOptions{}, true, fmt.Errorf("parse %s: %w", ArgsEnv, err)
	}
	o, err = Parse(args)
	return o, true, err
}

// Parse parses an argument vector produced by Args.
func Parse(args []string) (RunOptions, error) {
	var o RunOptions
	fs := pflag.NewFlagSet("mt", pflag.ContinueOnError)
	fs.SetOutput(discard{})
	Bind(fs, &o)
	if err := fs.Parse(args); err != nil {
		return RunOptions{}, err
	}
	o.HasSlowThreshold = fs.Changed("slow-threshold")
	return o, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
