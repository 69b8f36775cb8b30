package execution

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt/internal/config"
	"mt/internal/domain"
	"mt/internal/options"
	"mt/internal/parser"
)

// fakeGo writes a script standing in for the go binary. It records its
// arguments and MT_ARGS, prints stream and exits with code.
func fakeGo(t *testing.T, stream string, code string) (bin string, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine")
	}
	dir := t.TempDir()
	bin = filepath.Join(dir, "go")
	argsFile = filepath.Join(dir, "args")
	script := "#!/bin/sh\n" +
		"echo \"$@\" > " + argsFile + "\n" +
		"echo \"$MT_ARGS\" >> " + argsFile + "\n" +
		"cat <<'EOF'\n" + stream + "\nEOF\n" +
		"exit " + code + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, argsFile
}

func TestRunner_Args(t *testing.T) {
	cfg := config.New()
	cfg.Options = options.RunOptions{Seed: 1234}
	r := NewRunner(cfg, parser.NewGoTestParser())

	assert.Equal(t, []string{"test", "-json", "-count=1", "-shuffle=1234", "."}, r.Args(Invocation{Dir: "/x"}))
	assert.Equal(t, []string{"test", "-json", "-count=1", "-shuffle=1234", "-run", "^(TestA)$", "."}, r.Args(Invocation{Dir: "/x", Run: []string{"TestA"}}))
}

func TestRunner_Run(t *testing.T) {
	stream := `{"Action":"run","Package":"example/pkg","Test":"TestOK"}
{"Action":"pass","Package":"example/pkg","Test":"TestOK","Elapsed":0.5}
{"Action":"run","Package":"example/pkg","Test":"TestBad"}
{"Action":"output","Package":"example/pkg","Test":"TestBad","Output":"    bad_test.go:7: nope\n"}
{"Action":"fail","Package":"example/pkg","Test":"TestBad","Elapsed":0}
not json at all
{"Action":"fail","Package":"example/pkg","Elapsed":0.5}`
	bin, argsFile := fakeGo(t, stream, "1")

	cfg := config.New()
	cfg.GoBinary = bin
	cfg.Options = options.RunOptions{Seed: 7, Slow: true}
	r := NewRunner(cfg, parser.NewGoTestParser())

	pkgDir := t.TempDir()
	var events []domain.ResultEvent
	code, err := r.Run(context.Background(), Invocation{Dir: pkgDir, Run: []string{"TestOK", "TestBad"}}, func(ev domain.ResultEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	require.Len(t, events, 2)
	assert.Equal(t, domain.OutcomePass, events[0].Outcome)
	assert.Equal(t, domain.OutcomeFailure, events[1].Outcome)
	assert.Equal(t, "nope", events[1].Message)
	assert.Equal(t, []string{filepath.Join(pkgDir, "bad_test.go") + ":7"}, events[1].Backtrace)

	recorded, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "test -json -count=1 -shuffle=7 -run ^(TestOK|TestBad)$ .\n[\"--seed\",\"7\",\"--slow\"]\n", string(recorded))
}

func TestRunner_RunBuildFailure(t *testing.T) {
	bin, _ := fakeGo(t, `{"Action":"fail","Package":"example/pkg","Elapsed":0}`, "1")

	cfg := config.New()
	cfg.GoBinary = bin
	r := NewRunner(cfg, parser.NewGoTestParser())

	var events []domain.ResultEvent
	code, err := r.Run(context.Background(), Invocation{Dir: t.TempDir()}, func(ev domain.ResultEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	require.Len(t, events, 1)
	assert.Equal(t, "example/pkg", events[0].Identity)
	assert.Equal(t, domain.OutcomeError, events[0].Outcome)
}

func TestRunner_MissingBinary(t *testing.T) {
	cfg := config.New()
	cfg.GoBinary = filepath.Join(t.TempDir(), "no-such-go")
	r := NewRunner(cfg, parser.NewGoTestParser())

	_, err := r.Run(context.Background(), Invocation{Dir: t.TempDir()}, func(domain.ResultEvent) {})
	assert.Error(t, err)
}
