package execution

import (
	"context"

	"mt/internal/domain"
	"mt/internal/logger"
)

// Handler receives result events as the engine produces them
type Handler func(domain.ResultEvent)

// Engine runs one invocation of the external test engine
type Engine interface {
	Run(ctx context.Context, inv Invocation, handle Handler) (exitCode int, err error)
}

// Executor runs invocations one after another
type Executor struct {
	engine Engine
}

// NewExecutor creates a new Executor
func NewExecutor(engine Engine) *Executor {
	return &Executor{engine: engine}
}

// Execute runs every invocation sequentially and returns the highest exit
// code. It stops early when ctx is cancelled.
func (e *Executor) Execute(ctx context.Context, invocations []Invocation, handle Handler) (int, error) {
	exitCode := 0
	for _, inv := range invocations {
		if err := ctx.Err(); err != nil {
			return exitCode, err
		}

		code, err := e.engine.Run(ctx, inv, handle)
		if err != nil {
			return exitCode, err
		}
		logger.Debug("package finished", "dir", inv.Dir, "exit", code)
		if code > exitCode {
			exitCode = code
		}
	}
	return exitCode, nil
}
