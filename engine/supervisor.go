package engine

import (
	"context"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// Supervisor runs background tasks with panic recovery and tracks them
// for shutdown. A panicking task is logged with its stack and never
// takes the process down.
type Supervisor struct {
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewSupervisor creates a task supervisor.
func NewSupervisor(logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{logger: logger.With(zap.String("component", "supervisor"))}
}

// Go runs fn in a supervised goroutine.
func (s *Supervisor) Go(ctx context.Context, name string, fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("background task panicked",
					zap.String("task", name),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
			}
		}()
		fn(ctx)
	}()
}

// Wait blocks until every supervised task has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}
