// Package utils contains small helpers shared by the bridge's long-running components.
package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a group of goroutines sharing one context that is cancelled on Stop.
type StoppableWorkers interface {
	AddWorkers(...func(context.Context))
	Stop()
	Context() context.Context
}

// stoppableWorkersImpl is only handed out behind the interface so the WaitGroup is never copied.
type stoppableWorkersImpl struct {
	mu         sync.Mutex
	ctx        context.Context
	cancel     func()
	activeWork sync.WaitGroup
}

// NewStoppableWorkers starts each function in its own goroutine.
func NewStoppableWorkers(funcs ...func(context.Context)) StoppableWorkers {
	return NewStoppableWorkersWithContext(context.Background(), funcs...)
}

// NewStoppableWorkersWithContext is NewStoppableWorkers with the workers' context derived from
// parent, so cancelling parent also stops them.
func NewStoppableWorkersWithContext(parent context.Context, funcs ...func(context.Context)) StoppableWorkers {
	ctx, cancel := context.WithCancel(parent)
	workers := &stoppableWorkersImpl{ctx: ctx, cancel: cancel}
	workers.AddWorkers(funcs...)
	return workers
}

// AddWorkers starts more goroutines. After Stop it does nothing.
func (sw *stoppableWorkersImpl) AddWorkers(funcs ...func(context.Context)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.ctx.Err() != nil {
		return
	}

	sw.activeWork.Add(len(funcs))
	for _, f := range funcs {
		f := f
		goutils.PanicCapturingGo(func() {
			defer sw.activeWork.Done()
			f(sw.ctx)
		})
	}
}

// Stop cancels the shared context and waits for every worker to return. It is safe to call more
// than once.
func (sw *stoppableWorkersImpl) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.cancel()
	sw.activeWork.Wait()
}

// Context is the context the workers watch.
func (sw *stoppableWorkersImpl) Context() context.Context {
	return sw.ctx
}
