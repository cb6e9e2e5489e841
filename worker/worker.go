package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Worker bounds how many jobs run at once.
type Worker struct {
	sem *semaphore.Weighted
}

func NewWorker(maxConcurrency int) *Worker {
	return &Worker{
		sem: semaphore.NewWeighted(int64(max(maxConcurrency, 1))),
	}
}

// AcquireJob blocks until a slot is free or ctx is done. The returned func
// releases the slot and must be called exactly once.
func (w *Worker) AcquireJob(ctx context.Context) (func(), error) {
	if err := w.sem.Acquire(ctx, 1); nil != err {
		return nil, fmt.Errorf("failed to acquire job slot: %w", err)
	}

	return func() { w.sem.Release(1) }, nil
}

func (w *Worker) TryAcquireJob() (func(), bool) {
	if !w.sem.TryAcquire(1) {
		return nil, false
	}

	return func() { w.sem.Release(1) }, true
}
