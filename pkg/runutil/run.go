package runutil

import (
	"context"
	"errors"
	"sync"
)

// ErrWorkerExitedPrematurely indicates that a worker returned from
// [RunAllWorkers] before the context was cancelled. The documentation server
// treats this as a failure: the http, watch and admin workers are supposed
// to run until shutdown.
var ErrWorkerExitedPrematurely = errors.New("worker exited prematurely")

// RunAllWorkers starts every worker in its own goroutine and blocks until
// all of them returned.
//
// The first worker that returns cancels the context for all others, so the
// server shuts down as a whole when a single worker dies. The returned error
// joins the worker errors; a worker that returns nil while the context is
// still alive contributes [ErrWorkerExitedPrematurely]. Only a cancelled
// context with all-nil returns counts as a clean shutdown.
func RunAllWorkers(ctx context.Context, workers ...Worker) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(len(workers))

	var errs collector[error]

	for _, w := range workers {
		w := w
		go func() {
			defer wg.Done()
			defer cancel()
			err := w.Run(ctx)
			if err != nil {
				errs.Append(err)
			} else if ctx.Err() == nil {
				// A nil return on a live context means the worker stopped
				// on its own instead of being shut down.
				errs.Append(ErrWorkerExitedPrematurely)
			}
		}()
	}

	wg.Wait()

	return errors.Join(errs.Result()...)
}

// RunAllJobs runs all jobs once, in parallel, and joins their errors.
func RunAllJobs(ctx context.Context, jobs ...Job) error {
	var wg sync.WaitGroup
	wg.Add(len(jobs))

	var errs collector[error]

	for _, j := range jobs {
		j := j
		go func() {
			defer wg.Done()
			err := j.RunOnce(ctx)
			if err != nil {
				errs.Append(err)
			}
		}()
	}

	wg.Wait()

	return errors.Join(errs.Result()...)
}

// collector appends values from multiple goroutines.
type collector[T any] struct {
	result []T
	mux    sync.Mutex
}

func (c *collector[T]) Append(value T) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.result = append(c.result, value)
}

func (c *collector[T]) Result() []T {
	return c.result
}
