package runutil

import (
	"context"
)

// DeclarativeWorker describes worker behaviour with fields instead of
// manually chaining the wrapper functions. The retry wraps the named worker,
// so every restart begins a fresh logutil subsystem.
//
// It satisfies the Worker interface.
type DeclarativeWorker struct {
	Name   string
	Worker Worker
	Retry  Backoff
}

func (w DeclarativeWorker) Run(ctx context.Context) error {
	worker := w.Worker

	if w.Name != "" {
		worker = NamedWorker(worker, "%s", w.Name)
	}

	if w.Retry != nil {
		worker = Retry(worker, w.Retry)
	}

	return worker.Run(ctx)
}
