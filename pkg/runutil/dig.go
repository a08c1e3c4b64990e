package runutil

import (
	"context"

	"go.uber.org/dig"
)

// WorkerConfiger is implemented by components that bring their own workers,
// including names, retries and repeat intervals. The documentation server
// uses it for its http, watch and admin components:
//
//	func (w *WatchWorker) Workers() []runutil.Worker {
//		return []runutil.Worker{
//			runutil.DeclarativeWorker{
//				Name:   "watch",
//				Worker: runutil.WorkerFunc(w.run),
//				Retry: runutil.ExponentialBackoff{
//					Initial: time.Second,
//					Max:     time.Minute,
//				},
//			},
//		}
//	}
type WorkerConfiger interface {
	Workers() []Worker
}

// WorkerGroup is the dig input struct that collects every WorkerConfiger
// registered via ProvideWorker.
type WorkerGroup struct {
	dig.In
	All []WorkerConfiger `group:"worker"`
}

// ProvideWorker registers a WorkerConfiger constructor in the container, so
// RunProvidedWorkers picks it up later.
func ProvideWorker(c *dig.Container, fn any) error {
	return c.Provide(fn, dig.Group("worker"), dig.As(new(WorkerConfiger)))
}

// RunProvidedWorkers starts all registered workers with RunAllWorkers. Each
// worker gets a logutil subsystem named after its component type.
func RunProvidedWorkers(ctx context.Context, c *dig.Container) error {
	return c.Invoke(func(in WorkerGroup) error {
		workers := []Worker{}
		for _, c := range in.All {
			if c == nil {
				continue
			}

			for _, w := range c.Workers() {
				workers = append(workers,
					NamedWorkerFromType(w, c),
				)
			}
		}
		return RunAllWorkers(ctx, workers...)
	})
}
