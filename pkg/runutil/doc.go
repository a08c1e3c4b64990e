// Package runutil provides utilities for managing long-running services
// (Workers), one-off tasks (Jobs), and retry mechanisms with backoff
// strategies.
//
// # Worker Management
//
//	// Worker is a service that is supposed to run continuously until the
//	// context is cancelled.
//	type Worker interface {
//	    Run(ctx context.Context) error
//	}
//
//	// Job is a function that runs once and exits afterwards.
//	type Job interface {
//	    RunOnce(ctx context.Context) error
//	}
//
// # Worker with Dependency Injection
//
// The package integrates with the dig dependency injection library:
//
//	func SetupWorkers(ctx context.Context, c *dig.Container) error {
//	    err := errors.Join(
//	        runutil.ProvideWorker(c, docsite.NewServerWorker),
//	        runutil.ProvideWorker(c, docsite.NewWatchWorker),
//	    )
//	    if err != nil {
//	        return err
//	    }
//
//	    return runutil.RunProvidedWorkers(ctx, c)
//	}
//
// # Retry and Backoff
//
// Workers that talk to flaky systems can get wrapped with Retry, which
// restarts them with a backoff between attempts:
//
//	worker = runutil.Retry(worker, runutil.ExponentialBackoff{
//	    Initial:          time.Second,
//	    Max:              time.Minute,
//	    JitterProportion: 0.5,
//	})
package runutil
