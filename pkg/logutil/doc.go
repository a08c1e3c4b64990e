// Package logutil provides the global slog setup and context-aware loggers.
//
// Setup installs the handler stack for the whole application: colored
// terminal output via tint, plain JSON for non-interactive use, an optional
// JSON log file and optional GELF forwarding to Graylog. All handlers share
// the package-level Level variable, so a --verbose flag can lower the level
// after the stack is installed.
//
// The context helpers enable tracing and correlation of log entries across
// multiple subsystems by maintaining and propagating trace IDs through the
// context:
//
//	ctx = logutil.Start(ctx, "docsite")
//	log := logutil.Get(ctx)
//	log.Info("rebuild triggered")
//
//	// Add fields to context and logger.
//	ctx = logutil.WithField(ctx, "package", pkg.ImportPath)
//
//	// Extract subsystem path.
//	subsystem := logutil.GetSubsystem(ctx)
//
// Functions invoked from webutil or runutil already have a subsystem and do
// not need to be started again.
package logutil
