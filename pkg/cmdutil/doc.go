// Package cmdutil contains helper utilities for setting up a CLI with Go,
// providing basic application behavior and for reducing boilerplate code.
//
// # Graceful Application Exits
//
// In many command line applications it is desired to exit the process
// immediately, if it is clear that the application cannot recover. Important
// note: This is designed for actual applications (ie not libraries), because
// only the application itself should decide when to exit. Libraries should
// always return errors.
//
// There are three ways to handle fatal errors in Go. With os.Exit() the
// process will terminate immediately, but it will not call any deferrers
// which means that possible cleanup tasks do not get called. The next way is
// to call panic, which respects the defer statements, but unfortunately it is
// not possible to define an exit code and the user gets confused with a stack
// trace. Finally, the function could just return an error indicating that
// things failed, but this introduces a lot of code, conditionals and appears
// unnecessary, when it is already clear that the application cannot recover.
//
// The package cmdutil provides an alternative, which panics with a known
// struct and catches it right before the application exit. This is an example
// to illustrate the usage:
//
//	func main() {
//	  defer cmdutil.HandleExit()
//	  run()
//	}
//
//	func run() {
//	  defer fmt.Println("important cleanup")
//	  err := doSomething()
//	  if err != nil {
//	    slog.Error(err.Error())
//	    cmdutil.Exit(2)
//	  }
//	}
//
// The defer of HandleExit is the first statement in the main function. It
// ensures a pretty output and that the application exits with the specified
// exit code. The run function does something and makes the application exit
// with an exit code. The specified defer statement is still called.
//
// # Command Structure
//
// New assembles a ready-to-use cobra command from small options, so every
// binary gets logging, a version command and signal handling without
// repeating the setup:
//
//	func main() {
//	    defer cmdutil.HandleExit()
//	    if err := NewRootCommand().Execute(); err != nil {
//	        slog.Error("command failed", "error", err)
//	        os.Exit(1)
//	    }
//	}
//
//	func NewRootCommand() *cobra.Command {
//	    return cmdutil.New(
//	        "myapp", "an example application",
//	        cmdutil.WithLoggingOptions(),
//	        cmdutil.WithLogVerboseFlag(),
//	        cmdutil.WithVersionCommand(),
//	        cmdutil.WithVersionLog(slog.LevelDebug),
//	        cmdutil.WithRunner(new(Runner)),
//	    )
//	}
//
// # Runner Pattern
//
// Runners are structs that define command line flags and prepare the
// application for launch:
//
//	type Runner struct {
//	    workdir string
//	}
//
//	func (r *Runner) Bind(cmd *cobra.Command) error {
//	    cmd.PersistentFlags().StringVar(
//	        &r.workdir, "workdir", ".",
//	        `working directory of the project`)
//	    return nil
//	}
//
//	func (r *Runner) Run(ctx context.Context, args []string) error {
//	    // Application setup and launch.
//	    return nil
//	}
//
// The purpose of splitting the Runner and the actual application code is to
// get initializing errors as fast as possible and to define a proper
// interface for the application launch, which is very helpful for e2e tests.
//
// # Version Command
//
// WithVersionCommand attaches a version subcommand to the application. It
// prints the compiled version of the application and other build parameters.
// These values need to be set by the build system via ldflags, eg:
//
//	go build -ldflags "\
//	  -X 'github.com/pkgship/pkgship/pkg/cmdutil.Name=${NAME}' \
//	  -X 'github.com/pkgship/pkgship/pkg/cmdutil.Version=${VERSION}' \
//	  -X 'github.com/pkgship/pkgship/pkg/cmdutil.CommitHash=${COMMIT}'"
//
// The `pkgship build` command injects all of them automatically.
package cmdutil
