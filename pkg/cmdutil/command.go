package cmdutil

import (
	"context"

	"github.com/spf13/cobra"
)

type Option func(*cobra.Command) error

// New assembles a cobra command from the given options. Cobra only supports a
// single PreRun and PersistentPreRun hook per command, therefore New collects
// the hooks defined by the options and runs them in order.
func New(use, desc string, options ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: desc,

		// Errors bubble up to the main function, which logs them properly.
		// Without silencing, cobra would print them a second time together
		// with the usage text.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	var (
		preRuns           = make([]func(*cobra.Command, []string), 0)
		persistentPreRuns = make([]func(*cobra.Command, []string), 0)
	)

	for _, o := range options {
		err := o(cmd)
		Must(err)

		if cmd.PreRun != nil {
			preRuns = append(preRuns, cmd.PreRun)
		}
		cmd.PreRun = nil

		if cmd.PersistentPreRun != nil {
			persistentPreRuns = append(persistentPreRuns, cmd.PersistentPreRun)
		}

		cmd.PersistentPreRun = nil
	}

	if len(persistentPreRuns) > 0 {
		cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
			for _, run := range persistentPreRuns {
				run(cmd, args)
			}
		}
	}

	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		for _, run := range preRuns {
			run(cmd, args)
		}
	}

	return cmd
}

// WithSubCommand attaches another command to the command that is being
// created.
func WithSubCommand(sub *cobra.Command) Option {
	return func(parent *cobra.Command) error {
		parent.AddCommand(sub)
		return nil
	}
}

// WithRun defines the function that executes when the command runs. The
// context gets cancelled on SIGINT or SIGTERM.
func WithRun(run RunFuncWithContext) Option {
	return func(cmd *cobra.Command) error {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			return run(SignalRootContext(), cmd, args)
		}
		return nil
	}
}

// Runner is the interface for the main application logic. Bind defines the
// command line flags and Run executes the application. Splitting both from
// the command definition keeps flag parsing, validation and execution in one
// struct that is easy to test.
type Runner interface {
	Bind(cmd *cobra.Command) error
	Run(ctx context.Context, args []string) error
}

func WithRunner(runner Runner) Option {
	return func(cmd *cobra.Command) error {
		err := runner.Bind(cmd)
		if err != nil {
			return err
		}

		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			return runner.Run(SignalRootContext(), args)
		}

		return nil
	}
}
