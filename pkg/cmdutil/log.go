package cmdutil

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pkgship/pkgship/pkg/logutil"
)

// WithLogVerboseFlag adds a --verbose flag that lowers the log level to
// debug.
func WithLogVerboseFlag() Option {
	var (
		enabled bool
	)

	return func(cmd *cobra.Command) error {
		cmd.PersistentFlags().BoolVarP(
			&enabled, "verbose", "v", false,
			"prints debug log messages")

		cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
			if enabled {
				logutil.Level.Set(slog.LevelDebug)
			}
		}

		return nil
	}
}

// WithLoggingOptions installs the global slog handler stack. It binds flags
// for JSON output, an additional log file and GELF forwarding and applies
// them before the command runs.
func WithLoggingOptions() Option {
	var (
		opts logutil.SetupOptions
	)

	return func(cmd *cobra.Command) error {
		cmd.PersistentFlags().BoolVar(
			&opts.JSON, "json-logs", false,
			"prints the logs in JSON format")
		cmd.PersistentFlags().StringVar(
			&opts.LogFile, "log-file", "",
			"writes logs additionally to the given file in JSON format")
		cmd.PersistentFlags().StringVar(
			&opts.GELFAddress, "gelf-address", "",
			`address of a Graylog server for log forwarding (format: "ip:port")`)

		cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
			opts.Facility = Name

			err := logutil.Setup(opts)
			if err != nil {
				slog.Error("failed to set up logging", "error", err)
				Exit(ExitCodeGeneralError)
			}
		}

		return nil
	}
}
