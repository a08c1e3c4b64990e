package logutil

import (
	"log/slog"
	"os"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
	sloggraylog "github.com/samber/slog-graylog/v2"
	slogmulti "github.com/samber/slog-multi"
	"golang.org/x/term"
)

// Level is the log level used by all handlers that Setup installs. It can be
// changed at any time, eg by a --verbose flag.
var Level = new(slog.LevelVar)

// SetupOptions control the global slog handler stack.
type SetupOptions struct {
	// JSON forces JSON output on stderr, even on a terminal.
	JSON bool

	// LogFile appends JSON logs to the given file, additionally to stderr.
	LogFile string

	// GELFAddress forwards logs to a Graylog server ("ip:port").
	GELFAddress string

	// Facility is attached to forwarded GELF messages. Usually the
	// application name.
	Facility string
}

// Setup replaces the default slog logger with a handler stack based on the
// given options. Without any options it logs human-readable to stderr, with
// colors when stderr is a terminal.
func Setup(opts SetupOptions) error {
	handlers := []slog.Handler{}

	if opts.JSON {
		handlers = append(handlers,
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: Level}))
	} else {
		handlers = append(handlers, tint.NewHandler(os.Stderr, &tint.Options{
			Level:   Level,
			NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
		}))
	}

	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "failed to open log file")
		}

		handlers = append(handlers,
			slog.NewJSONHandler(f, &slog.HandlerOptions{Level: Level}))
	}

	if opts.GELFAddress != "" {
		writer, err := gelf.NewWriter(opts.GELFAddress)
		if err != nil {
			return errors.Wrap(err, "failed to connect to graylog")
		}
		writer.Facility = opts.Facility

		handlers = append(handlers, sloggraylog.Option{
			Level:  Level,
			Writer: writer,
		}.NewGraylogHandler())
	}

	if len(handlers) == 1 {
		slog.SetDefault(slog.New(handlers[0]))
	} else {
		slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	}

	return nil
}
