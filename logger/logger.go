package logger

import (
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// RBLogger is a zerolog logger carrying the ids of the query a stream belongs to.
type RBLogger struct {
	zerolog.Logger
}

var Log = &RBLogger{zerolog.New(os.Stderr).With().Timestamp().Logger()}

// enable pretty printing for interactive terminals and json for production.
func init() {
	// for tty terminal enable pretty logs
	if isatty.IsTerminal(os.Stdout.Fd()) && runtime.GOOS != "windows" {
		Log.Logger = Log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		// UNIX Time is faster and smaller than most timestamps
		// If you set zerolog.TimeFieldFormat to an empty string,
		// logs will write with UNIX time.
		zerolog.TimeFieldFormat = ""
	}
	// by default only log warnings and errors
	SetLogLevel(zerolog.WarnLevel)
}

func SetLogLevel(l zerolog.Level) {
	Log.Logger = Log.Level(l)
}

func SetLogOutput(w io.Writer) {
	Log.Logger = Log.Output(w)
}

// ParseLevel maps a level name to a zerolog level, falling back to warn.
func ParseLevel(s string) zerolog.Level {
	l, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.WarnLevel
	}
	return l
}

// WithContext returns a child of the global logger with corrId and queryId fields set.
// Empty ids are omitted.
func WithContext(correlationId string, queryId string) *RBLogger {
	c := Log.With()
	if correlationId != "" {
		c = c.Str("corrId", correlationId)
	}
	if queryId != "" {
		c = c.Str("queryId", queryId)
	}
	return &RBLogger{c.Logger()}
}

func Trace() *zerolog.Event {
	return Log.Trace()
}

func Debug() *zerolog.Event {
	return Log.Debug()
}

func Info() *zerolog.Event {
	return Log.Info()
}

func Warn() *zerolog.Event {
	return Log.Warn()
}

func Err(err error) *zerolog.Event {
	return Log.Err(err)
}
