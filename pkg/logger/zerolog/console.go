package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
)

// Options configures the console logger
type Options struct {
	Level      string
	TimeLayout string
	Colored    bool
	JSON       bool
	Output     io.Writer // defaults to os.Stderr
}

// New builds a zerolog logger writing to the console.
// JSON mode emits raw zerolog events; otherwise lines are formatted with fixed-width columns.
func New(opts Options) (*Adapter, error) {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	if opts.JSON {
		l := zerolog.New(out).With().Timestamp().Logger()
		return NewAdapter(&l), nil
	}

	output := zerolog.ConsoleWriter{
		Out:             out,
		NoColor:         !opts.Colored,
		TimeFormat:      opts.TimeLayout,
		FormatLevel:     formatLevel,
		FormatMessage:   formatMessage,
		FormatCaller:    formatCaller,
		FormatTimestamp: func(i interface{}) string { return formatTimestamp(i, opts.TimeLayout) },
	}

	l := zerolog.New(output).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return NewAdapter(&l), nil
}

func formatLevel(i interface{}) string {
	level, ok := i.(string)
	if !ok {
		return "UNKNOWN"
	}

	switch level {
	case zerolog.LevelTraceValue, zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelFatalValue:
		return term.Redf("[FTL]")
	case zerolog.LevelErrorValue:
		return term.Redf("[ERR]")
	default:
		return term.Whitef("[UNK]")
	}
}

func formatMessage(i interface{}) string {
	const maxSize = 64

	msg, ok := i.(string)
	if !ok || len(msg) == 0 {
		return ">"
	}

	if len(msg) > maxSize {
		msg = msg[:maxSize]
	}

	return term.Whitef("> %-*s", maxSize, msg)
}

func formatCaller(i interface{}) string {
	const maxFileSize = 16
	const maxLineSize = 4

	fname, ok := i.(string)
	if !ok || len(fname) == 0 {
		return ""
	}

	caller := filepath.Base(fname)
	file, line, found := strings.Cut(caller, ":")
	if !found {
		return caller
	}

	if len(file) > maxFileSize {
		file = file[:maxFileSize]
	}
	if len(line) > maxLineSize {
		line = line[len(line)-maxLineSize:]
	}

	return term.Yellowf("[%-*s:%*s]", maxFileSize, file, maxLineSize, line)
}

func formatTimestamp(i interface{}, layout string) string {
	raw, ok := i.(string)
	if !ok {
		return term.Cyanf("[%v]", i)
	}

	if ts, err := time.ParseInLocation(zerolog.TimeFieldFormat, raw, time.Local); err == nil {
		raw = ts.In(time.Local).Format(layout)
	}

	return term.Cyanf("[%s]", raw)
}
