package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/xeptore/panpup/config"
	"github.com/xeptore/panpup/constants"
)

func FromConfig(conf config.Log) zerolog.Logger {
	return New(os.Stderr, conf)
}

func New(out io.Writer, conf config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(conf.Level)
	if nil != err {
		panic("invalid logging level: " + conf.Level)
	}

	switch format := strings.ToLower(conf.Format); format {
	case "json":
		return newJSON(out).Level(level)
	case "pretty":
		return newPretty(out).Level(level)
	case "auto":
		if isTerminal(out) {
			return newPretty(out).Level(level)
		}

		return newJSON(out).Level(level)
	default:
		panic("invalid logging format: " + conf.Format)
	}
}

func NewDefault() zerolog.Logger {
	return newPretty(os.Stderr).Level(zerolog.InfoLevel)
}

func newJSON(out io.Writer) zerolog.Logger {
	return zerolog.
		New(out).
		Hook(&stackHook{}).
		With().
		Timestamp().
		Str("version", constants.Version).
		Str("compile_time", constants.CompileTime).
		Logger()
}

func newPretty(out io.Writer) zerolog.Logger {
	return zerolog.
		New(zerolog.ConsoleWriter{ //nolint:exhaustruct
			Out:          out,
			NoColor:      !isTerminal(out),
			TimeFormat:   time.RFC3339,
			TimeLocation: time.UTC,
		}).
		Hook(&stackHook{}).
		With().
		Timestamp().
		Str("version", constants.Version).
		Str("compile_time", constants.CompileTime).
		Logger()
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
