// Package logging provides a shared logger and log utilities to be used in all internal packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

type Logger struct {
	zerolog.Logger
}

// L is the logger used by every package. Replace it with SetServerLogger or,
// in tests, PatchLogger.
var L = &Logger{Logger: newLogger(os.Stderr)}

func newLogger(writer io.Writer) zerolog.Logger {
	if isTerminal(writer) {
		writer = zerolog.ConsoleWriter{
			Out:         writer,
			TimeFormat:  time.Kitchen,
			FormatLevel: consoleFormatLevel(false),
		}
	}

	return zerolog.New(writer).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

// SetServerLogger configures L for a long running server process. Logs are
// written as JSON unless stderr is a terminal, and include the caller.
func SetServerLogger() {
	level := L.GetLevel()
	L = &Logger{Logger: newLogger(os.Stderr).With().Caller().Logger().Level(level)}
}

// SetLevel changes the minimum level of messages written by L. Valid values
// are trace, debug, info, warn, and error.
func SetLevel(levelName string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelName, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	L.Logger = L.Logger.Level(level)
	return nil
}

func isTerminal(writer io.Writer) bool {
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func Tracef(format string, v ...interface{}) {
	L.Trace().CallerSkipFrame(1).Msgf(format, v...)
}

func Debugf(format string, v ...interface{}) {
	L.Debug().CallerSkipFrame(1).Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	L.Info().CallerSkipFrame(1).Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	L.Warn().CallerSkipFrame(1).Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	L.Error().CallerSkipFrame(1).Msgf(format, v...)
}

// consoleFormatLevel returns a level formatter for zerolog.ConsoleWriter with
// fixed width names.
func consoleFormatLevel(noColor bool) zerolog.Formatter {
	return func(i interface{}) string {
		l, ok := i.(string)
		if !ok {
			return fmt.Sprintf("%v", i)
		}

		switch l {
		case zerolog.LevelTraceValue:
			return colorize("TRACE", colorMagenta, noColor)
		case zerolog.LevelDebugValue:
			return colorize("DEBUG", colorYellow, noColor)
		case zerolog.LevelInfoValue:
			return colorize("INFO ", colorGreen, noColor)
		case zerolog.LevelWarnValue:
			return colorize("WARN ", colorRed, noColor)
		case zerolog.LevelErrorValue, zerolog.LevelFatalValue, zerolog.LevelPanicValue:
			return colorize(strings.ToUpper(l), colorBoldRed, noColor)
		default:
			return colorize("?????", colorBold, noColor)
		}
	}
}

const (
	colorRed     = "31"
	colorGreen   = "32"
	colorYellow  = "33"
	colorMagenta = "35"
	colorBold    = "1"
	colorBoldRed = "1;31"
)

func colorize(s string, code string, disabled bool) string {
	if disabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
