package log

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// DefaultLogger wraps zerolog and writes to stderr.
var DefaultLogger Logger = NewLogger(InfoLevel, os.Stderr)

// DiscardLogger throws away everything written to it, for callers that want
// quiet output without special-casing the nil logger.
var DiscardLogger Logger = NewLogger(DisabledLevel, io.Discard)

// logger implements Logger with zerolog as the backing library.
type logger struct {
	level      Level
	underlying zerolog.Logger
}

// enforce compilation error
var _ Logger = (*logger)(nil)

// NewLogger creates a zerolog-backed Logger writing to w at the given level.
func NewLogger(level Level, w io.Writer) Logger {
	zlevel := toZerologLevel(level)
	zlogger := zerolog.New(w).Level(zlevel).With().Timestamp().Logger()
	return &logger{level: level, underlying: zlogger}
}

func (l *logger) Debug(v ...any) { l.underlying.Debug().Msg(fmt.Sprint(v...)) }

func (l *logger) Debugf(format string, v ...any) { l.underlying.Debug().Msgf(format, v...) }

func (l *logger) Info(v ...any) { l.underlying.Info().Msg(fmt.Sprint(v...)) }

func (l *logger) Infof(format string, v ...any) { l.underlying.Info().Msgf(format, v...) }

func (l *logger) Warn(v ...any) { l.underlying.Warn().Msg(fmt.Sprint(v...)) }

func (l *logger) Warnf(format string, v ...any) { l.underlying.Warn().Msgf(format, v...) }

func (l *logger) Error(v ...any) { l.underlying.Error().Msg(fmt.Sprint(v...)) }

func (l *logger) Errorf(format string, v ...any) { l.underlying.Error().Msgf(format, v...) }

func (l *logger) LogLevel() Level { return l.level }

func toZerologLevel(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarningLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case FatalLevel:
		return zerolog.FatalLevel
	case PanicLevel:
		return zerolog.PanicLevel
	case DisabledLevel:
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
