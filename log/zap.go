package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Zap implements Logger with zap as the underlying logging library. It is an
// alternative to the zerolog-backed logger for callers already standardized
// on zap elsewhere in their stack.
type Zap struct {
	level Level
	sugar *zap.SugaredLogger
}

// enforce compilation error
var _ Logger = (*Zap)(nil)

// NewZap creates a Logger backed by zap, writing to the given writers at level.
func NewZap(level Level, writers ...io.Writer) *Zap {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stderr}
	}
	syncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		syncers = append(syncers, zapcore.AddSync(w))
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zap.CombineWriteSyncers(syncers...), toZapLevel(level))
	zlogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Zap{level: level, sugar: zlogger.Sugar()}
}

func (z *Zap) Debug(v ...any) { z.sugar.Debug(v...) }

func (z *Zap) Debugf(format string, v ...any) { z.sugar.Debugf(format, v...) }

func (z *Zap) Info(v ...any) { z.sugar.Info(v...) }

func (z *Zap) Infof(format string, v ...any) { z.sugar.Infof(format, v...) }

func (z *Zap) Warn(v ...any) { z.sugar.Warn(v...) }

func (z *Zap) Warnf(format string, v ...any) { z.sugar.Warnf(format, v...) }

func (z *Zap) Error(v ...any) { z.sugar.Error(v...) }

func (z *Zap) Errorf(format string, v ...any) { z.sugar.Errorf(format, v...) }

func (z *Zap) LogLevel() Level { return z.level }

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	case PanicLevel:
		return zapcore.PanicLevel
	default:
		return zapcore.InfoLevel
	}
}
