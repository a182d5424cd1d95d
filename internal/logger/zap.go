package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
	closer io.Closer
}

// defaultZapLevel defines the fallback log level when an unknown level string is provided.
const defaultZapLevel = zapcore.DebugLevel

// toZapLevel converts a textual level to zapcore.Level using known level constants.
func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// newConsoleCore builds a zapcore.Core with a console encoder targeting w.
func newConsoleCore(w zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	encoder := zapcore.NewConsoleEncoder(encoderConfig())
	return zapcore.NewCore(encoder, zapcore.Lock(w), zap.NewAtomicLevelAt(level))
}

// newFileCore appends JSON lines to path.
func newFileCore(path string, level zapcore.Level) (zapcore.Core, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %q: %w", path, err)
	}
	encoder := zapcore.NewJSONEncoder(encoderConfig())
	return zapcore.NewCore(encoder, zapcore.Lock(f), zap.NewAtomicLevelAt(level)), f, nil
}

// New constructs a sugared zap logger. When opts.File is set, records go to
// both stdout and the file.
func New(opts Options) (*Logger, error) {
	return newLogger(os.Stdout, opts)
}

// NewTo is New with w in place of stdout.
func NewTo(w io.Writer, opts Options) (*Logger, error) {
	return newLogger(zapcore.AddSync(w), opts)
}

func newLogger(stdout zapcore.WriteSyncer, opts Options) (*Logger, error) {
	level := toZapLevel(opts.Level)
	core := newConsoleCore(stdout, level)

	var closer io.Closer
	if opts.File != "" {
		fileCore, f, err := newFileCore(opts.File, level)
		if err != nil {
			// still hand back a usable stdout logger
			return &Logger{SugaredLogger: zap.New(core).Sugar()}, err
		}
		core = zapcore.NewTee(core, fileCore)
		closer = f
	}
	return &Logger{SugaredLogger: zap.New(core).Sugar(), closer: closer}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Close flushes buffered records and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
