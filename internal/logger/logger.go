package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Options controls where and how verbosely the logger writes.
type Options struct {
	Level string // one of the *Level constants; unknown values mean debug
	File  string // optional path; records are written to stdout and appended here
}

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a singleton logger configured with the provided level.
// The first call initializes the logger; subsequent calls ignore the level
// and return the already initialized instance.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger, _ = New(Options{Level: level})
	})
	return globalLogger
}

// Init sets up the singleton from opts. It must run before the first Get to
// take effect.
func Init(opts Options) (*Logger, error) {
	var err error
	once.Do(func() {
		globalLogger, err = New(opts)
	})
	return globalLogger, err
}
