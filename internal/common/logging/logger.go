package logging

import (
	"os"
	"sync"
)

var (
	globalMu     sync.RWMutex
	globalLogger Logger
)

// SetGlobalLogger replaces the process logger. The command line installs its
// configured logger here so that MustSync flushes it on exit.
func SetGlobalLogger(logger Logger) {
	globalMu.Lock()
	globalLogger = OrNop(logger)
	globalMu.Unlock()
}

// GetGlobalLogger returns the process logger. Until SetGlobalLogger is
// called it writes to standard error at the level named by LOG_LEVEL.
func GetGlobalLogger() Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()
	if logger != nil {
		return logger
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = newZapAdapter(LogConfig{Level: ParseLevel(os.Getenv("LOG_LEVEL"))})
	}
	return globalLogger
}

// MustSync flushes the process logger. Sync errors are dropped: standard
// error reports EINVAL on some platforms.
func MustSync() {
	if z, ok := GetGlobalLogger().(*ZapAdapter); ok {
		_ = z.Sync()
	}
}

// OrNop returns logger, or a logger that discards everything when logger is nil
func OrNop(logger Logger) Logger {
	if logger == nil {
		return NewNopLogger()
	}
	return logger
}
