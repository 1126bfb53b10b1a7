// Package logging wires zap as the process-wide structured logger.
// Components obtain named sub-loggers so log lines carry their subsystem.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init builds the global logger at the given level ("debug", "info",
// "warn", "error"). An empty level defaults to info.
func Init(level string) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	mu.Lock()
	base = logger
	mu.Unlock()
	return nil
}

// L returns the global logger. Before Init it is a no-op logger, which keeps
// library packages usable from tests without setup.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Named returns a sub-logger for a subsystem ("provider", "store", ...).
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes buffered log entries. Safe to call on shutdown paths.
func Sync() {
	_ = L().Sync()
}
