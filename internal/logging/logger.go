// Package logging provides config-driven categorized file logging for ragchat.
// Logs are written under the configured directory with one file per category
// per day. When debug mode is off every logger is a no-op, so the terminal UI
// never receives log output.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot   Category = "boot"   // Startup, config resolution
	CategoryAPI    Category = "api"    // HTTP calls to the retrieval service
	CategoryChat   Category = "chat"   // Send lifecycle and loader state
	CategoryUpload Category = "upload" // Per-file upload lifecycle
	CategoryUI     Category = "ui"     // Input surface events
	CategoryWatch  Category = "watch"  // Drop-folder watcher
)

// Settings mirrors config.LoggingConfig so this package has no dependency
// on the config package.
type Settings struct {
	DebugMode  bool
	Level      string
	Format     string // json or console
	Categories map[string]bool
}

// Logger is a printf-style logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex

	logsDir  string
	settings Settings
	level    zapcore.Level
	configMu sync.RWMutex
)

// Initialize sets the log directory and settings. It is safe to call again
// (for example from tests); open files are closed first.
func Initialize(dir string, s Settings) error {
	if s.DebugMode && dir == "" {
		return fmt.Errorf("log directory required when debug mode is enabled")
	}
	CloseAll()

	configMu.Lock()
	settings = s
	level = parseLevel(s.Level)
	logsDir = dir
	configMu.Unlock()

	if !s.DebugMode {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== ragchat logging initialized ===")
	boot.Info("Logs directory: %s", dir)
	boot.Info("Log level: %s", level)
	if len(s.Categories) == 0 {
		boot.Info("All categories enabled (no category filter)")
	}
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether debug logging is enabled
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return settings.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
// Categories missing from the filter are enabled.
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !settings.DebugMode {
		return false
	}
	enabled, exists := settings.Categories[string(category)]
	return !exists || enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	configMu.RLock()
	dir, format, lvl := logsDir, settings.Format, level
	configMu.RUnlock()

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(file), lvl)
	l := &Logger{
		category: category,
		file:     file,
		sugar:    zap.New(core).With(zap.String("cat", string(category))).Sugar(),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// With returns a logger carrying extra structured fields.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	return &Logger{category: l.category, sugar: l.sugar.With(keysAndValues...)}
}

// CloseAll flushes and closes all open log files (call at shutdown)
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.sugar != nil {
			_ = l.sugar.Sync()
		}
		if l.file != nil {
			_ = l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debug(format, args...)
}

// Chat logs to the chat category
func Chat(format string, args ...interface{}) {
	Get(CategoryChat).Info(format, args...)
}

// Upload logs to the upload category
func Upload(format string, args ...interface{}) {
	Get(CategoryUpload).Info(format, args...)
}

// UIDebug logs debug to the ui category
func UIDebug(format string, args ...interface{}) {
	Get(CategoryUI).Debug(format, args...)
}
