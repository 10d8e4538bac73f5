// Package log wraps log/slog with component tags for the simulator and tools.
//
//	log.SetLevel(slog.LevelDebug)
//	log.Info(log.ComponentBus, "io store", "reg", "PWM_CTRL", "value", 1)
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Component identifies a subsystem for log filtering.
type Component string

const (
	ComponentBus     Component = "bus"
	ComponentCPU     Component = "cpu"
	ComponentUART    Component = "uart"
	ComponentGPIO    Component = "gpio"
	ComponentPWM     Component = "pwm"
	ComponentMachine Component = "machine"
	ComponentConsole Component = "console"
	ComponentDemo    Component = "demo"
	ComponentTrace   Component = "trace"
)

// Format selects the handler used by the default logger.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

var (
	level = new(slog.LevelVar)

	mu     sync.RWMutex
	logger *slog.Logger
)

func init() {
	level.Set(slog.LevelWarn)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SetLevel sets the minimum level for all logging.
func SetLevel(l slog.Level) { level.Set(l) }

// Level returns the current minimum level.
func Level() slog.Level { return level.Level() }

// ParseLevel accepts debug, info, warn/warning and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat accepts text and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("unknown log format %q", s)
}

// Setup points the default logger at w using the given format.
func Setup(w io.Writer, f Format) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch f {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	SetLogger(slog.New(h))
}

// SetLogger replaces the default logger.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Logger returns the default logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(c Component, msg string, args ...any) {
	Logger().Debug(msg, append([]any{"component", string(c)}, args...)...)
}

func Info(c Component, msg string, args ...any) {
	Logger().Info(msg, append([]any{"component", string(c)}, args...)...)
}

func Warn(c Component, msg string, args ...any) {
	Logger().Warn(msg, append([]any{"component", string(c)}, args...)...)
}

func Error(c Component, msg string, args ...any) {
	Logger().Error(msg, append([]any{"component", string(c)}, args...)...)
}
