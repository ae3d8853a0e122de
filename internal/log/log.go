package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level is the severity of a log message
type Level int

const (
	// LevelDebug traces compiler internals (cell passes, cache hits, collaborator calls)
	LevelDebug Level = iota
	// LevelInfo reports files compiled and server lifecycle events
	LevelInfo
	// LevelWarn reports recoverable problems such as unreadable token files
	LevelWarn
	// LevelError reports failures that drop output
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var (
	mu       sync.Mutex
	output   io.Writer = os.Stderr
	minLevel Level     = LevelInfo
	prefix   string    = "[DOODLE]"
)

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// SetOutput sets the output destination
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetLevel sets the minimum log level to display
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// GetLevel returns the current minimum log level
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return minLevel
}

// Enabled reports whether messages at level would be written.
func Enabled(level Level) bool {
	return level >= GetLevel()
}

func Debug(format string, args ...any) {
	write(LevelDebug, format, args...)
}

func Info(format string, args ...any) {
	write(LevelInfo, format, args...)
}

func Warn(format string, args ...any) {
	write(LevelWarn, format, args...)
}

func Error(format string, args ...any) {
	write(LevelError, format, args...)
}

func write(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if level < minLevel || output == nil {
		return
	}

	// [DOODLE] WARN message
	fmt.Fprintf(output, "%s %s %s\n", prefix, level, fmt.Sprintf(format, args...))
}
