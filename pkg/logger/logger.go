package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	ERROR
)

var (
	Logger       *slog.Logger
	currentLevel LogLevel = INFO
)

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type Options struct {
	Level string
	File  string
}

// Configure rebuilds the package logger from the given options. An invalid
// level or unwritable file falls back to the previous level and stdout; the
// returned error reports what was ignored.
func Configure(opts Options) error {
	level := currentLevel
	var levelErr error
	if strings.TrimSpace(opts.Level) != "" {
		level, levelErr = ParseLogLevel(opts.Level)
	}

	writer := io.Writer(os.Stdout)
	var fileErr error
	if strings.TrimSpace(opts.File) != "" {
		file, openErr := openLogFile(opts.File)
		if openErr != nil {
			fileErr = openErr
		} else {
			writer = io.MultiWriter(os.Stdout, file)
		}
	}

	currentLevel = level
	Logger = slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: slogLevel(level)}))

	if levelErr != nil || fileErr != nil {
		return errors.Join(levelErr, fileErr)
	}
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func SetLogLevel(level LogLevel) {
	currentLevel = level
}

func Enabled(level LogLevel) bool {
	return currentLevel <= level
}

func ParseLogLevel(value string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("invalid log level %q", value)
	}
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case DEBUG:
		return slog.LevelDebug
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Debug(msg string, args ...any) {
	if currentLevel <= DEBUG {
		Logger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if currentLevel <= INFO {
		Logger.Info(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if currentLevel <= ERROR {
		Logger.Error(msg, args...)
	}
}
