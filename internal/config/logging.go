package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogger creates a dual-output logger: text to stderr, JSON to a
// rotated file. The file side uses lumberjack so long-running chat sessions
// cannot grow the log without bound.
//
// While the TUI owns the terminal, stderr output would corrupt the display,
// so callers running the chat view pass stderrEnabled=false.
func SetupLogger(logFile string, level slog.Level, stderrEnabled bool) *slog.Logger {
	fileHandler := slog.NewJSONHandler(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}, &slog.HandlerOptions{Level: level})

	if !stderrEnabled {
		return slog.New(fileHandler)
	}

	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}

// SetupLoggerWithWriters builds the same fanout logger as SetupLogger but
// against caller-supplied writers, so tests can capture both streams without
// touching stderr or the filesystem.
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(stderrHandler, fileHandler))
}
