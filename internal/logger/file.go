package logger

import (
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// maxLogFileSizeMB is the size at which the log file is rotated.
	maxLogFileSizeMB = 20
	// maxLogFileBackups is the number of rotated files kept.
	maxLogFileBackups = 5
	// maxLogFileAgeDays is how long rotated files are kept.
	maxLogFileAgeDays = 30
)

// NewRotatingFile returns a size-rotated, gzip-compressed log file writer.
func NewRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Clean(path),
		MaxSize:    maxLogFileSizeMB,
		MaxBackups: maxLogFileBackups,
		MaxAge:     maxLogFileAgeDays,
		Compress:   true,
	}
}

// NewWithFile creates a logger that writes to the console at level and to
// file as JSON at debug level, so the file keeps a complete audit of every run.
func NewWithFile(level zapcore.LevelEnabler, file zapcore.WriteSyncer, options ...zap.Option) *zap.SugaredLogger {
	if level == nil {
		level = defaultLevel
	}

	fileEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "time",
		MessageKey:     "message",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})

	core := zapcore.NewTee(
		newConsoleCore(level),
		zapcore.NewCore(fileEncoder, file, zapcore.DebugLevel),
	)

	return zap.New(core, options...).Sugar()
}
