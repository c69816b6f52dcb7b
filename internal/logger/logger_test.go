package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		"info":   zapcore.InfoLevel,
		" WARN ": zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"panic":  zapcore.PanicLevel,
		"fatal":  zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextHelpers verifies scoped loggers carry names and fields.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())
	ctx = WithName(ctx, "arclight-deploy")
	ctx = WithKV(ctx, "server", "Survival")
	ctx = WithFields(ctx, "instance", "abc")

	WarnKV(ctx, "Instance skipped", "reason", "missing data folder")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "arclight-deploy", entries[0].LoggerName)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	require.Equal(t, "Survival", fields["server"])
	require.Equal(t, "abc", fields["instance"])
	require.Equal(t, "missing data folder", fields["reason"])
}

// TestNewWithFile checks that the file sink records debug messages as JSON.
func TestNewWithFile(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := NewWithFile(zap.NewAtomicLevelAt(zapcore.ErrorLevel), zapcore.AddSync(&buf))
	ctx := ToContext(context.Background(), l)

	DebugKV(ctx, "Digest computed", "artifact", "arclight-1.jar")

	require.Contains(t, buf.String(), `"message":"Digest computed"`)
	require.Contains(t, buf.String(), `"artifact":"arclight-1.jar"`)

	require.Equal(t, "/var/log/deploy.log", NewRotatingFile("/var/log//deploy.log").Filename)
}
