package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	assert.Equal(t, defaultLogger, FromContext(nil)) //nolint:staticcheck // nil guard
	assert.Equal(t, defaultLogger, FromContext(context.Background()))

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Equal(t, custom, FromContext(WithContext(context.Background(), custom)))
}

func TestContextIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithCorrelationID(ctx, "corr-789")
	ctx = With(ctx, slog.String("quote_id", "q-1"))

	FromContext(ctx).InfoContext(ctx, "loaded quote")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-123"`)
	assert.Contains(t, out, `"correlation_id":"corr-789"`)
	assert.Contains(t, out, `"quote_id":"q-1"`)
}

func TestNewWithWriter_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{format: "json", want: `"msg":"quote created"`},
		{format: "text", want: `msg="quote created"`},
		{format: "pretty", want: "quote created"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger, closer := NewWithWriter(Config{Level: "info", Format: tt.format, Service: "quotes", Version: "1.0.0"}, &buf)
			t.Cleanup(func() { _ = closer.Close() })

			logger.Info("quote created")

			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestNewWithWriter_PrettyRedacts(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewWithWriter(Config{Level: "debug", Format: "pretty"}, &buf)

	logger.With(slog.String("password", "hunter2")).Info("connecting", slog.String("dsn", "postgres://u:p@db/quotes"))

	out := buf.String()
	assert.Contains(t, out, "connecting")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "u:p@db")
}

func TestNewWithWriter_WithFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "quotes.log")

	var buf bytes.Buffer
	logger, closer := NewWithWriter(Config{
		Level:  "info",
		Format: "json",
		File:   FileConfig{Enabled: true, Path: logFile, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1},
	}, &buf)

	logger.Info("written twice")
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), "written twice")

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written twice")
}

func TestNewWithWriter_TraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewWithWriter(Config{Level: "trace", Format: "json"}, &buf)

	logger.Log(context.Background(), LevelTrace, "catalog response")

	assert.Contains(t, buf.String(), `"level":"TRACE"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	assert.Equal(t, charmlog.DebugLevel, slogToCharmLevel(LevelTrace))
	assert.Equal(t, charmlog.DebugLevel, slogToCharmLevel(slog.LevelDebug))
	assert.Equal(t, charmlog.InfoLevel, slogToCharmLevel(slog.LevelInfo))
	assert.Equal(t, charmlog.WarnLevel, slogToCharmLevel(slog.LevelWarn))
	assert.Equal(t, charmlog.ErrorLevel, slogToCharmLevel(slog.Level(12)))
}

func TestMultiHandler(t *testing.T) {
	var info, debug bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(h).WithGroup("quote").With(slog.String("id", "q-1"))
	logger.Debug("debug only")
	logger.Info("both")

	assert.NotContains(t, info.String(), "debug only")
	assert.Contains(t, info.String(), "both")
	assert.Contains(t, debug.String(), "debug only")
	assert.Contains(t, debug.String(), `"quote":{"id":"q-1"`)
}

func TestNewReplaceAttr(t *testing.T) {
	tests := []struct {
		field  string
		value  string
		redact bool
	}{
		{field: "password", value: "s3cret", redact: true},
		{field: "api_key", value: "catalog-key", redact: true},
		{field: "dsn", value: "postgres://quotes:pw@db/quotes", redact: true},
		{field: "authorization", value: "Bearer abc123", redact: true},
		{field: "secret_token", value: "prefix-covered", redact: true},
		{field: "database_url", value: "postgres://quotes:pw@db/quotes", redact: true},
		{field: "quote_number", value: "ORC-001", redact: false},
		{field: "client_name", value: "Maria", redact: false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()}))

			logger.Info("test", slog.String(tt.field, tt.value))

			out := buf.String()
			assert.Contains(t, out, tt.field)

			if tt.redact {
				assert.NotContains(t, out, tt.value)
			} else {
				assert.Contains(t, out, tt.value)
			}
		})
	}
}
