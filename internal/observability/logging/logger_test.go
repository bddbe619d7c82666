package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-aggregator/internal/handler/http/requestid"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewLogger_Env(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantWarn  bool
		wantInfo  bool
	}{
		{name: "defaults", wantInfo: true, wantWarn: true},
		{name: "debug json", level: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{name: "error text", level: "error", format: "text"},
		{name: "warn text", level: "warn", format: "TEXT", wantWarn: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLevel, tt.level)
			t.Setenv(EnvFormat, tt.format)

			logger := NewLogger()
			require.NotNil(t, logger)
			ctx := context.Background()
			assert.Equal(t, tt.wantDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, logger.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.wantWarn, logger.Enabled(ctx, slog.LevelWarn))
			assert.True(t, logger.Enabled(ctx, slog.LevelError))
		})
	}
}

func TestNewTextLoggerTo(t *testing.T) {
	t.Setenv(EnvLevel, "info")

	var buf bytes.Buffer
	logger := NewTextLoggerTo(&buf)
	logger.Debug("hidden")
	logger.Info("feed checked", slog.String("source_id", "clarin"), slog.Int("items", 12))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="feed checked"`)
	assert.Contains(t, out, "source_id=clarin")
	assert.Contains(t, out, "items=12")
}

func TestHandlerOptions_AddSource(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	assert.True(t, handlerOptions().AddSource)

	t.Setenv(EnvLevel, "error")
	assert.False(t, handlerOptions().AddSource)

	require.NoError(t, os.Unsetenv(EnvLevel))
	assert.True(t, handlerOptions().AddSource, "既定の info でも source を付ける")
}

func TestWithRequestID(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		wantID any
	}{
		{"with id", requestid.WithRequestID(context.Background(), "req-7f3a"), "req-7f3a"},
		{"empty id", requestid.WithRequestID(context.Background(), ""), nil},
		{"no id", context.Background(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WithRequestID(tt.ctx, jsonLogger(&buf)).Info("news request")

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.wantID, lines[0]["request_id"])
		})
	}
}

func TestForFeed(t *testing.T) {
	var buf bytes.Buffer
	logger := ForFeed(jsonLogger(&buf), "elpais", "https://feeds.elpais.com/portada")

	logger.Warn("feed fetch failed", slog.String("error", "timeout"))
	logger.Debug("snapshot saved")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, "elpais", l["source_id"])
		assert.Equal(t, "https://feeds.elpais.com/portada", l["feed_url"])
	}
	assert.Equal(t, "timeout", lines[0]["error"])
	assert.Equal(t, "WARN", lines[0]["level"])
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	base := jsonLogger(&buf)

	assert.Same(t, slog.Default(), FromContext(context.Background()))
	assert.Same(t, slog.Default(), FromContext(context.WithValue(context.Background(), ctxKey{}, "not a logger")))

	ctx := requestid.WithRequestID(context.Background(), "req-42")
	ctx = WithLogger(ctx, WithRequestID(ctx, base))

	// パイプライン側は FromContext + ForFeed で受け取る
	ForFeed(FromContext(ctx), "g1", "https://g1.globo.com/rss").Info("aggregation completed")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req-42", lines[0]["request_id"])
	assert.Equal(t, "g1", lines[0]["source_id"])
}

func BenchmarkForFeed(b *testing.B) {
	var buf bytes.Buffer
	base := jsonLogger(&buf)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ForFeed(base, "elpais", "https://feeds.elpais.com/portada").Info("feed fetched")
		buf.Reset()
	}
}
