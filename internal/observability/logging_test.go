package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithBuildID(ctx, "build-1")
	ctx = WithStage(ctx, "parse")
	ctx = WithDocument(ctx, "posts/a.mdx")

	lc := GetContext(ctx)
	assert.Equal(t, "build-1", lc.BuildID)
	assert.Equal(t, "parse", lc.Stage)
	assert.Equal(t, "posts/a.mdx", lc.Document)
}

func TestEmptyContext(t *testing.T) {
	assert.Equal(t, LogContext{}, GetContext(context.Background()))
	assert.Empty(t, getLogAttrs(context.Background()))
}

func TestStageOverride(t *testing.T) {
	ctx := WithStage(context.Background(), "discover")
	child := WithStage(ctx, "render")

	assert.Equal(t, "discover", GetContext(ctx).Stage)
	assert.Equal(t, "render", GetContext(child).Stage)
}

func withDefaultLogger(t *testing.T, l *slog.Logger) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(l)
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestInfoContextPrependsContext(t *testing.T) {
	var buf bytes.Buffer
	withDefaultLogger(t, NewLogger(slog.LevelDebug, "json", &buf))

	ctx := WithStage(WithBuildID(context.Background(), "b-42"), "render")
	InfoContext(ctx, "rendered page", slog.String("link", "/index.html"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "rendered page", record["msg"])
	assert.Equal(t, "b-42", record["build.id"])
	assert.Equal(t, "render", record["stage"])
	assert.Equal(t, "/index.html", record["link"])
}

func TestNewLoggerLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	withDefaultLogger(t, NewLogger(slog.LevelWarn, "text", &buf))

	DebugContext(context.Background(), "hidden")
	InfoContext(context.Background(), "hidden too")
	WarnContext(context.Background(), "shown")
	ErrorContext(context.Background(), "also shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}
