package core

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerConfig(t *testing.T) {
	var zero LoggerConfig
	assert.False(t, zero.Enabled())
	assert.False(t, zero.Logger().Enabled(context.Background(), slog.LevelError))

	assert.False(t, DisabledLogger().Enabled())
	assert.False(t, CustomLogger(nil).Enabled())

	assert.True(t, DefaultLogger().Enabled())
	assert.Same(t, slog.Default(), DefaultLogger().Logger())

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := CustomLogger(custom)
	assert.True(t, cfg.Enabled())
	cfg.Logger().Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), "hello")
}
