package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fitcoin-app/fitcoin/pkg/config"
)

func TestNew_WithSentrySink(t *testing.T) {
	cfg := config.Config{
		AppName: "fitcoin",
		AppEnv:  "test",
		Logger:  config.LoggerConfig{Level: "info", Format: "text"},
		Sentry:  config.SentryConfig{Enabled: true},
	}

	log := New(cfg)
	assert.NotNil(t, log)

	// The Sentry hub is not initialized here; fan-out must still accept
	// records without panicking.
	log.Error("boom", slog.String("source", "test"))
}

func TestSetLevel(t *testing.T) {
	cfg := config.Config{
		AppName: "fitcoin",
		AppEnv:  "test",
		Logger:  config.LoggerConfig{Level: "info", Format: "text"},
	}

	log := New(cfg)
	assert.False(t, log.Enabled(t.Context(), slog.LevelDebug))

	SetLevel("debug")
	t.Cleanup(func() { SetLevel("info") })

	assert.True(t, log.Enabled(t.Context(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("unknown"))
}
