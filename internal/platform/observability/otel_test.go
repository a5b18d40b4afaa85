package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "false")

	cfg, err := LoadConfig("roopet-api")
	require.NoError(t, err)
	assert.Equal(t, "roopet-api", cfg.ServiceName)
	assert.Equal(t, "local", cfg.Environment)
	assert.False(t, cfg.OTLPInsecure)
	assert.Equal(t, slog.LevelDebug, parseLevel(cfg.LogLevel))
}

func TestLoadConfig_ServiceNameFromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "custom")
	cfg, err := LoadConfig("roopet-api")
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.ServiceName)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}
