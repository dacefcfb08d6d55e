package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutEnvFile(t *testing.T) {
	// Given
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("HTTP_PORT", "")

	// When
	config, err := LoadConfig(nil)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "8080", config.HTTPPort)
	assert.Equal(t, StoragePostgres, config.StorageDriver)
	assert.Equal(t, 2*time.Minute, config.OfferGracePeriod)
	assert.InDelta(t, 25.0, config.AverageSpeedKmh, 1e-9)
	assert.True(t, config.OpenAPIValidation)
	assert.Nil(t, config.KafkaBrokers())
}

func TestLoadConfig_EnvFileAndFlags(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatch.env")
	content := "HTTP_PORT=9000\nSTORAGE_DRIVER=postgres\nKAFKA_HOST=k1:9092,k2:9092\nOFFER_GRACE_PERIOD=90s\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	for _, key := range []string{"HTTP_PORT", "STORAGE_DRIVER", "KAFKA_HOST", "OFFER_GRACE_PERIOD", "LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	// When
	config, err := LoadConfig([]string{"--env-file", path, "--http-port", "9100", "--storage", "memory"})

	// Then
	require.NoError(t, err)
	assert.Equal(t, "9100", config.HTTPPort)
	assert.Equal(t, StorageMemory, config.StorageDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, config.KafkaBrokers())
	assert.Equal(t, 90*time.Second, config.OfferGracePeriod)
	assert.Equal(t, slog.LevelDebug, config.LogLevel)
}

func TestLoadConfig_ExplicitMissingEnvFileFails(t *testing.T) {
	// When
	_, err := LoadConfig([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env")})

	// Then
	require.Error(t, err)
}

func TestLoadConfig_RejectsMalformedValues(t *testing.T) {
	// Given
	t.Chdir(t.TempDir())
	t.Setenv("OFFER_GRACE_PERIOD", "two minutes")

	// When
	_, err := LoadConfig(nil)

	// Then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OFFER_GRACE_PERIOD")
}

func TestConfig_ValidateRejectsUnknownStorage(t *testing.T) {
	// Given
	config := Config{
		HTTPPort:         "8080",
		StorageDriver:    "sqlite",
		OfferGracePeriod: time.Minute,
		PresenceWindow:   time.Minute,
		AverageSpeedKmh:  30,
	}

	// When
	err := config.Validate()

	// Then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}
