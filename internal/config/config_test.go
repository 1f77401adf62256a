package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 1000.0, cfg.Placement.ScaleNumerator)
	assert.Equal(t, 1.5, cfg.Placement.MinScale)
	assert.Equal(t, 3.0, cfg.Placement.MaxScale)
	assert.Equal(t, "gravity_and_heading", cfg.Placement.Alignment)
	assert.Equal(t, "static", cfg.Placement.Transition)
	assert.Equal(t, 100, cfg.Label.ImageSize)
	assert.Equal(t, 4.0, cfg.Label.OffsetY)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Equal(t, 30*time.Minute, cfg.IdleTTL())
	assert.Equal(t, 10*time.Minute, cfg.ReportTTL())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PLACEMENT_MAX_SCALE", "4.5")
	t.Setenv("PLACEMENT_TRANSITION", "interpolated")
	t.Setenv("CAMERA_FOV_DEGREES", "not-a-number")
	t.Setenv("SESSION_QUEUE_SIZE", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 4.5, cfg.Placement.MaxScale)
	assert.Equal(t, "interpolated", cfg.Placement.Transition)
	assert.Equal(t, 60.0, cfg.Camera.FieldOfView)
	assert.Equal(t, 8, cfg.Session.QueueSize)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ENV=staging\nREDIS_DB=3\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// Setenv restores the prior state on cleanup; unset so .env supplies the value.
	t.Setenv("ENV", "")
	t.Setenv("REDIS_DB", "")
	require.NoError(t, os.Unsetenv("ENV"))
	require.NoError(t, os.Unsetenv("REDIS_DB"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Server.Env)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"inverted scale bounds", "PLACEMENT_MIN_SCALE", "5"},
		{"zero numerator", "PLACEMENT_SCALE_NUMERATOR", "0"},
		{"unknown alignment", "PLACEMENT_ALIGNMENT", "camera"},
		{"unknown transition", "PLACEMENT_TRANSITION", "bounce"},
		{"geohash precision", "GEOHASH_PRECISION", "13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
