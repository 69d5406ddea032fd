package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, "redis", cfg.QueueBackend)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Zero(t, cfg.SeedRatePerMin, "seed guard is opt-in")
	assert.Equal(t, 5*time.Minute, cfg.RosterCacheTTL)
	assert.Equal(t, Seed{
		Teachers:          20,
		Students:          100,
		TeacherAttendance: 10_000,
		StudentAttendance: 50_000,
		WindowDays:        120,
		BatchSize:         1_000,
	}, cfg.Seed)
	assert.Empty(t, cfg.Warnings)
	assert.False(t, cfg.Production())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_ENV", "PROD")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("QUEUE_BACKEND", "memory")
	t.Setenv("ROSTER_CACHE_TTL", "0")
	t.Setenv("SEED_BATCH_SIZE", "250")
	t.Setenv("SEED_RANDOM_SEED", "42")

	cfg := Load()

	assert.True(t, cfg.Production())
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.QueueBackend)
	assert.Equal(t, time.Duration(0), cfg.RosterCacheTTL)
	assert.Equal(t, 250, cfg.Seed.BatchSize)
	assert.Equal(t, uint64(42), cfg.Seed.RandomSeed)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("BATCH_CONCURRENCY", "lots")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("QUEUE_BACKEND", "kafka")

	cfg := Load()

	assert.Equal(t, 8, cfg.BatchWorkers)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "redis", cfg.QueueBackend)
	assert.Len(t, cfg.Warnings, 2)
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SEED_TEACHERS=7\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("SEED_TEACHERS") })

	cfg := Load()

	assert.Equal(t, 7, cfg.Seed.Teachers)
}

func TestLoggerLevel(t *testing.T) {
	log, err := App{Env: "dev", LogLevel: "warn"}.Logger()
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = App{Env: "prod", LogLevel: "loud"}.Logger()
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
