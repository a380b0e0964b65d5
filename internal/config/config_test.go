package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, 12*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, "/score_evaluation", cfg.Client.ListPage)
	assert.Equal(t, "host=127.0.0.1 port=5432 user= password= dbname= sslmode=disable", cfg.Database.DSN())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "perf")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PERF_BASE_URL", "http://perf.local")
	t.Setenv("PERF_TOKEN", "tok")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "perf", cfg.Database.DBName)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "http://perf.local", cfg.Client.BaseURL)
	assert.Equal(t, "tok", cfg.Client.Token)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("PERFEVAL_TEST_KEY", "x")
	assert.Equal(t, "x", GetEnvOrDefault("PERFEVAL_TEST_KEY", "y"))
	assert.Equal(t, "y", GetEnvOrDefault("PERFEVAL_TEST_MISSING", "y"))
}
