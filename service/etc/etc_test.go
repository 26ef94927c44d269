package etc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	conf, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, ":8080", conf.Server.Addr)
	assert.Equal(t, 10*time.Second, conf.Server.ShutdownTimeout)
	assert.Empty(t, conf.Server.TrustedProxies)
	assert.Equal(t, 2.0, conf.Server.RateLimit.RPS)
	assert.Equal(t, 10, conf.Server.RateLimit.Burst)
	assert.Equal(t, "memory", conf.Database.Type)
	assert.Equal(t, 5432, conf.Database.Postgres.Port)
	assert.Equal(t, "coalhub", conf.Database.Redis.Prefix)
	assert.Equal(t, "local", conf.Storage.Type)
	assert.Equal(t, int64(10485760), conf.Storage.MaxUploadSize)
	assert.False(t, conf.Events.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, conf.Events.Kafka.Brokers)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
database:
  type: sqlite
  sqlite:
    path: /tmp/records.db
server:
  shutdown_timeout: 3s
  trusted_proxies: ["10.0.0.0/8"]
`)
	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, "sqlite", conf.Database.Type)
	assert.Equal(t, "/tmp/records.db", conf.Database.SQLite.Path)
	assert.Equal(t, 3*time.Second, conf.Server.ShutdownTimeout)
	assert.Equal(t, []string{"10.0.0.0/8"}, conf.Server.TrustedProxies)
	// untouched keys keep their defaults
	assert.Equal(t, ":8080", conf.Server.Addr)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("COALHUB_DATABASE_TYPE", "redis")
	t.Setenv("COALHUB_DATABASE_REDIS_ADDR", "cache:6379")
	t.Setenv("COALHUB_SERVER_ADDR", ":9090")

	conf, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis", conf.Database.Type)
	assert.Equal(t, "cache:6379", conf.Database.Redis.Addr)
	assert.Equal(t, ":9090", conf.Server.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 80\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"database type", "database:\n  type: mongo\n", "database.type"},
		{"storage type", "storage:\n  type: s3\n", "storage.type"},
		{"log level", "log_level: loud\n", "log_level"},
		{"rate limit", "server:\n  rate_limit:\n    rps: 0\n", "rate_limit"},
		{"upload size", "storage:\n  max_upload_size: 0\n", "max_upload_size"},
		{"events without topic", "events:\n  enabled: true\n  kafka:\n    topic: \"\"\n", "events.kafka"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
