// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
app:
  name: query-engine
database:
  postgres:
    host: localhost
    port: 5432
    database: maintenance
    user: maint
genai:
  base_url: http://localhost:9090
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 3, cfg.Engine.Router.BreakerFailureThreshold)
	assert.Equal(t, 600000, cfg.Engine.Router.BreakerCooldown)
	assert.Equal(t, 1000, cfg.Engine.Cache.Capacity)
	assert.Equal(t, 0.85, cfg.Engine.Cache.SimilarityThreshold)
	assert.Equal(t, 60, cfg.Engine.Security.AllowThreshold)
	assert.Equal(t, 0.3, cfg.Engine.Fallback.ConfidenceFloor)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_ExplicitValuesWin(t *testing.T) {
	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfig+`
server:
  address: ":9999"
engine:
  router:
    breaker_failure_threshold: 5
  cache:
    capacity: 50
`))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, 5, cfg.Engine.Router.BreakerFailureThreshold)
	assert.Equal(t, 50, cfg.Engine.Cache.Capacity)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfigFile(t, `
app:
  name: query-engine
database:
  postgres:
    host: localhost
    database: maintenance
    user: maint
    password: ${TEST_DB_PASSWORD}
genai:
  base_url: http://localhost:9090
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_RequiredFieldsValidated(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			"missing postgres host",
			`
database:
  postgres:
    database: maintenance
    user: maint
genai:
  base_url: http://localhost:9090
`,
			"database.postgres.host is required",
		},
		{
			"missing genai base url",
			`
database:
  postgres:
    host: localhost
    database: maintenance
    user: maint
`,
			"genai.base_url is required",
		},
		{
			"redis enabled without address",
			`
database:
  postgres:
    host: localhost
    database: maintenance
    user: maint
  redis:
    enabled: true
genai:
  base_url: http://localhost:9090
`,
			"database.redis.address is required",
		},
		{
			"inverted cache ttl bounds",
			`
database:
  postgres:
    host: localhost
    database: maintenance
    user: maint
genai:
  base_url: http://localhost:9090
engine:
  cache:
    min_ttl: 5000000
    max_ttl: 1000
`,
			"min_ttl must not exceed max_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfigFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, GetDuration(2000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
