package configuration

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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
server:
  address: ":9090"
  write_timeout: 2m
provider:
  url: http://localhost:3000/api/data-for-model
  token: secret
  max_body: 1048576
store:
  type: sqlite
  dsn: /var/lib/supplyscore/scores.db
audit:
  file: /var/log/supplyscore/audit.jsonl
publish:
  brokers: localhost:9092
  topic: supplier-scores
history:
  length: 5
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Logger.Level)
	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, 2*time.Minute, config.Server.WriteTimeout)
	assert.Equal(t, "http://localhost:3000/api/data-for-model", config.Provider.URL)
	assert.Equal(t, 30*time.Second, config.Provider.Timeout)
	assert.Equal(t, "secret", config.Provider.Token)
	assert.Equal(t, int64(1048576), config.Provider.MaxBody)
	assert.Equal(t, StoreTypeSQLite, config.Store.Type)
	assert.Equal(t, "model_artifacts", config.Store.Table)
	assert.Equal(t, 100, config.Audit.Size)
	assert.Equal(t, 20, config.Audit.Amount)
	assert.True(t, config.Publish.Enabled())
	assert.Equal(t, 5, config.History.Length)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
provider:
  url: https://erp.example.com/orders
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "info", config.Logger.Level)
	assert.Equal(t, ":8080", config.Server.Address)
	assert.Equal(t, int64(DefaultProviderMaxBody), config.Provider.MaxBody)
	assert.Equal(t, StoreTypeFile, config.Store.Type)
	assert.Equal(t, "supplier_score_model.json", config.Store.Path)
	assert.False(t, config.Publish.Enabled())
	assert.Equal(t, 20, config.History.Length)
}

func TestLoadConfig_Env(t *testing.T) {
	path := writeConfig(t, `
provider:
  url: https://erp.example.com/orders
`)
	t.Setenv("SUPPLYSCORE_STORE_TYPE", "memory")
	t.Setenv("SUPPLYSCORE_PROVIDER_TIMEOUT", "5s")

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, StoreTypeMemory, config.Store.Type)
	assert.Equal(t, 5*time.Second, config.Provider.Timeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "error reading config file")

	tests := []struct {
		name    string
		content string
		message string
	}{
		{"no provider", "logger:\n  level: info\n", "provider.url"},
		{"bad provider", "provider:\n  url: localhost:3000\n", "provider.url: invalid URL"},
		{"bad level", "logger:\n  level: verbose\nprovider:\n  url: http://up\n", "logger.level"},
		{"bad store", "provider:\n  url: http://up\nstore:\n  type: redis\n", "store.type"},
		{"sql without dsn", "provider:\n  url: http://up\nstore:\n  type: postgres\n", "store.dsn"},
		{"s3 without bucket", "provider:\n  url: http://up\nstore:\n  type: s3\n", "store.bucket"},
		{"half publish", "provider:\n  url: http://up\npublish:\n  topic: scores\n", "publish"},
		{"negative max body", "provider:\n  url: http://up\n  max_body: -1\n", "provider.max_body"},
		{"negative history", "provider:\n  url: http://up\nhistory:\n  length: -1\n", "history.length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.message)
		})
	}
}
