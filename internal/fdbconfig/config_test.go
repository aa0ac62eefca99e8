package fdbconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, 730, cfg.APIVersion)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 100, cfg.RetryLimit)
	assert.Equal(t, 10*time.Millisecond, cfg.InitialRetryDelay)
	assert.Equal(t, time.Second, cfg.MaxRetryDelay)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "fdb_client", cfg.Metrics.Namespace)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Timeout:    5 * time.Second,
		RetryLimit: -1,
		Logging:    LoggingConfig{Level: "debug"},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, -1, cfg.RetryLimit)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestValidate_ClusterAddressingMutuallyExclusive(t *testing.T) {
	t.Parallel()

	cfg := Config{
		ClusterFilePath:  "/etc/foundationdb/fdb.cluster",
		ConnectionString: "desc:id@127.0.0.1:4500",
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestValidate_ConnectionStringRequiresAPI720(t *testing.T) {
	t.Parallel()

	cfg := Config{
		ConnectionString: "desc:id@127.0.0.1:4500",
		APIVersion:       710,
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "720")
}

func TestValidate_TimeoutRequired(t *testing.T) {
	t.Parallel()

	cfg := Config{Mock: true}
	// No ApplyDefaults: a zero Timeout must be rejected.
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidate_TLSRequiresCertAndKey(t *testing.T) {
	t.Parallel()

	cfg := Config{Mock: true, TLS: &TLSConfig{CertPath: "/etc/fdb/client.crt"}}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	require.Error(t, err)

	cfg.TLS.KeyPath = "/etc/fdb/client.key"
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	doc := `
cluster_file: /var/fdb/fdb.cluster
api_version: 730
timeout: 30s
retry_limit: 5
initial_retry_delay: 5ms
max_retry_delay: 500ms
logging:
  level: debug
  format: json
metrics:
  enabled: true
  namespace: myapp
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/fdb/fdb.cluster", cfg.ClusterFilePath)
	assert.Equal(t, 730, cfg.APIVersion)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.RetryLimit)
	assert.Equal(t, 5*time.Millisecond, cfg.InitialRetryDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.MaxRetryDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "myapp", cfg.Metrics.Namespace)

	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileFails(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
