// Package fdbconfig loads and validates the client runtime's
// configuration: cluster connection parameters, retry-loop defaults,
// logging, and metrics, following the same viper/mapstructure/validator
// pipeline the teacher uses for its server configuration.
package fdbconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the client runtime's static configuration.
//
// Configuration sources, in order of precedence:
//  1. Values set directly on a Config literal (highest priority)
//  2. Environment variables (FDB_*)
//  3. A YAML configuration file
//  4. Defaults applied by ApplyDefaults (lowest priority)
type Config struct {
	// ClusterFilePath names an on-disk cluster file describing the store's
	// coordinators. Mutually exclusive with ConnectionString.
	ClusterFilePath string `mapstructure:"cluster_file" yaml:"cluster_file"`

	// ConnectionString is an inline cluster description, usable only
	// against APIVersion >= 720. Mutually exclusive with ClusterFilePath.
	ConnectionString string `mapstructure:"connection_string" yaml:"connection_string"`

	// APIVersion is the native API version this client negotiates.
	APIVersion int `mapstructure:"api_version" validate:"gte=0" yaml:"api_version"`

	// Mock forces the in-memory mockhandler even when a real cgo binding
	// was compiled in.
	Mock bool `mapstructure:"mock" yaml:"mock"`

	// Timeout bounds the retry loop end-to-end, across every attempt.
	Timeout time.Duration `mapstructure:"timeout" validate:"required,gt=0" yaml:"timeout"`

	// RetryLimit caps the number of retries after the first attempt, so
	// the retry loop makes at most RetryLimit+1 attempts; negative means
	// unlimited.
	RetryLimit int `mapstructure:"retry_limit" yaml:"retry_limit"`

	// InitialRetryDelay is the back-off delay before the first retry.
	InitialRetryDelay time.Duration `mapstructure:"initial_retry_delay" validate:"gt=0" yaml:"initial_retry_delay"`

	// MaxRetryDelay caps the exponential back-off applied between
	// successive retries.
	MaxRetryDelay time.Duration `mapstructure:"max_retry_delay" validate:"gtefield=InitialRetryDelay" yaml:"max_retry_delay"`

	// LogNativeCalls wraps the resolved Handler with the logging decorator.
	LogNativeCalls bool `mapstructure:"log_native_calls" yaml:"log_native_calls"`

	// TraceEnabled asks the native client to write its trace logs; TracePath
	// names the directory they go to (the native default when empty).
	TraceEnabled bool   `mapstructure:"trace_enabled" yaml:"trace_enabled"`
	TracePath    string `mapstructure:"trace_path" yaml:"trace_path"`

	// TLS configures the native client's TLS identity for clusters that
	// require it.
	TLS *TLSConfig `mapstructure:"tls" yaml:"tls"`

	// Logging holds the level and format for the client's own structured
	// logging. Database.Open does not read it.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics holds the Prometheus settings. Database.Open does not read
	// it: the retry loop records metrics only into a *fdbmetrics.Metrics
	// passed with fdb.WithMetrics.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// TLSConfig names the certificate material forwarded to the native client.
type TLSConfig struct {
	CertPath string `mapstructure:"cert_path" validate:"required" yaml:"cert_path"`
	KeyPath  string `mapstructure:"key_path" validate:"required" yaml:"key_path"`
	CAPath   string `mapstructure:"ca_path" yaml:"ca_path"`
}

// LoggingConfig holds the level and output format for internal/fdblog.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json" yaml:"format"`
}

// MetricsConfig holds the Prometheus settings: an enabled flag and the
// metric-name namespace.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// ApplyDefaults fills unspecified fields with sensible defaults. Mirrors
// the teacher's zero-value-replacement strategy: explicit values are
// always preserved.
func (c *Config) ApplyDefaults() {
	if c.APIVersion == 0 {
		c.APIVersion = 730
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	if c.RetryLimit == 0 {
		c.RetryLimit = 100
	}
	if c.InitialRetryDelay == 0 {
		c.InitialRetryDelay = 10 * time.Millisecond
	}
	if c.MaxRetryDelay == 0 {
		c.MaxRetryDelay = time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	c.Logging.Level = strings.ToUpper(c.Logging.Level)
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "fdb_client"
	}
}

// Validate runs struct-tag validation plus the cross-field rules that
// validator tags alone cannot express (mutual exclusivity of the two
// cluster-addressing modes).
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("fdbconfig: %w", err)
	}
	if c.ClusterFilePath != "" && c.ConnectionString != "" {
		return fmt.Errorf("fdbconfig: cluster_file and connection_string are mutually exclusive")
	}
	if c.ConnectionString != "" && c.APIVersion < 720 {
		return fmt.Errorf("fdbconfig: connection_string requires api_version >= 720, got %d", c.APIVersion)
	}
	return nil
}

// Load reads a YAML configuration file at path, overlays FDB_*
// environment variables, and returns the decoded Config (defaults not yet
// applied — call ApplyDefaults and Validate on the result).
func Load(path string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("FDB")
	v.AutomaticEnv()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("fdbconfig: read %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return cfg, fmt.Errorf("fdbconfig: parse %s: %w", path, err)
	}
	if err := v.MergeConfigMap(doc); err != nil {
		return cfg, fmt.Errorf("fdbconfig: merge %s: %w", path, err)
	}

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return cfg, fmt.Errorf("fdbconfig: decode %s: %w", path, err)
	}

	return cfg, nil
}
