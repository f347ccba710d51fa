package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brizzai/auto-request/internal/logger"
	"github.com/brizzai/auto-request/transport"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
client:
  base_url: https://api.example.com
  timeout: 5s
  auth_type: bearer
  auth_config:
    token: secret
  headers:
    X-Env: staging
logging:
  level: debug
  format: json
metrics:
  enabled: true
  namespace: sample
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		args    func(t *testing.T) []string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "Config file",
			args: func(t *testing.T) []string {
				return []string{"--config", writeConfig(t, sampleConfig)}
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://api.example.com", cfg.Client.BaseURL)
				assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
				assert.Equal(t, transport.AuthTypeBearer, cfg.Client.AuthType)
				assert.Equal(t, "secret", cfg.Client.AuthConfig["token"])
				assert.Equal(t, "staging", cfg.Client.Headers["x-env"])
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.True(t, cfg.Metrics.Enabled)
				assert.Equal(t, "sample", cfg.Metrics.Namespace)
			},
		},
		{
			name: "Flags override the file",
			args: func(t *testing.T) []string {
				return []string{
					"--config", writeConfig(t, sampleConfig),
					"--base-url", "http://localhost:8080",
					"--timeout", "2s",
					"--log-level", "warn",
					"--log-format", "console",
				}
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://localhost:8080", cfg.Client.BaseURL)
				assert.Equal(t, 2*time.Second, cfg.Client.Timeout)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Format)
			},
		},
		{
			name: "Environment variables",
			args: func(t *testing.T) []string {
				return []string{"--config", writeConfig(t, "logging:\n  level: info\n")}
			},
			env: map[string]string{
				"AUTO_REQUEST_CLIENT_BASE_URL": "https://env.example.com",
				"AUTO_REQUEST_LOGGING_LEVEL":   "error",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://env.example.com", cfg.Client.BaseURL)
				assert.Equal(t, "error", cfg.Logging.Level)
			},
		},
		{
			name: "Defaults",
			args: func(t *testing.T) []string {
				return []string{"--config", writeConfig(t, "{}\n")}
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, transport.DefaultTimeout, cfg.Client.Timeout)
				assert.Equal(t, transport.AuthTypeNone, cfg.Client.AuthType)
				assert.Equal(t, transport.DefaultRequestIDHeader, cfg.Client.RequestIDHeader)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Format)
				assert.False(t, cfg.Metrics.Enabled)
			},
		},
		{
			name: "Missing explicit config file",
			args: func(t *testing.T) []string {
				return []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}
			},
			wantErr: true,
		},
		{
			name: "Invalid auth type",
			args: func(t *testing.T) []string {
				return []string{"--config", writeConfig(t, "client:\n  auth_type: kerberos\n")}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(newFlags(t, tt.args(t)...))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "Default is valid", modify: func(*Config) {}},
		{name: "Negative timeout", modify: func(c *Config) { c.Client.Timeout = -time.Second }, wantErr: true},
		{name: "Unknown auth type", modify: func(c *Config) { c.Client.AuthType = "digest" }, wantErr: true},
		{name: "Unknown log format", modify: func(c *Config) { c.Logging = logger.Config{Format: "xml"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestGetVersionInfo(t *testing.T) {
	assert.Contains(t, GetVersionInfo(), "auto-request version dev")
}
