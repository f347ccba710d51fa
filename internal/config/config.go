package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/brizzai/auto-request/internal/logger"
	"github.com/brizzai/auto-request/transport"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("auto-request version %s, commit %s, built at %s", version, commit, date)
}

const envPrefix = "AUTO_REQUEST"

type Config struct {
	Client  transport.Config `mapstructure:"client"`
	Logging logger.Config    `mapstructure:"logging"`
	Metrics MetricsConfig    `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// InitFlags registers the configuration flags on fs (without parsing)
func InitFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file (default ./config.yaml)")
	fs.String("base-url", "", "Base URL prepended to relative request URLs")
	fs.Duration("timeout", 0, "Timeout of a single HTTP call")
	fs.String("log-level", "", "Log level (debug|info|warn|error)")
	fs.String("log-format", "", "Log format (console|json)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.base_url", "")
	v.SetDefault("client.timeout", transport.DefaultTimeout)
	v.SetDefault("client.auth_type", string(transport.AuthTypeNone))
	v.SetDefault("client.request_id_header", transport.DefaultRequestIDHeader)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", "auto_request")
}

// Load reads configuration from the config file, AUTO_REQUEST_* environment
// variables and the flags registered by InitFlags, in increasing precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Flags override file and environment values
	if baseURL := v.GetString("base-url"); baseURL != "" {
		config.Client.BaseURL = baseURL
	}
	if timeout := v.GetDuration("timeout"); timeout > 0 {
		config.Client.Timeout = timeout
	}
	if level := v.GetString("log-level"); level != "" {
		config.Logging.Level = level
	}
	if format := v.GetString("log-format"); format != "" {
		config.Logging.Format = format
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func readConfigFile(v *viper.Viper) error {
	if path := v.GetString("config"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/auto-request")

	if err := v.ReadInConfig(); err != nil {
		// Running without a config file is fine
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// Validate checks the loaded configuration for values the client cannot use
func (c *Config) Validate() error {
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative, got %s", c.Client.Timeout)
	}
	switch c.Client.AuthType {
	case transport.AuthTypeNone, transport.AuthTypeBasic, transport.AuthTypeBearer,
		transport.AuthTypeAPIKey, transport.AuthTypeOAuth2, "":
	default:
		return fmt.Errorf("unsupported client.auth_type %q", c.Client.AuthType)
	}
	switch c.Logging.Format {
	case "console", "json", "":
	default:
		return fmt.Errorf("unsupported logging.format %q", c.Logging.Format)
	}
	return nil
}

// Default returns the configuration used when nothing is loaded
func Default() *Config {
	return &Config{
		Client: transport.Config{
			Timeout:         transport.DefaultTimeout,
			AuthType:        transport.AuthTypeNone,
			RequestIDHeader: transport.DefaultRequestIDHeader,
		},
		Logging: logger.Config{Level: "info", Format: "console"},
		Metrics: MetricsConfig{Namespace: "auto_request"},
	}
}
