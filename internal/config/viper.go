// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override (DIVLEDGER_LOG_LEVEL, ...).
const EnvPrefix = "DIVLEDGER"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		Directory        string `mapstructure:"directory" yaml:"directory"`
		TransactionsFile string `mapstructure:"transactions_file" yaml:"transactions_file"`
		DivisionsFile    string `mapstructure:"divisions_file" yaml:"divisions_file"`
		ReceiptsDir      string `mapstructure:"receipts_dir" yaml:"receipts_dir"`
	} `mapstructure:"data" yaml:"data"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Server struct {
		Addr                   string `mapstructure:"addr" yaml:"addr"`
		ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
		ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
		MaxUploadMB            int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	} `mapstructure:"server" yaml:"server"`

	Admin struct {
		Secret string `mapstructure:"secret" yaml:"-"` // Never serialize the secret
	} `mapstructure:"admin" yaml:"admin"`

	Ledger struct {
		IDAttempts int `mapstructure:"id_attempts" yaml:"id_attempts"`
	} `mapstructure:"ledger" yaml:"ledger"`
}

// InitializeConfig loads configuration in increasing precedence:
// defaults, config file, environment. An explicit configFile replaces the
// search path; a missing implicit config file is not an error.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.divledger")
		v.AddConfigPath(".divledger")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// The admin secret is also accepted under the names the dashboard used.
	if err := v.BindEnv("admin.secret", EnvPrefix+"_ADMIN_SECRET", "ADMIN_SECRET", "SESSION_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind admin secret: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.directory", "data")
	v.SetDefault("data.transactions_file", "transactions.csv")
	v.SetDefault("data.divisions_file", "divisions.csv")
	v.SetDefault("data.receipts_dir", "receipts")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("admin.secret", "")

	v.SetDefault("ledger.id_attempts", 10)
}

// Validate checks cfg after callers have applied their own overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}
	if d := config.CSV.Delimiter; d == "\"" || d == "\n" || d == "\r" {
		return fmt.Errorf("CSV delimiter %q is not allowed", d)
	}

	if config.Data.TransactionsFile == "" || config.Data.DivisionsFile == "" {
		return fmt.Errorf("data.transactions_file and data.divisions_file are required")
	}
	if config.Data.TransactionsFile == config.Data.DivisionsFile {
		return fmt.Errorf("transactions and divisions must be stored in different files")
	}

	if _, _, err := net.SplitHostPort(config.Server.Addr); err != nil {
		return fmt.Errorf("invalid server.addr %q: %w", config.Server.Addr, err)
	}
	if config.Server.ShutdownTimeoutSeconds < 1 || config.Server.ShutdownTimeoutSeconds > 300 {
		return fmt.Errorf("server.shutdown_timeout_seconds must be between 1 and 300, got: %d", config.Server.ShutdownTimeoutSeconds)
	}
	if config.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be positive, got: %d", config.Server.MaxUploadMB)
	}

	if config.Ledger.IDAttempts < 1 || config.Ledger.IDAttempts > 100 {
		return fmt.Errorf("ledger.id_attempts must be between 1 and 100, got: %d", config.Ledger.IDAttempts)
	}

	return nil
}

// Delimiter returns the configured CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	return []rune(c.CSV.Delimiter)[0]
}

// TransactionsPath is the full path of transactions.csv.
func (c *Config) TransactionsPath() string {
	return c.dataPath(c.Data.TransactionsFile)
}

// DivisionsPath is the full path of divisions.csv.
func (c *Config) DivisionsPath() string {
	return c.dataPath(c.Data.DivisionsFile)
}

// ReceiptsPath is the directory uploaded receipts are written to.
func (c *Config) ReceiptsPath() string {
	return c.dataPath(c.Data.ReceiptsDir)
}

func (c *Config) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.Directory, name)
}

// ReadTimeout is the HTTP server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

// ShutdownTimeout is the grace period given to in-flight requests on shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// AdminEnabled reports whether an admin secret is configured.
func (c *Config) AdminEnabled() bool {
	return c.Admin.Secret != ""
}

// WriteConfigFile writes cfg as YAML to path, refusing to overwrite an existing file.
// The admin secret is never written.
func WriteConfigFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
