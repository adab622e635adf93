package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// IMAPConfig holds the transport connection parameters for one account.
type IMAPConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`

	// Login is the IMAP username, usually the account email address.
	Login string `mapstructure:"login" yaml:"login"`

	// Password is the inline password. When empty, the password is
	// resolved from the OS keyring under the account name.
	Password string `mapstructure:"password" yaml:"password"`

	// TLS selects implicit TLS; when false the client upgrades with
	// STARTTLS instead.
	TLS bool `mapstructure:"tls" yaml:"tls"`
}

// AccountConfig describes a single configured mail account.
type AccountConfig struct {
	// Name is the unique user-defined label for this account.
	Name string `mapstructure:"name" yaml:"name"`

	// Default marks the account preselected by commands that take an
	// optional account argument.
	Default bool `mapstructure:"default" yaml:"default"`

	Email       string `mapstructure:"email" yaml:"email"`
	DisplayName string `mapstructure:"display_name" yaml:"display_name"`

	IMAP IMAPConfig `mapstructure:"imap" yaml:"imap"`
}

// DatabaseConfig holds the message store location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds rendering preferences for the listing commands.
type DisplayConfig struct {
	// PageSize caps the number of conversations a single listing
	// returns.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Accounts []AccountConfig `mapstructure:"accounts" yaml:"accounts"`
	Database DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Display  DisplayConfig   `mapstructure:"display" yaml:"display"`
}

// DefaultAccount returns the account marked default, falling back to
// the first configured account. The second result is false when no
// accounts are configured.
func (c *AppConfig) DefaultAccount() (AccountConfig, bool) {
	for _, a := range c.Accounts {
		if a.Default {
			return a, true
		}
	}
	if len(c.Accounts) > 0 {
		return c.Accounts[0], true
	}
	return AccountConfig{}, false
}

// Account returns the configured account with the given name.
func (c *AppConfig) Account(name string) (AccountConfig, bool) {
	for _, a := range c.Accounts {
		if a.Name == name {
			return a, true
		}
	}
	return AccountConfig{}, false
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/mailscope/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailscope", "config.yaml")
}

// DefaultDatabasePath returns the default location of the message
// store, next to the configuration file.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "messages.db")
	}
	return filepath.Join(home, ".config", "mailscope", "messages.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Accounts: []AccountConfig{},
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Display:  DisplayConfig{PageSize: 100},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default
// configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("display.page_size", 100)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Apply per-account defaults.
	for i := range cfg.Accounts {
		if cfg.Accounts[i].IMAP.Host == "" {
			cfg.Accounts[i].IMAP.Host = "imap.gmail.com"
		}
		if cfg.Accounts[i].IMAP.Port == "" {
			cfg.Accounts[i].IMAP.Port = "993"
		}
		// Viper unmarshals missing bools as false; treat unset as true.
		key := fmt.Sprintf("accounts.%d.imap.tls", i)
		if !v.IsSet(key) {
			cfg.Accounts[i].IMAP.TLS = true
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("accounts", cfg.Accounts)
	v.Set("database", cfg.Database)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
