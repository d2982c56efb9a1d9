package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig holds pokerctl configuration.
type ClientConfig struct {
	APIBase string        `mapstructure:"api_base"`
	DataDir string        `mapstructure:"data_dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LocalDBPath returns the path of the client-local store.
func (c *ClientConfig) LocalDBPath() string {
	return filepath.Join(c.DataDir, "local.db")
}

// LoadClient reads client configuration from <data dir>/config.yaml and
// POKERCTL_* environment variables.
func LoadClient() (*ClientConfig, error) {
	v := viper.New()

	dataDir := strings.TrimSpace(os.Getenv("POKERCTL_DATA_DIR"))
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pokerctl")
	}

	v.SetDefault("api_base", "http://localhost:8080")
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("timeout", "10s")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)

	v.SetEnvPrefix("POKERCTL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")

	return &cfg, nil
}
