package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config carries every runtime setting of the daemon. Values come from
 * the environment or an optional .env file; zones live in their own
 * YAML file (see the zones package)
 */
type Config struct {
	// Bridge endpoint.
	Host string `mapstructure:"HOST"`
	Port int    `mapstructure:"PORT"`

	// URLTimeout is the per-call deadline for bridge requests.
	URLTimeout time.Duration `mapstructure:"URL_TIMEOUT"`
	// SendDelay is the minimum spacing between consecutive bridge calls.
	SendDelay time.Duration `mapstructure:"SEND_DELAY"`
	// Update is the idle time between heartbeat passes.
	Update time.Duration `mapstructure:"UPDATE"`
	// ZoneSpacing is the pause between zones within one pass.
	ZoneSpacing time.Duration `mapstructure:"ZONE_SPACING"`

	// SecurityID is the accessory escalated against by security zones.
	SecurityID string `mapstructure:"SECURITY_ID"`

	ZonesFile string `mapstructure:"ZONES_FILE"`
	AdminAddr string `mapstructure:"ADMIN_ADDR"`
	LogJSON   bool   `mapstructure:"LOG_JSON"`
}

func GetConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("HOST", "127.0.0.1")
	viper.SetDefault("PORT", 51828)
	viper.SetDefault("URL_TIMEOUT", "5s")
	viper.SetDefault("SEND_DELAY", "200ms")
	viper.SetDefault("UPDATE", "180s")
	viper.SetDefault("ZONE_SPACING", "200ms")
	viper.SetDefault("SECURITY_ID", "")
	viper.SetDefault("ZONES_FILE", "zones.yaml")
	viper.SetDefault("ADMIN_ADDR", ":9090")
	viper.SetDefault("LOG_JSON", true)

	// A missing .env is fine: everything can come from the environment.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings that would otherwise fail only at runtime.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("HOST cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535 (got %d)", c.Port)
	}
	if c.URLTimeout <= 0 {
		return fmt.Errorf("URL_TIMEOUT must be positive (got %s)", c.URLTimeout)
	}
	if c.SendDelay < 0 {
		return fmt.Errorf("SEND_DELAY cannot be negative (got %s)", c.SendDelay)
	}
	if c.Update <= 0 {
		return fmt.Errorf("UPDATE must be positive (got %s)", c.Update)
	}
	if c.ZonesFile == "" {
		return fmt.Errorf("ZONES_FILE cannot be empty")
	}
	return nil
}
