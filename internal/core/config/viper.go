package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*SegmenterConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultSegmenterConfig
	v.SetDefault("segmenter.database_url", "")
	v.SetDefault("segmenter.preview_size", 10)
	v.SetDefault("segmenter.contact_limit", 50000)
	v.SetDefault("segmenter.log_level", "info")
	v.SetDefault("segmenter.log_format", "json")

	// Bind environment variables with SEG_ prefix
	v.SetEnvPrefix("SEG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject credentialed database URLs in config files
	// Credentials must arrive via SEG_SEGMENTER_DATABASE_URL per 12-factor principles
	if configPath != "" {
		if err := validateNoCredentialsInConfig(v); err != nil {
			return nil, err
		}
	}

	cfg := &SegmenterConfig{
		DatabaseURL:  v.GetString("segmenter.database_url"),
		PreviewSize:  v.GetInt("segmenter.preview_size"),
		ContactLimit: v.GetInt("segmenter.contact_limit"),
		LogLevel:     v.GetString("segmenter.log_level"),
		LogFormat:    v.GetString("segmenter.log_format"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateNoCredentialsInConfig enforces environment-only database passwords.
// A postgres URL with userinfo in a committed config file is the common leak.
func validateNoCredentialsInConfig(v *viper.Viper) error {
	url := v.GetString("segmenter.database_url")
	if strings.HasPrefix(url, "postgres://") && strings.Contains(url, "@") {
		return fmt.Errorf("database credentials not allowed in config files (use SEG_SEGMENTER_DATABASE_URL environment variable)")
	}
	return nil
}
