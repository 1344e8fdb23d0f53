package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "LINECHAT"

// Load builds configuration from defaults, an optional config file and env
// vars. Precedence: defaults < config file < env vars < caller overrides.
// Without explicitPath no file is read, so a bare start uses the defaults.
// A missing explicit file is created with the defaults.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("admin_addr", cfg.AdminAddr)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("session_queue_size", cfg.SessionQueueSize)
	v.SetDefault("read_header_timeout", cfg.ReadHeaderTimeout)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return cfg, explicitPath, fmt.Errorf("read config: %w", err)
			}
			if writeErr := writeDefaultConfig(explicitPath, cfg); writeErr != nil {
				logger.Warn().Err(writeErr).Str("path", explicitPath).Msg("failed to write default config")
			} else {
				logger.Info().Str("path", explicitPath).Msg("created default config")
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, explicitPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, explicitPath, nil
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
