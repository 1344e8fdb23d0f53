package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
)

// Config holds server configuration values.
type Config struct {
	// Addr is the TCP address of the chat protocol listener.
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required,hostname_port"`
	// AdminAddr enables the HTTP gateway (health, rooms, /ws) when set.
	AdminAddr         string        `mapstructure:"admin_addr" yaml:"admin_addr" validate:"omitempty,hostname_port"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	SessionQueueSize  int           `mapstructure:"session_queue_size" yaml:"session_queue_size" validate:"min=1"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"min=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		Addr:              ":" + strconv.Itoa(proto.DefaultPort),
		AdminAddr:         "",
		LogLevel:          "info",
		SessionQueueSize:  core.DefaultQueueSize,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.SessionQueueSize != 0 {
		c.SessionQueueSize = other.SessionQueueSize
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
