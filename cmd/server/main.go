package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/linechat/internal/app"
	"github.com/vovakirdan/linechat/internal/config"
	chatlog "github.com/vovakirdan/linechat/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:           "linechat",
		Short:         "Multi-room line-oriented TCP chat server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath, overrides)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file (created with defaults if missing)")
	flags.StringVar(&overrides.Addr, "addr", "", "chat listen address (default \":49161\")")
	flags.StringVar(&overrides.AdminAddr, "admin-addr", "", "admin/WebSocket gateway address, disabled when empty")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func run(parent context.Context, configPath string, overrides config.Config) error {
	logger := chatlog.New("info")

	cfg, path, err := config.Load(logger, configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to load config")
		return err
	}
	cfg.UpdateFrom(overrides)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid config")
		return err
	}

	logger = chatlog.New(cfg.LogLevel)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", cfg.Addr).Str("admin_addr", cfg.AdminAddr).Msg("starting chat server")
	if err := app.New(cfg, logger).Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
