package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/core"
	transporthttp "github.com/vovakirdan/linechat/internal/transport/http"
	"github.com/vovakirdan/linechat/internal/transport/tcp"
)

// App wires together core and transport layers.
type App struct {
	cfg      config.Config
	hub      *core.Hub
	listener *tcp.Listener
	gateway  *stdhttp.Server
	log      *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	hub := core.NewHub(logger)

	a := &App{
		cfg:      cfg,
		hub:      hub,
		listener: tcp.NewListener(cfg.Addr, hub, cfg.SessionQueueSize, logger),
		log:      logger,
	}
	if cfg.AdminAddr != "" {
		a.gateway = transporthttp.NewServer(hub, cfg, logger)
	}
	return a
}

// Run starts the hub, the chat listener and the optional gateway, and
// blocks until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		if err := a.listener.Serve(ctx); err != nil {
			return fmt.Errorf("chat listener: %w", err)
		}
		return nil
	})

	if a.gateway != nil {
		a.gateway.BaseContext = func(net.Listener) context.Context { return ctx }

		g.Go(func() error {
			a.log.Info().Str("addr", a.gateway.Addr).Msg("admin gateway started")
			if err := a.gateway.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				return fmt.Errorf("admin gateway: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()

			a.log.Info().Msg("shutting down admin gateway")
			if err := a.gateway.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown admin gateway: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
