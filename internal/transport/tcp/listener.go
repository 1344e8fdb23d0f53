// Package tcp serves the line chat protocol over plain TCP.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/transport/session"
)

const maxAcceptBackoff = time.Second

// Listener accepts connections and runs one session per connection.
type Listener struct {
	addr      string
	hub       session.Hub
	queueSize int
	log       *zerolog.Logger

	wg sync.WaitGroup
}

// NewListener builds a listener for addr. Nothing is bound until Serve.
func NewListener(addr string, hub session.Hub, queueSize int, logger *zerolog.Logger) *Listener {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Listener{
		addr:      addr,
		hub:       hub,
		queueSize: queueSize,
		log:       logger,
	}
}

// Serve binds the configured address and accepts until ctx is cancelled.
func (l *Listener) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", l.addr, err)
	}
	return l.ServeListener(ctx, ln)
}

// ServeListener accepts on an already bound listener. It returns nil after
// ctx is cancelled and every session has finished, or an error when the
// listening socket becomes unusable.
func (l *Listener) ServeListener(ctx context.Context, ln net.Listener) error {
	l.log.Info().Str("addr", ln.Addr().String()).Msg("chat listener started")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = ln.Close()
		case <-stop:
		}
	}()

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				l.wg.Wait()
				l.log.Info().Msg("chat listener stopped")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				_ = ln.Close()
				l.wg.Wait()
				return fmt.Errorf("accept: %w", err)
			}

			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff = min(backoff*2, maxAcceptBackoff)
			}
			l.log.Warn().Err(err).Dur("retry_in", backoff).Msg("accept failed")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
			}
			continue
		}
		backoff = 0

		l.wg.Add(1)
		go l.handle(ctx, conn)
	}
}

func (l *Listener) handle(ctx context.Context, conn net.Conn) {
	defer l.wg.Done()

	remote := conn.RemoteAddr().String()
	l.log.Info().Str("remote_addr", remote).Msg("client connected")

	if err := session.Serve(ctx, conn, l.hub, l.queueSize, l.log); err != nil {
		l.log.Debug().Err(err).Str("remote_addr", remote).Msg("session ended with error")
	}
	l.log.Info().Str("remote_addr", remote).Msg("client disconnected")
}
