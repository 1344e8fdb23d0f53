// Package session bridges one byte-stream connection to the chat hub. It is
// shared by the TCP listener and the WebSocket gateway.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
	"github.com/vovakirdan/linechat/internal/utils"
)

// Hub is the part of core.Hub a session talks to.
type Hub interface {
	RegisterClient(c *core.Client) error
	UnregisterClient(c *core.Client)
	Done() <-chan struct{}
}

// Session owns one connection: a reader turning lines into commands and a
// single writer rendering the client's events, so per-connection output
// order is the hub's processing order.
type Session struct {
	conn   net.Conn
	hub    Hub
	client *core.Client
	log    zerolog.Logger
}

// New wraps conn. queueSize bounds the client's outbound event queue.
func New(conn net.Conn, hub Hub, queueSize int, logger *zerolog.Logger) *Session {
	client := core.NewClient(utils.NewID(), queueSize)

	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().
			Str("client_id", client.ID).
			Str("remote_addr", remoteAddr(conn)).
			Logger()
	}

	return &Session{
		conn:   conn,
		hub:    hub,
		client: client,
		log:    l,
	}
}

// Serve runs a session for conn until the peer disconnects or ctx ends.
func Serve(ctx context.Context, conn net.Conn, hub Hub, queueSize int, logger *zerolog.Logger) error {
	return New(conn, hub, queueSize, logger).Run(ctx)
}

// Run blocks until the connection is finished and the client has been torn
// down. The connection is always closed on return.
func (s *Session) Run(ctx context.Context) error {
	if err := s.hub.RegisterClient(s.client); err != nil {
		_ = s.conn.Close()
		return fmt.Errorf("register client: %w", err)
	}
	s.log.Debug().Msg("session started")

	stop := make(chan struct{})
	go s.watch(ctx, stop)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		s.writeLoop()
	}()

	err := s.readLoop(ctx)

	close(stop)
	if closeErr := s.conn.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
		s.log.Debug().Err(closeErr).Msg("close connection")
	}
	s.hub.UnregisterClient(s.client)
	<-writeDone

	s.log.Debug().Msg("session finished")
	return err
}

// watch closes the connection when the server stops or the hub gives up on
// the client, which unblocks the reader.
func (s *Session) watch(ctx context.Context, stop <-chan struct{}) {
	select {
	case <-stop:
		return
	case <-ctx.Done():
	case <-s.hub.Done():
	case <-s.client.Slow():
		s.log.Warn().Msg("disconnecting slow client")
	}
	_ = s.conn.Close()
}

// readLoop turns inbound lines into commands. A final line without LF is
// still processed; a line longer than proto.MaxLineLength ends the session.
func (s *Session) readLoop(ctx context.Context) error {
	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 0, 4096), proto.MaxLineLength+2)
	named := false

	for scanner.Scan() {
		line := proto.TrimLine(scanner.Text())

		var cmd *core.Command
		if !named {
			cmd = &core.Command{Kind: core.CommandHello, Text: line}
			named = true
			s.log.Debug().Str("user", line).Msg("username received")
		} else {
			cmd = requestToCommand(proto.ParseLine(line))
		}

		if !s.submit(ctx, cmd) {
			return nil
		}
	}

	err := scanner.Err()
	switch {
	case err == nil || isClosed(err):
		return nil
	case errors.Is(err, bufio.ErrTooLong):
		s.log.Warn().Int("limit", proto.MaxLineLength).Msg("line too long, disconnecting")
		return fmt.Errorf("read line: %w", err)
	default:
		return fmt.Errorf("read line: %w", err)
	}
}

func (s *Session) submit(ctx context.Context, cmd *core.Command) bool {
	select {
	case s.client.Commands <- cmd:
		return true
	case <-ctx.Done():
		return false
	case <-s.hub.Done():
		return false
	}
}

// writeLoop sends the prompt, then every event until the hub closes the
// queue. Output is flushed whenever the queue runs dry.
func (s *Session) writeLoop() {
	w := bufio.NewWriter(s.conn)

	if err := writeLine(w, proto.PromptUsername); err != nil {
		s.writeFailed(err)
		return
	}
	if err := w.Flush(); err != nil {
		s.writeFailed(err)
		return
	}

	for ev := range s.client.Events {
		line, ok := lineFromEvent(ev)
		if !ok {
			continue
		}
		if err := writeLine(w, line); err != nil {
			s.writeFailed(err)
			return
		}
		if len(s.client.Events) == 0 {
			if err := w.Flush(); err != nil {
				s.writeFailed(err)
				return
			}
		}
	}
}

func (s *Session) writeFailed(err error) {
	if !isClosed(err) {
		s.log.Warn().Err(err).Msg("write to client failed")
	}
	_ = s.conn.Close()
}

func writeLine(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
