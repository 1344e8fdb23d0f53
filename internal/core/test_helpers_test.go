package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	hub := NewHub(nil)
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub
}

// connect registers a client and completes the username handshake.
func connect(t *testing.T, hub *Hub, id, name string) *Client {
	t.Helper()

	return connectSized(t, hub, id, name, 32)
}

func connectSized(t *testing.T, hub *Hub, id, name string, queueSize int) *Client {
	t.Helper()

	c := NewClient(id, queueSize)
	require.NoError(t, hub.RegisterClient(c))
	c.Commands <- &Command{Kind: CommandHello, Text: name}
	ev := nextEvent(t, c)
	require.Equal(t, EventWelcome, ev.Kind)
	require.Equal(t, name, ev.User)
	return c
}

// nextEvent returns the next event queued for c, failing after a timeout.
func nextEvent(t *testing.T, c *Client) *Event {
	t.Helper()

	select {
	case ev, ok := <-c.Events:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for client %s", c.ID)
		return nil
	}
}

// mustEvent skips events until one of the given kind arrives.
func mustEvent(t *testing.T, c *Client, kind EventKind) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-c.Events:
			require.True(t, ok, "events channel closed")
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
			return nil
		}
	}
}

// settle round-trips a list request so every earlier command of c is processed.
func settle(t *testing.T, c *Client) {
	t.Helper()

	c.Commands <- &Command{Kind: CommandListRooms}
	mustEvent(t, c, EventRoomDirectory)
}

func expectNoEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case ev := <-c.Events:
		t.Fatalf("unexpected event for %s: %+v", c.ID, ev)
	default:
	}
}
