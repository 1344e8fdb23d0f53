package core

import "sync"

// DefaultQueueSize is the outbound event buffer used when none is configured.
const DefaultQueueSize = 1024

// Client is a chat participant as seen by the core layer.
//
// Commands is written by the transport and drained by the hub. Events is
// written only by the hub and closed by it once the client is unregistered.
// Everything else is owned by the hub goroutine.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	name  string
	named bool
	room  *Room

	slowOnce sync.Once
	slow     chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, queueSize int) *Client {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, queueSize),
		slow:     make(chan struct{}),
	}
}

// Slow is closed when the hub had to drop an event for this client because
// its queue was full. The transport is expected to disconnect it.
func (c *Client) Slow() <-chan struct{} {
	return c.slow
}

func (c *Client) markSlow() {
	c.slowOnce.Do(func() { close(c.slow) })
}

// offer queues an event without blocking. Returns false if the queue is full.
func (c *Client) offer(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
