package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Hub owns every room and every registered client. All mutations run on the
// goroutine started by Run, so check-then-act sequences on the registry and
// iteration over room members never race with each other.
type Hub struct {
	log *zerolog.Logger

	register  chan *Client
	inbox     chan envelope
	snapshots chan chan Snapshot
	done      chan struct{}

	// owned by Run
	clients map[*Client]struct{}
	rooms   map[string]*Room
	order   []*Room
	ctx     context.Context
}

type envelope struct {
	client *Client
	cmd    *Command
}

// RoomSnapshot describes one room at a point in time.
type RoomSnapshot struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Snapshot is a consistent copy of the registry state.
type Snapshot struct {
	Rooms    []RoomSnapshot `json:"rooms"`
	Sessions int            `json:"sessions"`
}

// NewHub creates a new chat hub instance.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		log:       logger,
		register:  make(chan *Client),
		inbox:     make(chan envelope, 64),
		snapshots: make(chan chan Snapshot),
		done:      make(chan struct{}),
		clients:   make(map[*Client]struct{}),
		rooms:     make(map[string]*Room),
	}
}

// Run processes registrations and commands until ctx is cancelled.
// It must be called exactly once.
func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case env := <-h.inbox:
			h.handle(env.client, env.cmd)
		case reply := <-h.snapshots:
			reply <- h.snapshot()
		}
	}
}

// Done is closed once Run has returned and every client queue is closed.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// RegisterClient adds c to the live set. Once it returns, c receives room
// list pushes and its Commands channel is being consumed.
func (h *Hub) RegisterClient(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// UnregisterClient queues the disconnect behind any commands c already sent.
// The hub closes c.Events once the client has been torn down.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case c.Commands <- &Command{Kind: CommandDisconnect}:
	case <-h.done:
	}
}

// Snapshot returns the current rooms, their members and the live client count.
func (h *Hub) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case h.snapshots <- reply:
	case <-h.done:
		return Snapshot{}, ErrHubStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (h *Hub) addClient(c *Client) {
	h.clients[c] = struct{}{}
	h.log.Debug().Str("client_id", c.ID).Int("clients", len(h.clients)).Msg("client registered")

	go h.pump(c)
}

// pump forwards a client's commands into the hub inbox, preserving order.
func (h *Hub) pump(c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			if cmd == nil {
				continue
			}
			select {
			case h.inbox <- envelope{client: c, cmd: cmd}:
			case <-h.ctx.Done():
				return
			}
			if cmd.Kind == CommandDisconnect {
				return
			}
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) handle(c *Client, cmd *Command) {
	if _, ok := h.clients[c]; !ok {
		return
	}

	h.log.Debug().Str("client_id", c.ID).Str("cmd", cmd.Kind.String()).Msg("command")

	switch cmd.Kind {
	case CommandHello:
		h.hello(c, cmd.Text)
	case CommandCreateRoom:
		h.createRoom(c, cmd.Room)
	case CommandJoinRoom:
		h.joinRoom(c, cmd.Room)
	case CommandLeaveRoom:
		h.leaveRoom(c, true)
	case CommandListRooms:
		h.deliver(c, &Event{Kind: EventRoomDirectory, Rooms: h.roomNames()})
	case CommandKick:
		h.kick(c, cmd.User)
	case CommandSendRoomMessage:
		h.sendRoomMessage(c, cmd.Text)
	case CommandDisconnect:
		h.removeClient(c)
	default:
		h.log.Warn().Str("client_id", c.ID).Int("kind", int(cmd.Kind)).Msg("unknown command")
	}
}

func (h *Hub) hello(c *Client, name string) {
	if c.named {
		h.log.Debug().Str("client_id", c.ID).Msg("duplicate hello ignored")
		return
	}
	c.name = name
	c.named = true
	h.log.Info().Str("client_id", c.ID).Str("user", name).Msg("user connected")
	h.deliver(c, &Event{Kind: EventWelcome, User: name})
}

func (h *Hub) createRoom(c *Client, name string) {
	if _, exists := h.rooms[name]; exists {
		h.deliver(c, &Event{Kind: EventError, Room: name, Error: coreError(ErrCodeRoomExists, "room already exists")})
		return
	}

	room := NewRoom(name)
	h.rooms[name] = room
	h.order = append(h.order, room)
	h.log.Info().Str("room", name).Str("user", c.name).Msg("room created")

	h.deliver(c, &Event{Kind: EventRoomCreated, Room: name})
	h.broadcastRoomList()
}

// broadcastRoomList pushes the full room list to every live client.
func (h *Hub) broadcastRoomList() {
	event := &Event{Kind: EventRoomList, Rooms: h.roomNames()}
	for client := range h.clients {
		h.deliver(client, event)
	}
}

func (h *Hub) joinRoom(c *Client, name string) {
	if !c.named {
		h.log.Debug().Str("client_id", c.ID).Msg("join before hello ignored")
		return
	}

	room, ok := h.rooms[name]
	if !ok {
		h.deliver(c, &Event{Kind: EventError, Room: name, Error: coreError(ErrCodeRoomNotFound, "room does not exist")})
		return
	}

	if c.room != nil {
		h.leaveRoom(c, true)
	}

	room.AddClient(c)
	c.room = room

	h.log.Debug().Str("room", name).Str("user", c.name).Int("members", room.Len()).Msg("member joined")
	h.deliver(c, &Event{Kind: EventJoined, Room: name})
	h.fanOut(room, &Event{Kind: EventUserJoined, Room: name, User: c.name}, c)
}

// leaveRoom is a no-op when c is not in a room. notifySelf is false during
// teardown, when nobody is left to read the acknowledgement.
func (h *Hub) leaveRoom(c *Client, notifySelf bool) {
	room := c.room
	if room == nil {
		return
	}

	room.RemoveClient(c)
	c.room = nil

	h.fanOut(room, &Event{Kind: EventUserLeft, Room: room.Name, User: c.name}, c)
	if notifySelf {
		h.deliver(c, &Event{Kind: EventLeft, Room: room.Name})
	}
}

func (h *Hub) kick(c *Client, target string) {
	room := c.room
	if room == nil {
		return
	}

	victim, ok := room.FindByName(target)
	if !ok {
		return
	}

	h.log.Info().Str("room", room.Name).Str("user", c.name).Str("target", target).Msg("member kicked")
	h.deliver(victim, &Event{Kind: EventKicked, Room: room.Name})
	h.leaveRoom(victim, true)
}

func (h *Hub) sendRoomMessage(c *Client, text string) {
	room := c.room
	if room == nil {
		h.deliver(c, &Event{Kind: EventError, Error: coreError(ErrCodeNotInRoom, "you are not in a room")})
		return
	}

	msg := Message{
		Room:   room.Name,
		From:   c.name,
		Text:   text,
		SentAt: time.Now(),
	}
	h.fanOut(room, &Event{Kind: EventRoomMessage, Room: room.Name, User: c.name, Message: msg}, nil)
}

func (h *Hub) removeClient(c *Client) {
	h.leaveRoom(c, false)
	delete(h.clients, c)
	close(c.Events)

	h.log.Info().Str("client_id", c.ID).Str("user", c.name).Int("clients", len(h.clients)).Msg("client unregistered")
}

// deliver queues an event for one client. A full queue drops the event and
// flags the client as slow so its transport can disconnect it.
func (h *Hub) deliver(c *Client, ev *Event) {
	if !c.offer(ev) {
		h.dropped(c)
	}
}

func (h *Hub) fanOut(room *Room, ev *Event, except *Client) {
	for _, c := range room.Broadcast(ev, except) {
		h.dropped(c)
	}
}

func (h *Hub) dropped(c *Client) {
	h.log.Warn().Str("client_id", c.ID).Str("user", c.name).Msg("client queue full, dropping event")
	c.markSlow()
}

func (h *Hub) roomNames() []string {
	return lo.Map(h.order, func(r *Room, _ int) string { return r.Name })
}

func (h *Hub) snapshot() Snapshot {
	return Snapshot{
		Rooms: lo.Map(h.order, func(r *Room, _ int) RoomSnapshot {
			return RoomSnapshot{Name: r.Name, Members: r.MemberNames()}
		}),
		Sessions: len(h.clients),
	}
}

func (h *Hub) shutdown() {
	for c := range h.clients {
		c.room = nil
		close(c.Events)
		delete(h.clients, c)
	}
	for _, room := range h.order {
		room.members = nil
	}
	close(h.done)
	h.log.Debug().Msg("hub stopped")
}
