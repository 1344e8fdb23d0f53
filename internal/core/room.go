package core

import "github.com/samber/lo"

// Room groups clients subscribed to the same channel.
// Members are kept in join order. Room is not safe for concurrent use; the
// hub goroutine owns every room.
type Room struct {
	Name    string
	members []*Client
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{Name: name}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if r.Has(c) {
		return false
	}
	r.members = append(r.members, c)
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	idx := lo.IndexOf(r.members, c)
	if idx < 0 {
		return false
	}
	r.members = append(r.members[:idx], r.members[idx+1:]...)
	return true
}

// Has reports whether c is a member.
func (r *Room) Has(c *Client) bool {
	return lo.Contains(r.members, c)
}

// FindByName returns the earliest-joined member with the given username.
func (r *Room) FindByName(name string) (*Client, bool) {
	return lo.Find(r.members, func(c *Client) bool { return c.name == name })
}

// Broadcast queues an event for every member except the given one (which may
// be nil) and returns the members whose queue was full.
func (r *Room) Broadcast(event *Event, except *Client) []*Client {
	var dropped []*Client
	for _, client := range r.members {
		if client == except {
			continue
		}
		if !client.offer(event) {
			dropped = append(dropped, client)
		}
	}
	return dropped
}

// MemberNames returns usernames in join order.
func (r *Room) MemberNames() []string {
	return lo.Map(r.members, func(c *Client, _ int) string { return c.name })
}

// Len returns the number of members.
func (r *Room) Len() int {
	return len(r.members)
}
