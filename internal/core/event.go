package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventWelcome acknowledges the username handshake.
	EventWelcome EventKind = iota
	// EventRoomCreated acknowledges a successful create to its requester.
	EventRoomCreated
	// EventRoomList is the unsolicited room list pushed to every client.
	EventRoomList
	// EventRoomDirectory answers an explicit list request.
	EventRoomDirectory
	// EventJoined acknowledges a join to the joining client.
	EventJoined
	// EventUserJoined notifies room members about a user joining.
	EventUserJoined
	// EventUserLeft notifies room members about a user leaving.
	EventUserLeft
	// EventLeft acknowledges a leave to the leaving client.
	EventLeft
	// EventKicked tells a client it is being removed from its room.
	EventKicked
	// EventRoomMessage carries a chat message.
	EventRoomMessage
	// EventError notifies clients about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
// Events may be shared between recipients and must not be mutated.
type Event struct {
	Kind    EventKind
	Room    string
	User    string
	Message Message
	Rooms   []string // EventRoomList, EventRoomDirectory
	Error   *CoreError
}
