package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandHello sets the client's username. Text carries the name.
	CommandHello CommandKind = iota
	// CommandCreateRoom registers a new room.
	CommandCreateRoom
	// CommandJoinRoom moves the client into a room.
	CommandJoinRoom
	// CommandLeaveRoom removes the client from its current room.
	CommandLeaveRoom
	// CommandListRooms asks for the room directory.
	CommandListRooms
	// CommandKick removes the first member named User from the current room.
	CommandKick
	// CommandSendRoomMessage delivers a chat message to the current room.
	CommandSendRoomMessage
	// CommandDisconnect tears the client down. Sent by UnregisterClient.
	CommandDisconnect
)

func (k CommandKind) String() string {
	switch k {
	case CommandHello:
		return "hello"
	case CommandCreateRoom:
		return "create"
	case CommandJoinRoom:
		return "join"
	case CommandLeaveRoom:
		return "leave"
	case CommandListRooms:
		return "list"
	case CommandKick:
		return "kick"
	case CommandSendRoomMessage:
		return "msg"
	case CommandDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string
	User string
	Text string
}
