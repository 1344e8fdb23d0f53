package proto

import "strings"

// Fixed server lines.
const (
	PromptUsername  = "Enter your username:"
	RoomExists      = "Room already exists."
	RoomNotFound    = "Room does not exist."
	LeftRoom        = "Left the room."
	Kicked          = "You have been kicked from the room."
	NotInRoom       = "You are not in a room."
	DirectoryHeader = "Available rooms:"

	listFramePrefix = "/list "
)

func Welcome(user string) string {
	return "Welcome, " + user + "! You are connected to the chat server."
}

func RoomCreated(room string) string {
	return "Room " + room + " created."
}

func JoinedRoom(room string) string {
	return "Joined room " + room
}

func UserJoined(user string) string {
	return user + " has joined the room."
}

func UserLeft(user string) string {
	return user + " has left the room."
}

func ChatLine(user, text string) string {
	return user + ": " + text
}

// RoomListFrame renders the push frame sent to every client after the room
// set changes: "/list" followed by space separated names.
func RoomListFrame(rooms []string) string {
	return strings.TrimSpace(listFramePrefix + strings.Join(rooms, " "))
}

// ParseRoomListFrame is the client side of RoomListFrame.
func ParseRoomListFrame(line string) ([]string, bool) {
	if line == strings.TrimSpace(listFramePrefix) {
		return []string{}, true
	}
	rest, ok := strings.CutPrefix(line, listFramePrefix)
	if !ok {
		return nil, false
	}
	return strings.Fields(rest), true
}

// RoomDirectory renders the reply to an explicit /list: the header followed
// by one room per line. The result spans several lines but carries no
// trailing newline.
func RoomDirectory(rooms []string) string {
	var b strings.Builder
	b.WriteString(DirectoryHeader)
	for _, room := range rooms {
		b.WriteByte('\n')
		b.WriteString(room)
	}
	return b.String()
}
