package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeRoomExists   = "room_exists"
	ErrCodeRoomNotFound = "room_not_found"
	ErrCodeNotInRoom    = "not_in_room"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrNotInRoom    = errors.New("not in room")
	ErrHubStopped   = errors.New("hub stopped")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// Unwrap maps the code back to its sentinel so callers can use errors.Is.
func (e *CoreError) Unwrap() error {
	switch e.Code {
	case ErrCodeRoomExists:
		return ErrRoomExists
	case ErrCodeRoomNotFound:
		return ErrRoomNotFound
	case ErrCodeNotInRoom:
		return ErrNotInRoom
	default:
		return nil
	}
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
