package session

import (
	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
)

func requestToCommand(req proto.Request) *core.Command {
	switch req.Type {
	case proto.RequestCreate:
		return &core.Command{Kind: core.CommandCreateRoom, Room: req.Arg}
	case proto.RequestJoin:
		return &core.Command{Kind: core.CommandJoinRoom, Room: req.Arg}
	case proto.RequestLeave:
		return &core.Command{Kind: core.CommandLeaveRoom}
	case proto.RequestList:
		return &core.Command{Kind: core.CommandListRooms}
	case proto.RequestKick:
		return &core.Command{Kind: core.CommandKick, User: req.Arg}
	default:
		return &core.Command{Kind: core.CommandSendRoomMessage, Text: req.Arg}
	}
}

// lineFromEvent renders an event as the text sent to the client, without
// the trailing newline. ok is false for events with no wire form.
func lineFromEvent(ev *core.Event) (line string, ok bool) {
	switch ev.Kind {
	case core.EventWelcome:
		return proto.Welcome(ev.User), true
	case core.EventRoomCreated:
		return proto.RoomCreated(ev.Room), true
	case core.EventRoomList:
		return proto.RoomListFrame(ev.Rooms), true
	case core.EventRoomDirectory:
		return proto.RoomDirectory(ev.Rooms), true
	case core.EventJoined:
		return proto.JoinedRoom(ev.Room), true
	case core.EventUserJoined:
		return proto.UserJoined(ev.User), true
	case core.EventUserLeft:
		return proto.UserLeft(ev.User), true
	case core.EventLeft:
		return proto.LeftRoom, true
	case core.EventKicked:
		return proto.Kicked, true
	case core.EventRoomMessage:
		return proto.ChatLine(ev.Message.From, ev.Message.Text), true
	case core.EventError:
		return errorLine(ev.Error)
	default:
		return "", false
	}
}

func errorLine(err *core.CoreError) (string, bool) {
	if err == nil {
		return "", false
	}
	switch err.Code {
	case core.ErrCodeRoomExists:
		return proto.RoomExists, true
	case core.ErrCodeRoomNotFound:
		return proto.RoomNotFound, true
	case core.ErrCodeNotInRoom:
		return proto.NotInRoom, true
	default:
		return err.Message, true
	}
}
