package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHubCreateAcknowledgesThenPushes(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	bob := connect(t, hub, "b", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby"}

	ack := nextEvent(t, alice)
	require.Equal(t, EventRoomCreated, ack.Kind)
	require.Equal(t, "lobby", ack.Room)

	push := nextEvent(t, alice)
	require.Equal(t, EventRoomList, push.Kind)
	require.Equal(t, []string{"lobby"}, push.Rooms)

	push = nextEvent(t, bob)
	require.Equal(t, EventRoomList, push.Kind)
	require.Equal(t, []string{"lobby"}, push.Rooms)
}

func TestHubDuplicateCreate(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	bob := connect(t, hub, "b", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby"}
	mustEvent(t, alice, EventRoomList)
	mustEvent(t, bob, EventRoomList)

	bob.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby"}
	ev := nextEvent(t, bob)
	require.Equal(t, EventError, ev.Kind)
	require.Equal(t, ErrCodeRoomExists, ev.Error.Code)
	require.True(t, errors.Is(ev.Error, ErrRoomExists))

	settle(t, alice)
	expectNoEvent(t, alice)

	snap, err := hub.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Rooms, 1)
}

func TestHubRoomListKeepsEveryRoom(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	bob := connect(t, hub, "b", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "a"}
	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "b"}

	first := mustEvent(t, bob, EventRoomList)
	require.Equal(t, []string{"a"}, first.Rooms)
	second := mustEvent(t, bob, EventRoomList)
	require.ElementsMatch(t, []string{"a", "b"}, second.Rooms)

	bob.Commands <- &Command{Kind: CommandListRooms}
	dir := mustEvent(t, bob, EventRoomDirectory)
	require.ElementsMatch(t, []string{"a", "b"}, dir.Rooms)
}

func TestHubJoinBroadcastAndLeave(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	bob := connect(t, hub, "b", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby"}
	mustEvent(t, alice, EventRoomList)
	mustEvent(t, bob, EventRoomList)

	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby"}
	joined := nextEvent(t, alice)
	require.Equal(t, EventJoined, joined.Kind)
	require.Equal(t, "lobby", joined.Room)

	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby"}
	require.Equal(t, EventJoined, nextEvent(t, bob).Kind)

	// Alice sees bob's join, bob does not see his own.
	joinEv := nextEvent(t, alice)
	require.Equal(t, EventUserJoined, joinEv.Kind)
	require.Equal(t, "bob", joinEv.User)
	expectNoEvent(t, bob)

	// Chat echoes to the sender too.
	alice.Commands <- &Command{Kind: CommandSendRoomMessage, Text: "hello"}
	for _, c := range []*Client{alice, bob} {
		msgEv := nextEvent(t, c)
		require.Equal(t, EventRoomMessage, msgEv.Kind)
		require.Equal(t, "alice", msgEv.Message.From)
		require.Equal(t, "hello", msgEv.Message.Text)
		require.Equal(t, "lobby", msgEv.Message.Room)
	}

	alice.Commands <- &Command{Kind: CommandLeaveRoom}
	require.Equal(t, EventLeft, nextEvent(t, alice).Kind)
	leftEv := nextEvent(t, bob)
	require.Equal(t, EventUserLeft, leftEv.Kind)
	require.Equal(t, "alice", leftEv.User)

	alice.Commands <- &Command{Kind: CommandSendRoomMessage, Text: "anyone?"}
	ev := nextEvent(t, alice)
	require.Equal(t, EventError, ev.Kind)
	require.Equal(t, ErrCodeNotInRoom, ev.Error.Code)
}

func TestHubJoinUnknownRoom(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "ghost"}

	ev := nextEvent(t, alice)
	require.Equal(t, EventError, ev.Kind)
	require.Equal(t, ErrCodeRoomNotFound, ev.Error.Code)

	snap, err := hub.Snapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap.Rooms)
}

func TestHubLeaveWithoutRoomIsSilent(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	alice.Commands <- &Command{Kind: CommandLeaveRoom}
	settle(t, alice)
	expectNoEvent(t, alice)
}

func TestHubJoinMovesBetweenRooms(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	bob := connect(t, hub, "b", "bob")
	carol := connect(t, hub, "c", "carol")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "one"}
	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "two"}
	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "one"}
	mustEvent(t, alice, EventJoined)
	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: "one"}
	mustEvent(t, bob, EventJoined)
	carol.Commands <- &Command{Kind: CommandJoinRoom, Room: "two"}
	mustEvent(t, carol, EventJoined)
	mustEvent(t, alice, EventUserJoined)

	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: "two"}
	require.Equal(t, EventLeft, nextEvent(t, bob).Kind)
	require.Equal(t, EventJoined, nextEvent(t, bob).Kind)

	left := nextEvent(t, alice)
	require.Equal(t, EventUserLeft, left.Kind)
	require.Equal(t, "bob", left.User)
	joined := nextEvent(t, carol)
	require.Equal(t, EventUserJoined, joined.Kind)
	require.Equal(t, "bob", joined.User)

	settle(t, alice)
	settle(t, carol)
	expectNoEvent(t, alice)
	expectNoEvent(t, carol)

	snap, err := hub.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, []RoomSnapshot{
		{Name: "one", Members: []string{"alice"}},
		{Name: "two", Members: []string{"carol", "bob"}},
	}, snap.Rooms)
}

func TestHubKick(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	bob := connect(t, hub, "b", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby"}
	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby"}
	mustEvent(t, alice, EventJoined)
	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby"}
	mustEvent(t, bob, EventJoined)
	mustEvent(t, alice, EventUserJoined)

	alice.Commands <- &Command{Kind: CommandKick, User: "bob"}
	require.Equal(t, EventKicked, nextEvent(t, bob).Kind)
	require.Equal(t, EventLeft, nextEvent(t, bob).Kind)
	left := nextEvent(t, alice)
	require.Equal(t, EventUserLeft, left.Kind)
	require.Equal(t, "bob", left.User)

	// Bob is no longer in a room.
	bob.Commands <- &Command{Kind: CommandSendRoomMessage, Text: "hi"}
	ev := nextEvent(t, bob)
	require.Equal(t, EventError, ev.Kind)
	require.Equal(t, ErrCodeNotInRoom, ev.Error.Code)
}

func TestHubKickNoMatchOrNoRoom(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	bob := connect(t, hub, "b", "bob")

	bob.Commands <- &Command{Kind: CommandKick, User: "alice"}
	settle(t, bob)
	settle(t, alice)
	expectNoEvent(t, alice)

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby"}
	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby"}
	mustEvent(t, alice, EventJoined)

	alice.Commands <- &Command{Kind: CommandKick, User: "nobody"}
	settle(t, alice)
	expectNoEvent(t, alice)
}

func TestHubKickTargetsFirstMatch(t *testing.T) {
	hub := startHub(t)

	owner := connect(t, hub, "o", "owner")
	first := connect(t, hub, "d1", "dup")
	second := connect(t, hub, "d2", "dup")

	owner.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby"}
	for _, c := range []*Client{owner, first, second} {
		c.Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby"}
		mustEvent(t, c, EventJoined)
	}

	owner.Commands <- &Command{Kind: CommandKick, User: "dup"}
	mustEvent(t, first, EventKicked)
	left := mustEvent(t, second, EventUserLeft)
	require.Equal(t, "dup", left.User)

	snap, err := hub.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"owner", "dup"}, snap.Rooms[0].Members)
}

func TestHubDisconnectCleansUp(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	bob := connect(t, hub, "b", "bob")

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "lobby"}
	alice.Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby"}
	mustEvent(t, alice, EventJoined)
	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: "lobby"}
	mustEvent(t, bob, EventJoined)
	mustEvent(t, alice, EventUserJoined)

	hub.UnregisterClient(bob)

	left := nextEvent(t, alice)
	require.Equal(t, EventUserLeft, left.Kind)
	require.Equal(t, "bob", left.User)

	// Bob's queue is drained and closed without a self acknowledgement.
	for ev := range bob.Events {
		require.NotEqual(t, EventLeft, ev.Kind)
	}

	snap, err := hub.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, snap.Sessions)
	require.Equal(t, []RoomSnapshot{{Name: "lobby", Members: []string{"alice"}}}, snap.Rooms)
}

func TestHubSlowClientIsFlagged(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, "a", "alice")
	slow := NewClient("s", 1)
	require.NoError(t, hub.RegisterClient(slow))

	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "a"}
	alice.Commands <- &Command{Kind: CommandCreateRoom, Room: "b"}
	mustEvent(t, alice, EventRoomList)
	mustEvent(t, alice, EventRoomList)

	select {
	case <-slow.Slow():
	case <-time.After(2 * time.Second):
		t.Fatal("slow client was not flagged")
	}

	// The hub kept serving others.
	settle(t, alice)
}

func TestHubStopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	alice := NewClient("a", 4)
	require.NoError(t, hub.RegisterClient(alice))

	cancel()
	<-hub.Done()

	_, ok := <-alice.Events
	require.False(t, ok)
	require.ErrorIs(t, hub.RegisterClient(NewClient("b", 4)), ErrHubStopped)

	_, err := hub.Snapshot(context.Background())
	require.ErrorIs(t, err, ErrHubStopped)
}
