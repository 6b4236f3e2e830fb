package presence

import (
	"chat-hub/domain/event"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomRegistry_GetOrCreate_ReusesExistingRoom(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()

	created := registry.GetOrCreate("general", "the-lobby")
	again := registry.GetOrCreate("general", "ignored-slug")

	req.Same(created, again)
	req.Equal("the-lobby", again.Slug)
	req.Equal(1, registry.Size())
}

func TestRoomRegistry_Get_NormalizesID(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	room := registry.GetOrCreate("general", "")

	req.Same(room, registry.Get(" general "))
	req.Nil(registry.Get("missing"))
}

func TestRoomRegistry_FindBySlug(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	lobby := registry.GetOrCreate("1", "lobby")
	registry.GetOrCreate("2", "random")

	req.Same(lobby, registry.FindBySlug("lobby"))
	req.Nil(registry.FindBySlug("nope"))
}

func TestRoomRegistry_Subscribe_ObservesRoomsCreatedLater(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	rec := &recorder{}

	// Given a handler attached before any room exists
	registry.Subscribe(rec)

	// When a room is created afterward and a user joins it
	room := registry.GetOrCreate("general", "")
	room.Join(boundConnection("c1", "1", "alice"))

	// Then the registry-level handler observed the join
	req.Len(rec.ofType(event.UserJoinedType), 1)

	joined := rec.events[0].(event.UserJoined)
	req.Equal("general", joined.RoomID)
}

func TestRoomRegistry_BroadcastUsernameChange_OnlyAffectedRooms(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()

	aliceHere := boundConnection("a", "1", "alice")
	bobThere := boundConnection("b", "2", "bob")
	registry.GetOrCreate("general", "").Join(aliceHere)
	registry.GetOrCreate("dev", "").Join(bobThere)

	registry.BroadcastUsernameChange(event.UsernameChange{
		UserID:      "1",
		OldUsername: "alice",
		NewUsername: "alicia",
	})

	// The room holding alice saw the rename, bob's record is untouched
	req.Equal("alicia", aliceHere.User().Username)
	req.Equal("bob", bobThere.User().Username)
}

func TestRoomRegistry_RemoveConnection_PurgesEveryRoom(t *testing.T) {
	req := require.New(t)
	registry := NewRoomRegistry()
	rec := &recorder{}
	registry.Subscribe(rec)

	conn := boundConnection("c1", "1", "alice")
	general := registry.GetOrCreate("general", "")
	dev := registry.GetOrCreate("dev", "")
	ops := registry.GetOrCreate("ops", "")
	general.Join(conn)
	dev.Join(conn)

	// When the connection disappears
	registry.RemoveConnection(conn)

	// Then no room still lists it, including rooms it never joined
	req.False(general.Contains(conn))
	req.False(dev.Contains(conn))
	req.False(ops.Contains(conn))
	req.Len(rec.ofType(event.UserLeftType), 2)

	// And purging again is harmless
	registry.RemoveConnection(conn)
	req.Len(rec.ofType(event.UserLeftType), 2)
}
