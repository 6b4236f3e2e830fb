package event

import "chat-hub/domain"

type Type string

const (
	UserJoinedType      Type = "USER_JOIN"
	UserLeftType        Type = "USER_LEAVE"
	UsernameChangedType Type = "USERNAME_CHANGED"
	AccountUpdatedType  Type = "ACCOUNT_UPDATE"
)

// PresenceEvent is anything the presence core emits or consumes.
type PresenceEvent interface {
	EventType() Type
}

// UserJoined is emitted exactly once per user-level join transition: the
// first connection of a user entering a room. Additional connections of the
// same user collapse into that single event.
type UserJoined struct {
	RoomID   string
	RoomSlug string
	User     domain.User
}

func (UserJoined) EventType() Type { return UserJoinedType }

// UserLeft is emitted once the last connection of a user leaves a room.
type UserLeft struct {
	RoomID   string
	RoomSlug string
	User     domain.User
}

func (UserLeft) EventType() Type { return UserLeftType }

// UsernameChange is what the room registry fans out to every room after an
// account rename. Each room applies its own membership-matching rule before
// touching anything.
type UsernameChange struct {
	UserID      string
	OldUsername string
	NewUsername string
}

func (UsernameChange) EventType() Type { return UsernameChangedType }

// AccountUpdate is the notification emitted by the account subsystem after a
// persisted user record changed. Persistence is already done when it fires;
// the presence layer only refreshes its cached projections.
type AccountUpdate struct {
	User            domain.User
	UsernameChanged bool
}

func (AccountUpdate) EventType() Type { return AccountUpdatedType }

// Handler Each kind of event has his own handler
// Based on the Chain of responsibility pattern
type Handler interface {
	Handle(e PresenceEvent)
}

// HandlerFunc adapts a bare function into a Handler.
type HandlerFunc func(e PresenceEvent)

func (f HandlerFunc) Handle(e PresenceEvent) { f(e) }
