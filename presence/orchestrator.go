package presence

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"log/slog"

	"github.com/samber/lo"
)

// Orchestrator wires the connection and room registries together and
// propagates account changes into live presence state. Both registries are
// passed at construction time; there is no ambient global.
type Orchestrator struct {
	log         *slog.Logger
	connections *ConnectionRegistry
	rooms       *RoomRegistry
}

func NewOrchestrator(log *slog.Logger, connections *ConnectionRegistry, rooms *RoomRegistry) *Orchestrator {
	return &Orchestrator{log: log, connections: connections, rooms: rooms}
}

// Handle lets the orchestrator sit on any event dispatch chain. Only
// account updates are acted upon.
func (o *Orchestrator) Handle(e event.PresenceEvent) {
	if update, ok := e.(event.AccountUpdate); ok {
		o.AccountUpdated(update)
	}
}

// AccountUpdated merges a changed account record into the cached presence
// projections. When the updated user has no live connection the event is
// discarded: there is nothing to refresh and nobody to notify. When the
// username changed, the rename is fanned out to every room so member caches
// stay consistent.
//
// The account record itself is already persisted by the account subsystem
// before this fires; no storage is touched here.
func (o *Orchestrator) AccountUpdated(data event.AccountUpdate) {
	userID := domain.NormalizeID(data.User.ID)

	cached, ok := lo.Find(o.connections.Users(), func(u domain.User) bool {
		return u.ID == userID
	})
	if !ok {
		o.log.Debug("account update for user without live presence, dropping", "user_id", userID)
		return
	}
	oldUsername := cached.Username

	for _, conn := range o.connections.Query(Filter{UserID: userID}) {
		conn.User().Merge(data.User)
	}

	if data.UsernameChanged {
		o.log.Info("broadcasting username change",
			"user_id", userID, "old", oldUsername, "new", data.User.Username)
		o.rooms.BroadcastUsernameChange(event.UsernameChange{
			UserID:      userID,
			OldUsername: oldUsername,
			NewUsername: data.User.Username,
		})
	}
}
