package services

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/presence"
	"log/slog"

	"github.com/google/uuid"
)

// IPresenceService is the operation surface the controller layer drives:
// connection lifecycle, room membership, and the query side of presence.
type IPresenceService interface {
	Connect(connType domain.ConnectionType, metadata map[string]string) *domain.Connection
	Authenticate(connID string, user domain.User) error
	Disconnect(connID string) bool
	JoinRoom(connID, roomID, slug string) (*presence.Room, error)
	LeaveRoom(connID, roomID string)
	RoomUsers(roomID string) []domain.User
	RoomConnections(roomID string) []*domain.Connection
	OnlineUsers() []domain.User
	Subscribe(h event.Handler)
}

type PresenceService struct {
	log         *slog.Logger
	connections *presence.ConnectionRegistry
	rooms       *presence.RoomRegistry
}

func NewPresenceService(log *slog.Logger, connections *presence.ConnectionRegistry, rooms *presence.RoomRegistry) *PresenceService {
	return &PresenceService{log: log, connections: connections, rooms: rooms}
}

// Connect registers a fresh anonymous connection for a transport session.
// Metadata is whatever the transport knows about its peer; it ends up in the
// audit log, never in presence decisions.
func (s *PresenceService) Connect(connType domain.ConnectionType, metadata map[string]string) *domain.Connection {
	conn := domain.NewConnection(uuid.NewString(), connType, metadata)
	s.connections.Add(conn)
	s.log.Debug("connection registered",
		"conn_id", conn.ID, "type", conn.Type, "remote_addr", metadata["remote_addr"])
	return conn
}

// Authenticate binds a live connection to a user identity. The connection
// is re-fetched by id rather than trusted from the caller: a disconnect may
// have purged it while the identity lookup was in flight.
func (s *PresenceService) Authenticate(connID string, user domain.User) error {
	conn := s.connections.Get(connID)
	if conn == nil {
		return errors.ErrConnectionNotFound
	}
	conn.SetUser(user)
	s.log.Debug("connection authenticated", "conn_id", conn.ID, "user_id", user.ID)
	return nil
}

// Disconnect purges the connection from every room, then drops it from the
// registry. Reports whether the registry actually held it; calling twice is
// safe and returns false the second time.
func (s *PresenceService) Disconnect(connID string) bool {
	conn := s.connections.Get(connID)
	if conn != nil {
		s.rooms.RemoveConnection(conn)
	}
	removed := s.connections.Remove(connID)
	if removed {
		s.log.Debug("connection removed", "conn_id", connID)
	}
	return removed
}

// JoinRoom adds the connection to the room, creating the room on first
// sight. The room is returned so the controller can answer with its state.
func (s *PresenceService) JoinRoom(connID, roomID, slug string) (*presence.Room, error) {
	conn := s.connections.Get(connID)
	if conn == nil {
		return nil, errors.ErrConnectionNotFound
	}
	room := s.rooms.GetOrCreate(roomID, slug)
	room.Join(conn)
	return room, nil
}

// LeaveRoom is a no-op when either the connection or the room is unknown.
func (s *PresenceService) LeaveRoom(connID, roomID string) {
	conn := s.connections.Get(connID)
	room := s.rooms.Get(roomID)
	if conn == nil || room == nil {
		return
	}
	room.Leave(conn)
}

// RoomUsers returns the distinct users present in a room, nil for an
// unknown room id.
func (s *PresenceService) RoomUsers(roomID string) []domain.User {
	room := s.rooms.Get(roomID)
	if room == nil {
		return nil
	}
	return room.DistinctUsers()
}

// RoomConnections returns the member connections of a room, nil for an
// unknown room id. The gateway uses it to address fan-out frames.
func (s *PresenceService) RoomConnections(roomID string) []*domain.Connection {
	room := s.rooms.Get(roomID)
	if room == nil {
		return nil
	}
	return room.Members()
}

// OnlineUsers returns the distinct users with at least one live connection.
func (s *PresenceService) OnlineUsers() []domain.User {
	return s.connections.Users()
}

// Subscribe attaches a handler to the room registry so the caller observes
// user_join/user_leave in every room, including rooms created later.
func (s *PresenceService) Subscribe(h event.Handler) {
	s.rooms.Subscribe(h)
}
