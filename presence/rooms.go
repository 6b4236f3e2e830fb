package presence

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"sync"
)

// RoomRegistry is the lazily-populated table of rooms, keyed by id with a
// secondary slug lookup. A handler subscribed once at the registry level
// observes joins and leaves in every room, including rooms created
// afterward: each new room's events are re-emitted through the registry.
//
// Rooms are never evicted. The map grows with distinct room ids ever seen,
// which keeps slug and last-activity cheap for the next join.
type RoomRegistry struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	order    []string
	handlers []event.Handler
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*Room)}
}

// Subscribe registers a registry-level handler for user_join/user_leave
// events from every room, present and future.
func (r *RoomRegistry) Subscribe(h event.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

func (r *RoomRegistry) Get(roomID string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[domain.NormalizeID(roomID)]
}

// FindBySlug returns the first room whose slug equals the argument, in
// creation order, or nil.
func (r *RoomRegistry) FindBySlug(slug string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if room := r.rooms[id]; room.Slug == slug {
			return room
		}
	}
	return nil
}

// GetOrCreate returns the room for roomID, creating and registering it on
// first sight. The slug defaults to the id when empty. The new room's
// events are wired into the registry's own dispatch before it is returned.
func (r *RoomRegistry) GetOrCreate(roomID, slug string) *Room {
	roomID = domain.NormalizeID(roomID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok {
		return room
	}
	room := NewRoom(roomID, slug)
	room.Subscribe(event.HandlerFunc(r.reemit))
	r.rooms[roomID] = room
	r.order = append(r.order, roomID)
	return room
}

// BroadcastUsernameChange forwards the rename to every room in creation
// order. Rooms without a member bound to the renamed user are unaffected.
func (r *RoomRegistry) BroadcastUsernameChange(data event.UsernameChange) {
	for _, room := range r.all() {
		room.UsernameChanged(data)
	}
}

// RemoveConnection purges the connection from every room. This is the
// safety net invoked on disconnect regardless of which rooms the caller
// believes the connection had joined: no dangling membership survives.
func (r *RoomRegistry) RemoveConnection(conn *domain.Connection) {
	for _, room := range r.all() {
		room.RemoveConnection(conn)
	}
}

// Rooms returns every room in creation order.
func (r *RoomRegistry) Rooms() []*Room {
	return r.all()
}

func (r *RoomRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *RoomRegistry) all() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*Room, 0, len(r.order))
	for _, id := range r.order {
		rooms = append(rooms, r.rooms[id])
	}
	return rooms
}

// reemit forwards a child room's event to the registry-level handlers.
func (r *RoomRegistry) reemit(e event.PresenceEvent) {
	r.mu.RLock()
	handlers := append([]event.Handler(nil), r.handlers...)
	r.mu.RUnlock()
	for _, h := range handlers {
		h.Handle(e)
	}
}
