// Package presence holds the live, in-process view of which users and
// connections are currently active and where. Nothing in this package is
// persisted: state exists only as long as the owning process and is rebuilt
// from scratch by clients reconnecting.
package presence

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Room is a named membership set of connections with user-level join/leave
// semantics: several simultaneous connections of the same user collapse into
// a single presence transition. Rooms are created lazily on first join and
// live for the process lifetime, even at zero members, so slug and activity
// survive until the next join.
type Room struct {
	ID   string
	Slug string

	mu         sync.RWMutex
	members    map[string]*domain.Connection
	handlers   []event.Handler
	lastActive time.Time
}

func NewRoom(id, slug string) *Room {
	id = domain.NormalizeID(id)
	slug = domain.NormalizeID(slug)
	if slug == "" {
		slug = id
	}
	return &Room{
		ID:         id,
		Slug:       slug,
		members:    make(map[string]*domain.Connection),
		lastActive: time.Now(),
	}
}

// Subscribe registers a handler for this room's user_join/user_leave
// events. Dispatch is synchronous with the mutation that triggers it, so
// every subscriber observes transitions in the same relative order.
func (r *Room) Subscribe(h event.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

// Join adds a connection to the member set. Joining twice is a no-op. The
// user's connection count is taken before the add: only the transition from
// zero emits a user_join, so a second tab of the same user stays silent.
func (r *Room) Join(conn *domain.Connection) {
	if conn == nil {
		return
	}
	r.mu.Lock()
	if _, ok := r.members[conn.ID]; ok {
		r.mu.Unlock()
		return
	}
	before := r.userConnectionsLocked(conn.User())
	r.members[conn.ID] = conn
	r.lastActive = time.Now()
	handlers := r.snapshotHandlersLocked()
	r.mu.Unlock()

	if before == 0 && conn.Authenticated() {
		dispatch(handlers, event.UserJoined{RoomID: r.ID, RoomSlug: r.Slug, User: *conn.User()})
	}
}

// Leave removes a connection from the member set, a no-op when the
// connection was never a member. Once the user's last connection is gone
// the room emits a single user_leave.
func (r *Room) Leave(conn *domain.Connection) {
	if conn == nil {
		return
	}
	r.mu.Lock()
	if _, ok := r.members[conn.ID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.members, conn.ID)
	remaining := r.userConnectionsLocked(conn.User())
	handlers := r.snapshotHandlersLocked()
	r.mu.Unlock()

	if remaining == 0 && conn.Authenticated() {
		dispatch(handlers, event.UserLeft{RoomID: r.ID, RoomSlug: r.Slug, User: *conn.User()})
	}
}

// RemoveConnection is the blanket purge entry point used by the registry on
// disconnect. Same semantics as Leave, safe to call any number of times.
func (r *Room) RemoveConnection(conn *domain.Connection) {
	r.Leave(conn)
}

// UsernameChanged refreshes the cached username on every member connection
// bound to the renamed user. Rooms without such a member are untouched.
// Emits nothing on its own: notifying transports is the caller's business.
func (r *Room) UsernameChanged(data event.UsernameChange) {
	userID := domain.NormalizeID(data.UserID)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, member := range r.members {
		if u := member.User(); u != nil && u.ID == userID {
			u.Username = data.NewUsername
		}
	}
}

// Contains reports whether the connection is currently a member.
func (r *Room) Contains(conn *domain.Connection) bool {
	if conn == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[conn.ID]
	return ok
}

func (r *Room) Members() []*domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.members)
}

// DistinctUsers groups the member connections by user id. Anonymous
// connections are ignored.
func (r *Room) DistinctUsers() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := lo.FilterMap(lo.Values(r.members), func(c *domain.Connection, _ int) (domain.User, bool) {
		if c.User() == nil {
			return domain.User{}, false
		}
		return *c.User(), true
	})
	return lo.UniqBy(users, func(u domain.User) string { return u.ID })
}

func (r *Room) LastActive() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}

// userConnectionsLocked counts the member connections bound to the same
// user as conn. Zero for anonymous connections.
func (r *Room) userConnectionsLocked(user *domain.User) int {
	if user == nil {
		return 0
	}
	count := 0
	for _, member := range r.members {
		if u := member.User(); u != nil && u.ID == user.ID {
			count++
		}
	}
	return count
}

func (r *Room) snapshotHandlersLocked() []event.Handler {
	return append([]event.Handler(nil), r.handlers...)
}

func dispatch(handlers []event.Handler, e event.PresenceEvent) {
	for _, h := range handlers {
		h.Handle(e)
	}
}
