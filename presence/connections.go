package presence

import (
	"chat-hub/domain"
	"sync"

	"github.com/samber/lo"
)

// Filter restricts a ConnectionRegistry query. Zero-value fields impose no
// constraint; supplied fields combine with logical AND.
type Filter struct {
	// User matches against the bound user's id OR username.
	User string
	// UserID matches the bound user's id exactly.
	UserID string
	// Type matches the transport type exactly.
	Type domain.ConnectionType
}

// ConnectionRegistry is the process-wide table of live connections, keyed by
// connection id. It owns the Connection lifecycle: the controller layer adds
// one on transport-connect and removes it on transport-disconnect.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	conns map[string]*domain.Connection
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{conns: make(map[string]*domain.Connection)}
}

// Add inserts the connection, overwriting any previous entry with the same
// id. Last write wins; there is no uniqueness error.
func (r *ConnectionRegistry) Add(conn *domain.Connection) {
	if conn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID] = conn
}

func (r *ConnectionRegistry) Get(id string) *domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[domain.NormalizeID(id)]
}

// Contains is false for a nil argument.
func (r *ConnectionRegistry) Contains(conn *domain.Connection) bool {
	if conn == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[conn.ID]
	return ok
}

// Query returns every connection satisfying all supplied filter fields.
func (r *ConnectionRegistry) Query(f Filter) []*domain.Connection {
	f.UserID = domain.NormalizeID(f.UserID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(lo.Values(r.conns), func(c *domain.Connection, _ int) bool {
		u := c.User()
		if f.User != "" && u != nil && u.ID != f.User && u.Username != f.User {
			return false
		}
		if f.UserID != "" && (u == nil || u.ID != f.UserID) {
			return false
		}
		if f.Type != "" && c.Type != f.Type {
			return false
		}
		return true
	})
}

// Users derives the distinct users currently online: connections without a
// resolved user are skipped and duplicates collapse by user id. Order is
// not significant.
func (r *ConnectionRegistry) Users() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := lo.FilterMap(lo.Values(r.conns), func(c *domain.Connection, _ int) (domain.User, bool) {
		// User shouldn't be nil here - but anonymous sessions exist
		if c.User() == nil {
			return domain.User{}, false
		}
		return *c.User(), true
	})
	return lo.UniqBy(users, func(u domain.User) string { return u.ID })
}

func (r *ConnectionRegistry) UserIDs() []string {
	return lo.Map(r.Users(), func(u domain.User, _ int) string { return u.ID })
}

func (r *ConnectionRegistry) Usernames() []string {
	return lo.Map(r.Users(), func(u domain.User, _ int) string { return u.Username })
}

// Remove deletes the entry for id and reports whether anything was removed.
// Removing twice is safe and returns false the second time.
func (r *ConnectionRegistry) Remove(id string) bool {
	id = domain.NormalizeID(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return false
	}
	delete(r.conns, id)
	return true
}

// RemoveConnection is Remove keyed by the connection itself. False for nil.
func (r *ConnectionRegistry) RemoveConnection(conn *domain.Connection) bool {
	if conn == nil {
		return false
	}
	return r.Remove(conn.ID)
}

// RemoveAll clears every entry. Used for full shutdown.
func (r *ConnectionRegistry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns = make(map[string]*domain.Connection)
}

// Size returns the number of live connections.
func (r *ConnectionRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
