package domain

// ConnectionType discriminates transport flavours ("web" browser sessions,
// "bot" integrations...). Queries can filter on it.
type ConnectionType string

const (
	ConnectionWeb ConnectionType = "web"
	ConnectionBot ConnectionType = "bot"
)

// Connection is one live transport session, optionally bound to a user once
// the session authenticates. It is owned exclusively by the connection
// registry: created when the transport session starts, removed when it ends.
type Connection struct {
	ID   string
	Type ConnectionType

	// Metadata carries transport facts (remote address, user agent) for
	// audit logging. Presence semantics never depend on it.
	Metadata map[string]string

	// user is nil for anonymous connections. Each connection holds its own
	// copy so a username update can be applied per cached reference.
	user *User
}

func NewConnection(id string, connType ConnectionType, metadata map[string]string) *Connection {
	return &Connection{
		ID:       NormalizeID(id),
		Type:     connType,
		Metadata: metadata,
	}
}

// User returns the bound user projection, or nil for anonymous connections.
func (c *Connection) User() *User {
	return c.user
}

// SetUser binds the connection to a user identity. A connection references
// at most one identity at a time; rebinding replaces the previous one.
func (c *Connection) SetUser(u User) {
	u.ID = NormalizeID(u.ID)
	c.user = &u
}

func (c *Connection) Authenticated() bool {
	return c.user != nil
}
