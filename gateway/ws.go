// Package gateway is the websocket controller layer. It translates socket
// lifecycle and client commands into presence operations, and serializes
// presence events back onto the wire. All membership state lives in the
// presence core; the gateway only keeps the socket for each connection id.
package gateway

import (
	"chat-hub/auth"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// command is an inbound client frame.
type command struct {
	Action string `json:"action"` // "join" | "leave" | "users"
	Room   string `json:"room"`
	Slug   string `json:"slug,omitempty"`
}

// frame is an outbound event notification.
type frame struct {
	Event string       `json:"event"`
	Room  string       `json:"room,omitempty"`
	Slug  string       `json:"slug,omitempty"`
	User  *frameUser   `json:"user,omitempty"`
	Users []*frameUser `json:"users,omitempty"`
}

type frameUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

type Gateway struct {
	log      *slog.Logger
	presence services.IPresenceService
	upgrader websocket.Upgrader

	mu         sync.RWMutex
	clients    map[string]*client // presence connection id -> socket
	sendBuffer int
}

func NewGateway(log *slog.Logger, presenceService services.IPresenceService, sendBuffer int) *Gateway {
	g := &Gateway{
		log:      log,
		presence: presenceService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients:    make(map[string]*client),
		sendBuffer: sendBuffer,
	}
	// One registry-level subscription covers every room, including rooms
	// created after this point.
	presenceService.Subscribe(event.HandlerFunc(g.onPresenceEvent))
	return g
}

// ServeWS upgrades the request and runs the connection until the socket
// closes. A valid session token binds the connection to its user; without
// one the connection stays anonymous and invisible to user-level presence.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	connType := domain.ConnectionWeb
	if r.URL.Query().Get("type") == string(domain.ConnectionBot) {
		connType = domain.ConnectionBot
	}
	conn := g.presence.Connect(connType, map[string]string{
		"remote_addr": r.RemoteAddr,
		"user_agent":  r.UserAgent(),
	})

	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := auth.ValidateToken(token)
		if err != nil {
			g.log.Warn("rejecting invalid session token", "conn_id", conn.ID)
			g.presence.Disconnect(conn.ID)
			_ = ws.Close()
			return
		}
		if err := g.presence.Authenticate(conn.ID, domain.User{
			ID:       claims.UserID,
			Username: claims.Username,
		}); err != nil {
			g.presence.Disconnect(conn.ID)
			_ = ws.Close()
			return
		}
	}

	c := newClient(conn.ID, ws, g.sendBuffer, g.log)
	g.register(c)
	go c.writePump()
	g.readLoop(c)
}

// readLoop processes inbound commands until the socket errors out, then
// tears the connection down. Disconnect purges every room the connection
// touched, whatever the client claimed about its memberships.
func (g *Gateway) readLoop(c *client) {
	defer func() {
		g.unregister(c)
		g.presence.Disconnect(c.connID)
		c.shutdown()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.log.Debug("websocket closed unexpectedly", "conn_id", c.connID, "error", err)
			}
			return
		}

		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			g.log.Debug("discarding malformed frame", "conn_id", c.connID)
			continue
		}
		g.handleCommand(c, cmd)
	}
}

func (g *Gateway) handleCommand(c *client, cmd command) {
	switch cmd.Action {
	case "join":
		if _, err := g.presence.JoinRoom(c.connID, cmd.Room, cmd.Slug); err != nil {
			g.log.Warn("join failed", "conn_id", c.connID, "room", cmd.Room, "error", err)
		}
	case "leave":
		g.presence.LeaveRoom(c.connID, cmd.Room)
	case "users":
		users := make([]*frameUser, 0)
		for _, u := range g.presence.RoomUsers(cmd.Room) {
			users = append(users, toFrameUser(u))
		}
		payload, err := json.Marshal(frame{Event: "users", Room: cmd.Room, Users: users})
		if err == nil {
			c.enqueue(payload)
		}
	default:
		g.log.Debug("unknown action", "conn_id", c.connID, "action", cmd.Action)
	}
}

// onPresenceEvent serializes a user_join/user_leave onto every member
// connection of the affected room.
func (g *Gateway) onPresenceEvent(e event.PresenceEvent) {
	var f frame
	switch evt := e.(type) {
	case event.UserJoined:
		f = frame{Event: "user_join", Room: evt.RoomID, Slug: evt.RoomSlug, User: toFrameUser(evt.User)}
	case event.UserLeft:
		f = frame{Event: "user_leave", Room: evt.RoomID, Slug: evt.RoomSlug, User: toFrameUser(evt.User)}
	default:
		return
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return
	}
	for _, conn := range g.presence.RoomConnections(f.Room) {
		if c := g.client(conn.ID); c != nil {
			c.enqueue(payload)
		}
	}
}

func toFrameUser(u domain.User) *frameUser {
	return &frameUser{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName}
}

func (g *Gateway) register(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[c.connID] = c
}

func (g *Gateway) unregister(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.clients, c.connID)
}

func (g *Gateway) client(connID string) *client {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.clients[connID]
}
