package gateway

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// client pairs a websocket with its presence connection id. Outbound frames
// go through the buffered send channel so a slow reader never blocks a
// presence event dispatch.
type client struct {
	connID string
	ws     *websocket.Conn
	log    *slog.Logger

	mu     sync.Mutex // serializes enqueue against shutdown
	send   chan []byte
	closed bool
}

func newClient(connID string, ws *websocket.Conn, sendBuffer int, log *slog.Logger) *client {
	return &client{
		connID: connID,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		log:    log,
	}
}

// enqueue drops the frame when the client's buffer is full rather than
// blocking the presence dispatch chain. A fan-out goroutine may still hold
// this client after teardown started; frames arriving then are discarded.
func (c *client) enqueue(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.log.Warn("send buffer full, dropping frame", "conn_id", c.connID)
	}
}

// shutdown closes the send channel exactly once, which lets writePump send
// the close frame and exit. Holding mu guarantees no enqueue is in flight.
func (c *client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings. It owns all writes to the websocket.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
