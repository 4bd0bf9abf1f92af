package realtime

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// WebSocketConn serialises writes on a websocket connection.
type WebSocketConn struct {
	Conn *websocket.Conn
	mu   sync.Mutex
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{Conn: c}
}

func (w *WebSocketConn) WriteText(msg []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteMessage(websocket.TextMessage, msg)
}

// Pump writes everything sent to the client until its channel closes.
func (c *Client) Pump() {
	for msg := range c.Send {
		if err := c.Conn.WriteText(msg); err != nil {
			return
		}
	}
}
