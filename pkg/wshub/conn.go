package wshub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn adapts a gorilla websocket connection to the Conn interface.
// gorilla permits at most one concurrent writer per connection, so the
// mutex serializes overlapping broadcasts targeting the same peer.
type wsConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func newWSConn(ws *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{ws: ws, writeTimeout: writeTimeout}
}

func (c *wsConn) WriteText(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
