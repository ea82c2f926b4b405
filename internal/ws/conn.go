package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errConnClosed = errors.New("connection closed")

const writeWait = 10 * time.Second

// wsConn wraps a gorilla connection with a write lock: the registry and
// the read-loop handler may both write, and gorilla allows one writer.
type wsConn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

func newWSConn(c *websocket.Conn) *wsConn {
	return &wsConn{ws: c}
}

func (c *wsConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		c.closed = true
		return err
	}
	return nil
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.ws.Close()
}
