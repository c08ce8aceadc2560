package ws

import (
	"sync"
	"time"

	"github.com/cwrk-planet/presence-hub/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsConn queues outbound messages; writeLoop drains the queue so a slow
// peer never blocks the goroutine that emitted to it.
type wsConn struct {
	id   string
	conn *websocket.Conn

	send      chan Message
	closed    chan struct{}
	closeOnce sync.Once
}

func newWsConn(c *websocket.Conn, queueSize int) *wsConn {
	return &wsConn{
		id:     uuid.NewString(),
		conn:   c,
		send:   make(chan Message, queueSize),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(msg Message) error {
	select {
	case <-c.closed:
		return domain.ErrConnClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return domain.ErrSendQueueFull
	}
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) write(msg Message, timeout time.Duration) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	return c.conn.WriteJSON(msg)
}
