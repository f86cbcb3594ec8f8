package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GriffinCanCode/uilayers/internal/shared/id"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

type client struct {
	id     id.SubscriberID
	conn   *websocket.Conn
	remote string
	send   chan []byte

	mu     sync.RWMutex
	filter map[types.Layer]bool // nil receives every layer
	closed bool
}

func newClient(conn *websocket.Conn, remote string) *client {
	return &client{
		id:     id.NewSubscriberID(),
		conn:   conn,
		remote: remote,
		send:   make(chan []byte, sendBuffer),
	}
}

func (c *client) wants(l types.Layer) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter == nil || c.filter[l]
}

func (c *client) setFilter(layers []types.Layer) error {
	var filter map[types.Layer]bool
	if len(layers) > 0 {
		filter = make(map[types.Layer]bool, len(layers))
		for _, l := range layers {
			if _, err := types.ParseLayer(string(l)); err != nil {
				return err
			}
			filter[l] = true
		}
	}

	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
	return nil
}

// enqueue reports false when the client is closed or its queue is full
func (c *client) enqueue(data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
