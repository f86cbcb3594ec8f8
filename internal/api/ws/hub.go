package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// Per-client queue; a client that falls this far behind is dropped
	sendBuffer = 64
	// Events queued between the frame loop and the fan-out goroutine
	eventBuffer = 256
)

// Message types
const (
	TypeSystem    = "system"
	TypeEvent     = "event"
	TypeState     = "state"
	TypeSubscribe = "subscribe"
	TypePing      = "ping"
	TypePong      = "pong"
	TypeError     = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Renderers run on other origins during development
	},
}

// Recorder receives stream metrics. monitoring.Metrics implements it.
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

// SnapshotFunc returns the current presentation state for new subscribers
type SnapshotFunc func(ctx context.Context) (types.Snapshot, error)

// Hub fans lifecycle events out to every connected stream client
type Hub struct {
	logger   *zap.Logger
	recorder Recorder
	snapshot SnapshotFunc

	events chan types.Event

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a hub. Call Run to start delivering events.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:  logger,
		events:  make(chan types.Event, eventBuffer),
		clients: make(map[*client]struct{}),
	}
}

// WithRecorder adds stream metrics
func (h *Hub) WithRecorder(r Recorder) *Hub {
	h.recorder = r
	return h
}

// WithSnapshot sends each new client the current state after the welcome
func (h *Hub) WithSnapshot(fn SnapshotFunc) *Hub {
	h.snapshot = fn
	return h
}

// Publish queues evt for delivery. It never blocks, so it is safe to call
// from the frame loop; events are dropped when the queue is full.
func (h *Hub) Publish(evt types.Event) {
	select {
	case h.events <- evt:
	default:
		h.logger.Warn("Event queue full, dropping event",
			zap.String("type", string(evt.Type)),
			zap.String("instance_id", evt.InstanceID))
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run delivers queued events until ctx is done, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case evt := <-h.events:
			h.broadcast(evt)
		}
	}
}

func (h *Hub) broadcast(evt types.Event) {
	data, err := sonic.Marshal(types.WSMessage{Type: TypeEvent, Event: &evt})
	if err != nil {
		h.logger.Error("Failed to encode event", zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		if !c.wants(evt.Layer) {
			continue
		}
		if !c.enqueue(data) {
			slow = append(slow, c)
			continue
		}
		h.record("out", TypeEvent)
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow stream client", zap.Stringer("subscriber", c.id), zap.String("remote", c.remote))
		h.remove(c)
	}
}

// HandleConnection upgrades the request and serves the client until it disconnects
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(conn, c.ClientIP())
	h.add(cl)
	go cl.writePump()

	h.sendMessage(cl, types.WSMessage{Type: TypeSystem, Message: "connected"})
	if h.snapshot != nil {
		if snap, err := h.snapshot(c.Request.Context()); err == nil {
			h.sendMessage(cl, types.WSMessage{Type: TypeState, State: &snap})
		} else {
			h.sendMessage(cl, types.WSMessage{Type: TypeError, Message: err.Error()})
		}
	}

	h.readPump(cl)
}

func (h *Hub) readPump(cl *client) {
	defer h.remove(cl)

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.sendMessage(cl, types.WSMessage{Type: TypeError, Message: "invalid message"})
			continue
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case TypeSubscribe:
			if err := cl.setFilter(msg.Filter); err != nil {
				h.sendMessage(cl, types.WSMessage{Type: TypeError, Message: err.Error()})
				continue
			}
			h.sendMessage(cl, types.WSMessage{Type: TypeSubscribe, Filter: msg.Filter})
		case TypePing:
			h.sendMessage(cl, types.WSMessage{Type: TypePong})
		default:
			h.sendMessage(cl, types.WSMessage{Type: TypeError, Message: "unknown message type"})
		}
	}
}

func (h *Hub) sendMessage(cl *client, msg types.WSMessage) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", zap.Error(err))
		return
	}
	if cl.enqueue(data) {
		h.record("out", msg.Type)
	}
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	if h.recorder != nil {
		h.recorder.IncWSConnections()
	}
	h.logger.Debug("Stream client connected", zap.Stringer("subscriber", cl.id), zap.String("remote", cl.remote))
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl]
	delete(h.clients, cl)
	h.mu.Unlock()

	if !ok {
		return
	}
	cl.close()
	if h.recorder != nil {
		h.recorder.DecWSConnections()
	}
	h.logger.Debug("Stream client disconnected", zap.Stringer("subscriber", cl.id), zap.String("remote", cl.remote))
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.remove(c)
	}
}

func (h *Hub) record(direction, msgType string) {
	if h.recorder != nil {
		h.recorder.RecordWSMessage(direction, msgType)
	}
}
