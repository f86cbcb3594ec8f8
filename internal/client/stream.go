package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/GriffinCanCode/uilayers/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// Stream is a live subscription to the host's lifecycle event stream
type Stream struct {
	conn     *websocket.Conn
	messages chan types.WSMessage
	done     chan struct{}
	writeMu  sync.Mutex
	err      error
	once     sync.Once
}

// StreamURL converts the API base URL to the stream endpoint
func StreamURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/stream"
	return u.String(), nil
}

// Stream connects to /stream. Messages are delivered until ctx is done or the
// connection drops; Err reports why the channel closed.
func (c *Client) Stream(ctx context.Context) (*Stream, error) {
	target, err := StreamURL(c.baseURL)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set(tracing.HeaderTraceID, uuid.NewString())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	s := &Stream{
		conn:     conn,
		messages: make(chan types.WSMessage, 64),
		done:     make(chan struct{}),
	}
	go s.read()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	return s, nil
}

// Messages delivers decoded frames; it is closed when the stream ends
func (s *Stream) Messages() <-chan types.WSMessage {
	return s.messages
}

// Err returns the read error that ended the stream, once Messages is closed
func (s *Stream) Err() error {
	return s.err
}

// Subscribe restricts delivered events to the given layers; none means every layer
func (s *Stream) Subscribe(layers ...types.Layer) error {
	return s.send(types.WSMessage{Type: "subscribe", Filter: layers})
}

// Ping asks the host for a pong message
func (s *Stream) Ping() error {
	return s.send(types.WSMessage{Type: "ping"})
}

func (s *Stream) send(msg types.WSMessage) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Close ends the subscription
func (s *Stream) Close() {
	s.once.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
}

func (s *Stream) read() {
	defer close(s.messages)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.err = err
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			continue
		}
		select {
		case s.messages <- msg:
		case <-s.done:
			return
		}
	}
}
