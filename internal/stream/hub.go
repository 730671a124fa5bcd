// Package stream pushes sampled snapshots to websocket clients.
package stream

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/threebody/internal/dynamo"
)

const (
	defaultBuffer = 64
	writeWait     = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type bodyDTO struct {
	Mass float64 `json:"mass"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
}

// Message is the JSON frame sent to clients. Type is "frame" for a
// snapshot, "done" when the run ends normally and "error" when it fails.
type Message struct {
	Type   string    `json:"type"`
	Step   int       `json:"step"`
	Time   float64   `json:"time"`
	Bodies []bodyDTO `json:"bodies,omitempty"`
	Error  string    `json:"error,omitempty"`
}

func frameMessage(s dynamo.Snapshot) Message {
	bodies := make([]bodyDTO, len(s.Bodies))
	for i, b := range s.Bodies {
		bodies[i] = bodyDTO{Mass: b.Mass, X: b.Position.X, Y: b.Position.Y, VX: b.Velocity.X, VY: b.Velocity.Y}
	}
	return Message{Type: "frame", Step: s.Step, Time: s.Time, Bodies: bodies}
}

type client struct {
	conn *websocket.Conn
	send chan Message
}

// Hub fans messages out to every connected client. A client that cannot
// keep up loses messages rather than slowing the others down.
type Hub struct {
	logger  *slog.Logger
	buffer  int
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	dropped int
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:  logger,
		buffer:  defaultBuffer,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan Message, h.buffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream finished"))
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected", "remote", r.RemoteAddr, "clients", n)

	go h.writer(c)

	// Reader: clients send nothing useful, but reading surfaces disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
	h.logger.Info("client disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) writer(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) publish(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped++
		}
	}
}

// Broadcast queues s for every connected client.
func (h *Hub) Broadcast(s dynamo.Snapshot) {
	h.publish(frameMessage(s))
}

// Finish tells clients the run has ended, with err if it failed.
func (h *Hub) Finish(err error) {
	if err != nil {
		h.publish(Message{Type: "error", Error: err.Error()})
		return
	}
	h.publish(Message{Type: "done"})
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped is the number of messages discarded for slow clients.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close disconnects every client after its queued messages are written.
// Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Play broadcasts every snapshot of seq, waiting interval between frames,
// then sends the end-of-run message. It returns the run's error, or the
// context's if it is cancelled first.
func Play(ctx context.Context, seq iter.Seq2[dynamo.Snapshot, error], h *Hub, interval time.Duration) error {
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	for s, err := range seq {
		if err != nil {
			h.Finish(err)
			return err
		}
		h.Broadcast(s)
		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			h.Finish(ctx.Err())
			return ctx.Err()
		case <-tick:
		}
	}
	h.Finish(nil)
	return nil
}
