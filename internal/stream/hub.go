package stream

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gorilla/websocket"

	"streamworld/internal/engine"
	"streamworld/internal/world"
)

const (
	writeWait   = 5 * time.Second
	sendBacklog = 16
)

// IntentQueue accepts intents from any goroutine. *world.Loop satisfies it.
type IntentQueue interface {
	Queue(in world.Intent)
}

// Message is a JSON intent sent by a client.
type Message struct {
	Type string  `json:"type"`
	ID   uint32  `json:"id"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	Z    float32 `json:"z"`
}

// Intent converts the message to a world intent.
func (m Message) Intent() (world.Intent, error) {
	ref := engine.EntityRef{ID: engine.EntityID(m.ID)}
	v := rl.Vector3{X: m.X, Y: m.Y, Z: m.Z}
	switch m.Type {
	case "velocity":
		return world.SetVelocity(ref, v), nil
	case "impulse":
		return world.AddVelocity(ref, v), nil
	case "kill":
		return world.KillIntent(ref), nil
	case "teleport":
		return world.Teleport(ref, v), nil
	}
	return world.Intent{}, fmt.Errorf("unknown message type %q", m.Type)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to websocket clients and forwards their intents to
// the simulation.
type Hub struct {
	upgrader websocket.Upgrader
	queue    IntentQueue
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(queue IntentQueue, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		queue:   queue,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and serves the client until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("stream: upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBacklog)}
	h.add(c)
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Printf("stream: client %s connected (%d total)", c.conn.RemoteAddr(), n)
}

// drop unregisters c and closes its send channel. It is safe to call twice.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		h.logger.Printf("stream: client %s disconnected", c.conn.RemoteAddr())
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.drop(c)
		c.conn.Close()
	}()
	for {
		var m Message
		if err := c.conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Printf("stream: read: %v", err)
			}
			return
		}
		in, err := m.Intent()
		if err != nil {
			h.logger.Printf("stream: %v", err)
			continue
		}
		if h.queue != nil {
			h.queue.Queue(in)
		}
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			h.logger.Printf("stream: write: %v", err)
			c.conn.Close()
			h.drop(c)
			break
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// Broadcast queues data for every client. Clients whose backlog is full are
// disconnected.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()
	for _, c := range slow {
		h.logger.Printf("stream: client %s too slow, dropping", c.conn.RemoteAddr())
		h.drop(c)
		c.conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.drop(c)
	}
}
