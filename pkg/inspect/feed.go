package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/recalc/pkg/exprjson"
	"github.com/vango-dev/recalc/pkg/recalc"
)

// MessageType names a feed message.
type MessageType string

const (
	MessageChange MessageType = "change"
	MessageHello  MessageType = "hello"
)

// Message is sent to feed clients.
type Message struct {
	Type MessageType     `json:"type"`
	Name string          `json:"name,omitempty"`
	Old  *exprjson.Value `json:"old,omitempty"`
	New  *exprjson.Value `json:"new,omitempty"`
}

// client pairs a connection with its write lock; gorilla connections
// allow one concurrent writer.
type client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) write(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Feed manages WebSocket connections receiving value changes.
type Feed struct {
	logger   *slog.Logger
	clients  map[*websocket.Conn]*client
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

// NewFeed creates an empty feed.
func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		logger:  logger,
		clients: make(map[*websocket.Conn]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the request and keeps the connection registered
// until the client disconnects.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := f.upgrader.Upgrade(w, req, nil)
	if err != nil {
		f.logger.Debug("feed upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	f.mu.Lock()
	f.clients[conn] = c
	f.mu.Unlock()
	f.logger.Debug("feed client connected", "remote", req.RemoteAddr)

	if data, err := json.Marshal(Message{Type: MessageHello}); err == nil {
		_ = c.write(data)
	}

	// Clients only listen; reads detect the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	f.drop(conn)
}

// Publish broadcasts a change of the variable known as name.
func (f *Feed) Publish(name string, change recalc.ValueChange) {
	old := exprjson.EncodeValue(change.Old)
	next := exprjson.EncodeValue(change.New)
	f.broadcast(Message{Type: MessageChange, Name: name, Old: &old, New: &next})
}

// broadcast sends a message to all connected clients.
func (f *Feed) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		f.logger.Error("feed encode failed", "error", err)
		return
	}

	f.mu.RLock()
	clients := make([]*client, 0, len(f.clients))
	for _, c := range f.clients {
		clients = append(clients, c)
	}
	f.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			f.drop(c.conn)
		}
	}
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	_, ok := f.clients[conn]
	delete(f.clients, conn)
	f.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close closes all client connections.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for conn := range f.clients {
		conn.Close()
		delete(f.clients, conn)
	}
}
