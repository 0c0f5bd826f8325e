package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"festival-media-center/internal/notify"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writeWait bounds a single toast write so a peer that stops reading cannot
// stall the form that notifies it
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin is enforced by the CORS layer
	},
}

// Client represents a WebSocket connection listening for one form session
type Client struct {
	SessionID string
	conn      *websocket.Conn
	writeMu   sync.Mutex
}

func (c *Client) write(data []byte, wait time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(wait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Manager handles WebSocket connections and pushes toasts to them
type Manager struct {
	clients    map[string][]*Client
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	writeWait  time.Duration
	log        *zap.Logger
}

// NewManager creates a manager and starts its registration loop
func NewManager(log *zap.Logger) *Manager {
	m := &Manager{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		writeWait:  writeWait,
		log:        log,
	}
	go m.run()
	return m
}

// run serialises registration changes
func (m *Manager) run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.SessionID] = append(m.clients[client.SessionID], client)
			m.mu.Unlock()
		case client := <-m.unregister:
			m.mu.Lock()
			if clients, ok := m.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						m.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						break
					}
				}
				if len(m.clients[client.SessionID]) == 0 {
					delete(m.clients, client.SessionID)
				}
			}
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// Stop ends the registration loop and closes every open connection
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.mu.Lock()
		defer m.mu.Unlock()
		for id, clients := range m.clients {
			for _, c := range clients {
				c.conn.Close()
			}
			delete(m.clients, id)
		}
	})
}

// RegisterClient registers a new WebSocket client
func (m *Manager) RegisterClient(client *Client) {
	select {
	case m.register <- client:
	case <-m.done:
	}
}

// UnregisterClient unregisters a WebSocket client
func (m *Manager) UnregisterClient(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

// Connected returns the number of clients listening for a session
func (m *Manager) Connected(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[sessionID])
}

// Notify sends a toast to the clients of the message's session
func (m *Manager) Notify(msg notify.Message) {
	if msg.SessionID == "" {
		return
	}

	m.mu.RLock()
	clients := append([]*Client(nil), m.clients[msg.SessionID]...)
	m.mu.RUnlock()

	if len(clients) == 0 {
		return // No clients connected for this session
	}

	data, err := json.Marshal(msg)
	if err != nil {
		m.log.Error("failed to marshal notification", zap.Error(err))
		return
	}

	for _, client := range clients {
		if err := client.write(data, m.writeWait); err != nil {
			// Handle error but continue sending to other clients
			m.log.Debug("dropping toast for client", zap.String("session_id", msg.SessionID), zap.Error(err))
			continue
		}
	}
}

// Serve upgrades the request and keeps the connection registered until the
// peer goes away
func (m *Manager) Serve(w http.ResponseWriter, r *http.Request, sessionID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{SessionID: sessionID, conn: conn}
	m.RegisterClient(client)
	defer func() {
		m.UnregisterClient(client)
		conn.Close()
	}()

	// The channel is server-to-client only; reading detects the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
