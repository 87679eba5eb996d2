package chat

import (
	"sync"
	"time"

	"github.com/mkarpis/hivechat-server/internal/transport"
)

// ClientManager tracks sessions by connection. Unauthenticated sessions
// live in a pending set so that resolving the same connection twice yields
// the same instance; only authenticated sessions count as registered.
type ClientManager struct {
	mu      sync.RWMutex
	pending map[transport.Conn]*Client
	clients map[transport.Conn]*Client
}

func NewClientManager() *ClientManager {
	return &ClientManager{
		pending: make(map[transport.Conn]*Client),
		clients: make(map[transport.Conn]*Client),
	}
}

// Resolve returns the session bound to a connection, materializing a new
// unauthenticated one on first contact. Idempotent per connection.
func (m *ClientManager) Resolve(conn transport.Conn) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	if client, ok := m.clients[conn]; ok {
		return client
	}
	if client, ok := m.pending[conn]; ok {
		return client
	}
	client := NewClient(conn, time.Now())
	m.pending[conn] = client
	return client
}

// Register promotes an authenticated session into the client registry.
// Returns false if the session is not authenticated or already registered.
func (m *ClientManager) Register(client *Client) bool {
	if !client.Authenticated() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[client.Conn()]; ok {
		return false
	}
	delete(m.pending, client.Conn())
	m.clients[client.Conn()] = client
	return true
}

// Unregister drops a session entirely, pending or registered.
// Returns false if the connection was unknown.
func (m *ClientManager) Unregister(client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, wasPending := m.pending[client.Conn()]
	_, wasRegistered := m.clients[client.Conn()]
	delete(m.pending, client.Conn())
	delete(m.clients, client.Conn())
	return wasPending || wasRegistered
}

// Get looks up a registered (authenticated) session by connection.
func (m *ClientManager) Get(conn transport.Conn) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[conn]
	return client, ok
}

// Clients returns a snapshot of registered sessions.
func (m *ClientManager) Clients() []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	clients := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	return clients
}
