package chat

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeConn records sent payloads and can be told to fail sends.
type fakeConn struct {
	name     string
	failSend bool

	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func newFakeConn(name string) *fakeConn {
	return &fakeConn{name: name}
}

func (c *fakeConn) Send(_ context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend {
		return errors.New("send failed")
	}
	c.sent = append(c.sent, append([]byte(nil), payload...))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) RemoteAddr() string { return c.name }

func (c *fakeConn) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// newAuthedClient builds an authenticated client over a fake connection.
func newAuthedClient(id, name string) (*Client, *fakeConn) {
	conn := newFakeConn(name)
	client := NewClient(conn, time.Now())
	client.Authenticate(id, name, "token-"+id)
	return client, conn
}
