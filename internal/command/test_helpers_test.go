package command

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mkarpis/hivechat-server/internal/auth"
	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// fakeConn implements transport.Conn, recording every response frame.
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

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// respEnvelope mirrors proto.Response with the payload kept raw so tests
// can decode it into the expected type.
type respEnvelope struct {
	Status proto.Status      `json:"status"`
	Type   proto.RequestType `json:"type"`
	Nonce  string            `json:"nonce"`
	Data   json.RawMessage   `json:"data"`
}

func (c *fakeConn) responses(t *testing.T) []respEnvelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]respEnvelope, 0, len(c.sent))
	for _, payload := range c.sent {
		var resp respEnvelope
		if err := json.Unmarshal(payload, &resp); err != nil {
			t.Fatalf("malformed response frame %q: %v", payload, err)
		}
		out = append(out, resp)
	}
	return out
}

// lastResponse returns the most recent response on the connection.
func (c *fakeConn) lastResponse(t *testing.T) respEnvelope {
	t.Helper()
	resps := c.responses(t)
	if len(resps) == 0 {
		t.Fatal("no responses received")
	}
	return resps[len(resps)-1]
}

// findResponse returns the first response of the given type.
func (c *fakeConn) findResponse(t *testing.T, reqType proto.RequestType) (respEnvelope, bool) {
	t.Helper()
	for _, resp := range c.responses(t) {
		if resp.Type == reqType {
			return resp, true
		}
	}
	return respEnvelope{}, false
}

func decodeData(t *testing.T, resp respEnvelope, v any) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decode response data: %v", err)
	}
}

// env bundles a fully wired dispatch pipeline over the static authenticator.
type env struct {
	t           *testing.T
	processor   *Processor
	clients     *chat.ClientManager
	communities *chat.CommunityManager
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := zerolog.Nop()
	clients := chat.NewClientManager()
	communities := chat.NewCommunityManager()

	registry := NewRegistry()
	RegisterDefaults(registry, Deps{
		Clients:       clients,
		Communities:   communities,
		Authenticator: auth.NewStatic(),
		Log:           &logger,
	})

	return &env{
		t:           t,
		processor:   NewProcessor(registry, clients, &logger),
		clients:     clients,
		communities: communities,
	}
}

// send marshals one request and runs it through the processor.
func (e *env) send(conn *fakeConn, reqType proto.RequestType, nonce string, data any) {
	e.t.Helper()

	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			e.t.Fatalf("marshal request data: %v", err)
		}
		raw = encoded
	}

	payload, err := json.Marshal(proto.Request{Type: reqType, Nonce: nonce, Data: raw})
	if err != nil {
		e.t.Fatalf("marshal request: %v", err)
	}
	e.processor.Process(context.Background(), conn, payload)
}

// login authenticates a connection and returns the assigned user id.
func (e *env) login(conn *fakeConn, username string) string {
	e.t.Helper()

	e.send(conn, proto.RequestLogin, "n-login", proto.LoginData{Username: username, Password: "pw"})
	resp := conn.lastResponse(e.t)
	if resp.Status != proto.StatusSuccess {
		e.t.Fatalf("login status = %v", resp.Status)
	}
	var ack proto.LoginAck
	decodeData(e.t, resp, &ack)
	if ack.UserID == "" || ack.Token == "" {
		e.t.Fatal("login ack missing id or token")
	}
	return ack.UserID
}

// createCommunity logs the steps a client takes to own a fresh community
// and returns its id along with the default channel's id.
func (e *env) createCommunity(conn *fakeConn, name string) (communityID, generalID string) {
	e.t.Helper()

	e.send(conn, proto.RequestCreateCommunity, "n-create", proto.CreateCommunityData{Name: name})
	resp, ok := conn.findResponse(e.t, proto.RequestCreateCommunity)
	if !ok || resp.Status != proto.StatusCreated {
		e.t.Fatalf("create community failed: %+v", resp)
	}
	var ack proto.CommunityAck
	decodeData(e.t, resp, &ack)

	community, found := e.communities.Get(ack.CommunityID)
	if !found {
		e.t.Fatal("created community not in registry")
	}
	channels := community.Channels().Channels()
	if len(channels) != 1 {
		e.t.Fatalf("new community has %d channels, want 1", len(channels))
	}
	return ack.CommunityID, channels[0].ID()
}
