package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mkarpis/hivechat-server/internal/proto"
	"github.com/mkarpis/hivechat-server/internal/transport"
)

// Client is one connected chat participant. It is created unauthenticated on
// the first message from a connection and promoted by the login command.
// All state behind the mutex may be touched from many in-flight messages.
type Client struct {
	conn    transport.Conn
	created time.Time

	mu            sync.RWMutex
	id            string
	authenticated bool
	username      string
	displayName   string
	token         string
	// Joined channels as channel id -> owning community id. Holding ids
	// instead of live pointers keeps the ownership with the registries.
	channels    map[string]string
	communities map[string]struct{}
}

// NewClient constructs an unauthenticated session bound to a connection.
func NewClient(conn transport.Conn, created time.Time) *Client {
	return &Client{
		conn:        conn,
		created:     created,
		channels:    make(map[string]string),
		communities: make(map[string]struct{}),
	}
}

// Conn returns the underlying connection handle.
func (c *Client) Conn() transport.Conn { return c.conn }

// Created returns the session creation time.
func (c *Client) Created() time.Time { return c.created }

// ID is empty until the session authenticates.
func (c *Client) ID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Authenticate promotes the session with the identity returned by the
// authenticator backend.
func (c *Client) Authenticate(id, username, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
	c.username = username
	c.token = token
	c.authenticated = true
}

// Deauthenticate clears the session identity.
func (c *Client) Deauthenticate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = ""
	c.username = ""
	c.token = ""
	c.authenticated = false
}

// DisplayName falls back to the username, then the id, when unset.
func (c *Client) DisplayName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.displayName != "" {
		return c.displayName
	}
	if c.username != "" {
		return c.username
	}
	return c.id
}

// UpdateDisplayName replaces the display name.
// TODO: validate illegal characters once the rules are decided.
func (c *Client) UpdateDisplayName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayName = name
}

// AddChannel records a joined channel with its owning community.
// Returns false if already joined.
func (c *Client) AddChannel(channelID, communityID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.channels[channelID]; ok {
		return false
	}
	c.channels[channelID] = communityID
	return true
}

// RemoveChannel forgets a joined channel. Returns false if not joined.
func (c *Client) RemoveChannel(channelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.channels[channelID]; !ok {
		return false
	}
	delete(c.channels, channelID)
	return true
}

// ChannelCommunity resolves which community owns a joined channel.
func (c *Client) ChannelCommunity(channelID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	communityID, ok := c.channels[channelID]
	return communityID, ok
}

// Channels returns the joined channel ids.
func (c *Client) Channels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.channels))
	for id := range c.channels {
		ids = append(ids, id)
	}
	return ids
}

func (c *Client) AddCommunity(communityID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.communities[communityID]; ok {
		return false
	}
	c.communities[communityID] = struct{}{}
	return true
}

func (c *Client) RemoveCommunity(communityID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.communities[communityID]; !ok {
		return false
	}
	delete(c.communities, communityID)
	return true
}

func (c *Client) HasCommunity(communityID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.communities[communityID]
	return ok
}

// Communities returns the joined community ids.
func (c *Client) Communities() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.communities))
	for id := range c.communities {
		ids = append(ids, id)
	}
	return ids
}

// SendResponse writes one response envelope to the client's connection.
func (c *Client) SendResponse(ctx context.Context, status proto.Status, reqType proto.RequestType, nonce string, data any) error {
	payload, err := json.Marshal(proto.Response{
		Status: status,
		Type:   reqType,
		Nonce:  nonce,
		Data:   data,
	})
	if err != nil {
		return err
	}
	return c.conn.Send(ctx, payload)
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// AsUser renders the session as its public user record, including the
// communities it has joined.
func (c *Client) AsUser(communities *CommunityManager) proto.User {
	user := proto.User{
		ID:          c.ID(),
		DisplayName: c.DisplayName(),
		Created:     c.created.Unix(),
	}
	for _, id := range c.Communities() {
		community, ok := communities.Get(id)
		if !ok {
			continue
		}
		user.Communities = append(user.Communities, community.AsProto())
	}
	return user
}
