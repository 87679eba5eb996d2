package chat

import (
	"context"
	"sync"

	"github.com/mkarpis/hivechat-server/internal/proto"
)

// Community is a top-level group owning a member set and a channel
// collection. Every channel in the collection names this community as its
// parent.
type Community struct {
	id       string
	channels *ChannelManager

	mu      sync.RWMutex
	name    string
	members map[string]*Client
}

// NewCommunity constructs an empty community with its own channel registry.
func NewCommunity(id, name string) *Community {
	return &Community{
		id:       id,
		channels: NewChannelManager(),
		name:     name,
		members:  make(map[string]*Client),
	}
}

func (co *Community) ID() string { return co.id }

// Channels returns the community's channel registry.
func (co *Community) Channels() *ChannelManager { return co.channels }

func (co *Community) Name() string {
	co.mu.RLock()
	defer co.mu.RUnlock()
	return co.name
}

func (co *Community) SetName(name string) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.name = name
}

// AddMember inserts a client keyed by session id.
// Returns false if already a member.
func (co *Community) AddMember(client *Client) bool {
	id := client.ID()
	if id == "" {
		return false
	}
	co.mu.Lock()
	defer co.mu.Unlock()
	if _, ok := co.members[id]; ok {
		return false
	}
	co.members[id] = client
	return true
}

// RemoveMember deletes a member and evicts it from every channel of the
// community, detaching the client's own joined-channel entries as it goes.
// Returns false if the client was not a member.
func (co *Community) RemoveMember(client *Client) bool {
	id := client.ID()
	co.mu.Lock()
	if _, ok := co.members[id]; !ok {
		co.mu.Unlock()
		return false
	}
	delete(co.members, id)
	co.mu.Unlock()

	for _, ch := range co.channels.Channels() {
		if ch.RemoveMember(id) {
			client.RemoveChannel(ch.ID())
		}
	}
	return true
}

// Member looks up a member by session id.
func (co *Community) Member(id string) (*Client, bool) {
	co.mu.RLock()
	defer co.mu.RUnlock()
	client, ok := co.members[id]
	return client, ok
}

func (co *Community) HasMember(id string) bool {
	_, ok := co.Member(id)
	return ok
}

// Members returns a snapshot of the current members.
func (co *Community) Members() []*Client {
	co.mu.RLock()
	defer co.mu.RUnlock()
	members := make([]*Client, 0, len(co.members))
	for _, client := range co.members {
		members = append(members, client)
	}
	return members
}

func (co *Community) MemberCount() int {
	co.mu.RLock()
	defer co.mu.RUnlock()
	return len(co.members)
}

// Broadcast sends one response to every current member, attempting every
// send even when some fail.
func (co *Community) Broadcast(ctx context.Context, resp proto.Response) error {
	return BroadcastTo(ctx, co.Members(), resp)
}

// AsProto renders the community's public record with its channels.
func (co *Community) AsProto() proto.Community {
	community := proto.Community{ID: co.id, Name: co.Name()}
	for _, ch := range co.channels.Channels() {
		community.Channels = append(community.Channels, ch.AsProto())
	}
	return community
}
