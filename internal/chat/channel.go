package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/mkarpis/hivechat-server/internal/proto"
)

// Channel is a named sub-group of a community where chat messages are
// broadcast. Members are keyed by session id; the parent community is held
// as an id, not a pointer, so the community registry stays the sole owner.
type Channel struct {
	id          string
	communityID string
	created     time.Time

	mu      sync.RWMutex
	name    string
	members map[string]*Client
}

// NewChannel constructs an empty channel owned by the given community.
func NewChannel(id, name, communityID string, created time.Time) *Channel {
	return &Channel{
		id:          id,
		communityID: communityID,
		created:     created,
		name:        name,
		members:     make(map[string]*Client),
	}
}

func (ch *Channel) ID() string          { return ch.id }
func (ch *Channel) CommunityID() string { return ch.communityID }
func (ch *Channel) Created() time.Time  { return ch.created }

func (ch *Channel) Name() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.name
}

func (ch *Channel) SetName(name string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.name = name
}

// AddMember inserts a client keyed by its session id.
// Returns false if already a member.
func (ch *Channel) AddMember(client *Client) bool {
	id := client.ID()
	if id == "" {
		return false
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if _, ok := ch.members[id]; ok {
		return false
	}
	ch.members[id] = client
	return true
}

// RemoveMember deletes a member by session id. Returns false if absent.
func (ch *Channel) RemoveMember(id string) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if _, ok := ch.members[id]; !ok {
		return false
	}
	delete(ch.members, id)
	return true
}

// Member looks up a member by session id.
func (ch *Channel) Member(id string) (*Client, bool) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	client, ok := ch.members[id]
	return client, ok
}

func (ch *Channel) HasMember(id string) bool {
	_, ok := ch.Member(id)
	return ok
}

// Members returns a snapshot of the current members.
func (ch *Channel) Members() []*Client {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	members := make([]*Client, 0, len(ch.members))
	for _, client := range ch.members {
		members = append(members, client)
	}
	return members
}

func (ch *Channel) MemberCount() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.members)
}

// Broadcast sends one response to every current member. Each send is
// attempted even when another fails; the joined error reports the failures.
func (ch *Channel) Broadcast(ctx context.Context, resp proto.Response) error {
	return BroadcastTo(ctx, ch.Members(), resp)
}

// AsProto renders the channel's public record.
func (ch *Channel) AsProto() proto.Channel {
	return proto.Channel{ID: ch.id, Name: ch.Name()}
}

// AsInfo renders the channel with its member list.
func (ch *Channel) AsInfo(communities *CommunityManager) proto.ChannelInfoAck {
	info := proto.ChannelInfoAck{
		ChannelID: ch.id,
		Name:      ch.Name(),
		Created:   ch.created.Unix(),
	}
	for _, member := range ch.Members() {
		info.Users = append(info.Users, member.AsUser(communities))
	}
	return info
}

// BroadcastTo fans a response out to every recipient concurrently and
// waits for all sends to be attempted. A slow or broken recipient never
// blocks delivery to the rest.
func BroadcastTo(ctx context.Context, recipients []*Client, resp proto.Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	errs := make([]error, len(recipients))
	var wg sync.WaitGroup
	for i, client := range recipients {
		wg.Add(1)
		go func(i int, client *Client) {
			defer wg.Done()
			errs[i] = client.Conn().Send(ctx, payload)
		}(i, client)
	}
	wg.Wait()

	return errors.Join(errs...)
}
