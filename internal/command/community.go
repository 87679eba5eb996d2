package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// defaultChannelName is the channel every new community starts with.
const defaultChannelName = "General"

// CreateCommunity allocates a community with the caller as sole member and
// a default channel.
type CreateCommunity struct {
	deps Deps
}

func (c *CreateCommunity) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.CreateCommunityData
	if err := json.Unmarshal(req.Data, &data); err != nil || data.Name == "" {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	community := chat.NewCommunity(uuid.NewString(), data.Name)
	channel := chat.NewChannel(uuid.NewString(), defaultChannelName, community.ID(), time.Now())

	community.Channels().Add(channel)
	community.AddMember(client)
	client.AddCommunity(community.ID())
	channel.AddMember(client)
	client.AddChannel(channel.ID(), community.ID())

	if !c.deps.Communities.Add(community) {
		return respond(ctx, client, req, proto.StatusError, nil)
	}

	c.deps.Log.Info().Str("community_id", community.ID()).Str("name", data.Name).Str("client_id", client.ID()).Msg("community created")
	// No broadcast: the creator is the only member.
	return respond(ctx, client, req, proto.StatusCreated, proto.CommunityAck{
		CommunityID: community.ID(),
		Name:        community.Name(),
	})
}

// DeleteCommunity removes a community and notifies everyone who was a
// member before the removal.
type DeleteCommunity struct {
	deps Deps
}

func (c *DeleteCommunity) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.DeleteCommunityData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	community, ok := c.deps.Communities.Get(data.CommunityID)
	if !ok {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	// Membership is read before removal so the notice reaches everybody.
	members := community.Members()

	c.deps.Communities.Remove(community.ID())
	for _, member := range members {
		community.RemoveMember(member)
		member.RemoveCommunity(community.ID())
	}

	c.deps.Log.Info().Str("community_id", community.ID()).Str("client_id", client.ID()).Msg("community deleted")
	return chat.BroadcastTo(ctx, members, proto.Response{
		Status: proto.StatusSuccess,
		Type:   proto.RequestDeleteCommunity,
		Data:   proto.CommunityNotice{CommunityID: community.ID()},
	})
}

// JoinCommunity adds the caller to a community's member set and records the
// membership on the session. Both sides of the edge are kept consistent: a
// partial failure is rolled back and reported.
type JoinCommunity struct {
	deps Deps
}

func (c *JoinCommunity) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.JoinCommunityData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	community, ok := c.deps.Communities.Get(data.CommunityID)
	if !ok {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	if !community.AddMember(client) {
		return respond(ctx, client, req, proto.StatusForbidden, nil)
	}
	if !client.AddCommunity(community.ID()) {
		community.RemoveMember(client)
		return respond(ctx, client, req, proto.StatusError, nil)
	}

	if err := respond(ctx, client, req, proto.StatusSuccess, proto.CommunityAck{
		CommunityID: community.ID(),
		Name:        community.Name(),
	}); err != nil {
		c.deps.Log.Debug().Err(err).Str("client_id", client.ID()).Msg("join ack not delivered")
	}

	// Post-mutation membership, so the notice includes the joiner.
	return community.Broadcast(ctx, proto.Response{
		Status: proto.StatusSuccess,
		Type:   proto.RequestJoinCommunity,
		Data:   proto.CommunityNotice{CommunityID: community.ID(), UserID: client.ID()},
	})
}

// LeaveCommunity removes the caller from a community, cascading through
// its channels, and notifies the pre-mutation membership.
type LeaveCommunity struct {
	deps Deps
}

func (c *LeaveCommunity) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.LeaveCommunityData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	community, ok := c.deps.Communities.Get(data.CommunityID)
	if !ok {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	// Snapshot before the mutation so the leaver still gets the notice.
	members := community.Members()

	if !community.RemoveMember(client) {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}
	client.RemoveCommunity(community.ID())

	if err := respond(ctx, client, req, proto.StatusSuccess, proto.CommunityAck{
		CommunityID: community.ID(),
	}); err != nil {
		c.deps.Log.Debug().Err(err).Str("client_id", client.ID()).Msg("leave ack not delivered")
	}

	return chat.BroadcastTo(ctx, members, proto.Response{
		Status: proto.StatusSuccess,
		Type:   proto.RequestLeaveCommunity,
		Data:   proto.CommunityNotice{CommunityID: community.ID(), UserID: client.ID()},
	})
}
