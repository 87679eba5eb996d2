package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// CreateChannel adds a channel to a community the caller already belongs
// to, with the caller as first member.
type CreateChannel struct {
	deps Deps
}

func (c *CreateChannel) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.CreateChannelData
	if err := json.Unmarshal(req.Data, &data); err != nil || data.Name == "" {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	// The community is resolved through the caller's own joined set, not a
	// registry scan: non-members cannot create channels.
	if !client.HasCommunity(data.CommunityID) {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}
	community, ok := c.deps.Communities.Get(data.CommunityID)
	if !ok || !community.HasMember(client.ID()) {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	channel := chat.NewChannel(uuid.NewString(), data.Name, community.ID(), time.Now())
	if !community.Channels().Add(channel) {
		// Id collision or channel cap reached.
		return respond(ctx, client, req, proto.StatusError, nil)
	}
	channel.AddMember(client)
	client.AddChannel(channel.ID(), community.ID())

	if err := respond(ctx, client, req, proto.StatusCreated, proto.ChannelAck{
		ChannelID: channel.ID(),
		Name:      channel.Name(),
	}); err != nil {
		c.deps.Log.Debug().Err(err).Str("client_id", client.ID()).Msg("create-channel ack not delivered")
	}

	c.deps.Log.Info().Str("channel_id", channel.ID()).Str("community_id", community.ID()).Msg("channel created")
	return community.Broadcast(ctx, proto.Response{
		Status: proto.StatusCreated,
		Type:   proto.RequestCreateChannel,
		Data:   proto.ChannelAck{ChannelID: channel.ID(), Name: channel.Name()},
	})
}

// DeleteChannel removes a channel from its community and detaches it from
// every surviving member's joined-channel set.
type DeleteChannel struct {
	deps Deps
}

func (c *DeleteChannel) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.DeleteChannelData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	channel, community, ok := c.deps.Communities.FindChannel(data.ChannelID)
	if !ok {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	community.Channels().Remove(channel.ID())
	for _, member := range channel.Members() {
		channel.RemoveMember(member.ID())
		member.RemoveChannel(channel.ID())
	}

	if err := respond(ctx, client, req, proto.StatusSuccess, proto.ChannelAck{
		ChannelID: channel.ID(),
	}); err != nil {
		c.deps.Log.Debug().Err(err).Str("client_id", client.ID()).Msg("delete-channel ack not delivered")
	}

	c.deps.Log.Info().Str("channel_id", channel.ID()).Str("community_id", community.ID()).Msg("channel deleted")
	return community.Broadcast(ctx, proto.Response{
		Status: proto.StatusSuccess,
		Type:   proto.RequestDeleteChannel,
		Data:   proto.ChannelAck{ChannelID: channel.ID()},
	})
}

// JoinChannel subscribes the caller to a channel. Community membership is
// checked at join time only.
type JoinChannel struct {
	deps Deps
}

func (c *JoinChannel) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.JoinChannelData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	channel, community, ok := c.deps.Communities.FindChannel(data.ChannelID)
	if !ok {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	if !community.HasMember(client.ID()) {
		return respond(ctx, client, req, proto.StatusForbidden, nil)
	}

	if !channel.AddMember(client) {
		return respond(ctx, client, req, proto.StatusError, nil)
	}
	if !client.AddChannel(channel.ID(), community.ID()) {
		channel.RemoveMember(client.ID())
		return respond(ctx, client, req, proto.StatusError, nil)
	}

	return respond(ctx, client, req, proto.StatusSuccess, proto.ChannelAck{
		ChannelID: channel.ID(),
		Name:      channel.Name(),
	})
}

// LeaveChannel unsubscribes the caller from a channel resolved through its
// own joined-channel set.
type LeaveChannel struct {
	deps Deps
}

func (c *LeaveChannel) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.LeaveChannelData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	communityID, ok := client.ChannelCommunity(data.ChannelID)
	if !ok {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	channel, ok := c.deps.Communities.GetChannel(communityID, data.ChannelID)
	if !ok {
		// The channel is gone; drop the stale reference.
		client.RemoveChannel(data.ChannelID)
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	removed := channel.RemoveMember(client.ID())
	detached := client.RemoveChannel(channel.ID())
	if !removed || !detached {
		return respond(ctx, client, req, proto.StatusError, nil)
	}

	return respond(ctx, client, req, proto.StatusSuccess, proto.ChannelAck{
		ChannelID: channel.ID(),
	})
}
