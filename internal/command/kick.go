package command

import (
	"context"
	"encoding/json"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// KickUser removes a target session from a channel or community member set
// and notifies the remaining members of that scope.
type KickUser struct {
	deps Deps
}

func (c *KickUser) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.KickUserData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	switch data.Scope {
	case proto.ScopeChannel:
		return c.kickFromChannel(ctx, client, req, data)
	case proto.ScopeCommunity:
		return c.kickFromCommunity(ctx, client, req, data)
	default:
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}
}

func (c *KickUser) kickFromChannel(ctx context.Context, actor *chat.Client, req *proto.Request, data proto.KickUserData) error {
	channel, _, ok := c.deps.Communities.FindChannel(data.ChannelID)
	if !ok {
		return respond(ctx, actor, req, proto.StatusNotFound, nil)
	}

	target, ok := channel.Member(data.UserID)
	if !ok {
		return respond(ctx, actor, req, proto.StatusNotFound, nil)
	}

	if !channel.RemoveMember(target.ID()) {
		return respond(ctx, actor, req, proto.StatusNotFound, nil)
	}
	target.RemoveChannel(channel.ID())

	c.deps.Log.Info().Str("channel_id", channel.ID()).Str("target", target.ID()).Str("actor", actor.ID()).Msg("user kicked from channel")
	return channel.Broadcast(ctx, proto.Response{
		Status: proto.StatusSuccess,
		Type:   proto.RequestKickUser,
		Data: proto.KickNotice{
			Scope:     proto.ScopeChannel,
			ActorID:   actor.ID(),
			UserID:    target.ID(),
			ChannelID: channel.ID(),
			Reason:    data.Reason,
		},
	})
}

func (c *KickUser) kickFromCommunity(ctx context.Context, actor *chat.Client, req *proto.Request, data proto.KickUserData) error {
	community, ok := c.deps.Communities.Get(data.CommunityID)
	if !ok {
		return respond(ctx, actor, req, proto.StatusNotFound, nil)
	}

	target, ok := community.Member(data.UserID)
	if !ok {
		return respond(ctx, actor, req, proto.StatusNotFound, nil)
	}

	if !community.RemoveMember(target) {
		return respond(ctx, actor, req, proto.StatusNotFound, nil)
	}
	target.RemoveCommunity(community.ID())

	c.deps.Log.Info().Str("community_id", community.ID()).Str("target", target.ID()).Str("actor", actor.ID()).Msg("user kicked from community")
	return community.Broadcast(ctx, proto.Response{
		Status: proto.StatusSuccess,
		Type:   proto.RequestKickUser,
		Data: proto.KickNotice{
			Scope:       proto.ScopeCommunity,
			ActorID:     actor.ID(),
			UserID:      target.ID(),
			CommunityID: community.ID(),
			Reason:      data.Reason,
		},
	})
}
