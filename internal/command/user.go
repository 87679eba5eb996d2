package command

import (
	"context"
	"encoding/json"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// UserInfo answers the caller's own record, or the record of another user
// that shares at least one community with the caller.
type UserInfo struct {
	deps Deps
}

func (c *UserInfo) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.UserInfoData
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, &data); err != nil {
			return respond(ctx, client, req, proto.StatusBadRequest, nil)
		}
	}

	if data.UserID == "" || data.UserID == client.ID() {
		return respond(ctx, client, req, proto.StatusSuccess, proto.UserInfoAck{
			UserID: client.ID(),
			User:   client.AsUser(c.deps.Communities),
		})
	}

	// A session can only look up users it shares a community with.
	for _, communityID := range client.Communities() {
		community, ok := c.deps.Communities.Get(communityID)
		if !ok {
			continue
		}
		if member, ok := community.Member(data.UserID); ok {
			return respond(ctx, client, req, proto.StatusSuccess, proto.UserInfoAck{
				UserID: member.ID(),
				User:   member.AsUser(c.deps.Communities),
			})
		}
	}

	return respond(ctx, client, req, proto.StatusNotFound, nil)
}

// UpdateDisplayName replaces the caller's display name.
type UpdateDisplayName struct {
	deps Deps
}

func (c *UpdateDisplayName) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.UpdateDisplayNameData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	client.UpdateDisplayName(data.DisplayName)

	return respond(ctx, client, req, proto.StatusSuccess, proto.UpdateDisplayNameAck{
		UserID:      client.ID(),
		DisplayName: client.DisplayName(),
	})
}

// ChannelInfo answers a channel's record with its member list.
type ChannelInfo struct {
	deps Deps
}

func (c *ChannelInfo) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.ChannelInfoData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	channel, _, ok := c.deps.Communities.FindChannel(data.ChannelID)
	if !ok {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	return respond(ctx, client, req, proto.StatusSuccess, channel.AsInfo(c.deps.Communities))
}
