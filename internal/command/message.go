package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// ChatMessage broadcasts a chat message to every member of the target
// channel, sender included. The channel is resolved through the sender's
// own joined-channel set, never a global scan.
type ChatMessage struct {
	deps Deps
}

func (c *ChatMessage) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	var data proto.ChatMessageData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	communityID, ok := client.ChannelCommunity(data.ChannelID)
	if !ok {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	channel, ok := c.deps.Communities.GetChannel(communityID, data.ChannelID)
	if !ok || !channel.HasMember(client.ID()) {
		return respond(ctx, client, req, proto.StatusNotFound, nil)
	}

	return channel.Broadcast(ctx, proto.Response{
		Status: proto.StatusSuccess,
		Type:   proto.RequestChatMessage,
		Data: proto.ChatMessageEvent{
			ChannelID: channel.ID(),
			MessageID: uuid.NewString(),
			AuthorID:  client.ID(),
			Text:      data.Text,
			Timestamp: time.Now().Unix(),
		},
	})
}
