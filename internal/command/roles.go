package command

import (
	"context"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// Role management and bans are declared in the protocol but not built yet.
// The processor turns ErrNotImplemented into a graceful error response.

type AddRole struct{}

func (*AddRole) Execute(context.Context, *chat.Client, *proto.Request) error {
	return ErrNotImplemented
}

type RemoveRole struct{}

func (*RemoveRole) Execute(context.Context, *chat.Client, *proto.Request) error {
	return ErrNotImplemented
}

type BanUser struct{}

func (*BanUser) Execute(context.Context, *chat.Client, *proto.Request) error {
	return ErrNotImplemented
}
