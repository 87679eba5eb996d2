package command

import (
	"context"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// Authenticated wraps a command with the authorization gate: an
// unauthenticated caller gets an unauthorized response correlated with the
// request, and the wrapped command never runs. Authenticated callers are
// delegated verbatim.
func Authenticated(cmd Command) Command {
	return &authenticated{next: cmd}
}

type authenticated struct {
	next Command
}

func (a *authenticated) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	if !client.Authenticated() {
		return respond(ctx, client, req, proto.StatusUnauthorized, nil)
	}
	return a.next.Execute(ctx, client, req)
}
