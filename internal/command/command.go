// Package command implements the request dispatch pipeline: a registry of
// handlers keyed by request type, an authorization decorator, and the
// message processor that turns raw frames into command executions.
package command

import (
	"context"
	"errors"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// ErrNotImplemented is returned by commands that are declared in the
// protocol but not yet built. The processor answers these with a generic
// error status instead of crashing the loop.
var ErrNotImplemented = errors.New("command not implemented")

// Command handles one request type. Implementations are stateless beyond
// injected registry references and are responsible for sending their own
// responses; returned errors are mapped to a generic error response by the
// processor.
type Command interface {
	Execute(ctx context.Context, client *chat.Client, req *proto.Request) error
}

// respond is a small helper so command bodies read uniformly.
func respond(ctx context.Context, client *chat.Client, req *proto.Request, status proto.Status, data any) error {
	return client.SendResponse(ctx, status, req.Type, req.Nonce, data)
}
