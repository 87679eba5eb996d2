package command

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
	"github.com/mkarpis/hivechat-server/internal/transport"
)

// Processor is the dispatch entry point, invoked once per inbound frame.
// One bad message never tears down the connection or the server: every
// failure is answered (or logged) and contained to that message.
type Processor struct {
	registry *Registry
	clients  *chat.ClientManager
	log      *zerolog.Logger
}

func NewProcessor(registry *Registry, clients *chat.ClientManager, logger *zerolog.Logger) *Processor {
	return &Processor{registry: registry, clients: clients, log: logger}
}

// Process decodes one frame, resolves the session for the connection and
// runs the matching command.
func (p *Processor) Process(ctx context.Context, conn transport.Conn, payload []byte) {
	client := p.clients.Resolve(conn)

	var req proto.Request
	if err := json.Unmarshal(payload, &req); err != nil {
		p.log.Debug().Err(err).Str("remote", conn.RemoteAddr()).Msg("malformed request envelope")
		if sendErr := client.SendResponse(ctx, proto.StatusBadRequest, 0, "", nil); sendErr != nil {
			p.log.Debug().Err(sendErr).Msg("failed to answer malformed request")
		}
		return
	}

	cmd, ok := p.registry.Lookup(req.Type)
	if !ok {
		p.log.Debug().Int("type", int(req.Type)).Msg("unregistered request type")
		if err := respond(ctx, client, &req, proto.StatusError, nil); err != nil {
			p.log.Debug().Err(err).Msg("failed to answer unregistered request")
		}
		return
	}

	if err := cmd.Execute(ctx, client, &req); err != nil {
		if errors.Is(err, ErrNotImplemented) {
			p.log.Debug().Int("type", int(req.Type)).Msg("command not implemented")
		} else {
			p.log.Error().Err(err).Int("type", int(req.Type)).Str("client_id", client.ID()).Msg("command failed")
		}
		if sendErr := respond(ctx, client, &req, proto.StatusError, nil); sendErr != nil {
			p.log.Debug().Err(sendErr).Msg("failed to answer failed command")
		}
	}
}

// Disconnect performs the logout-equivalent cleanup for a connection that
// went away without a logout request.
func (p *Processor) Disconnect(ctx context.Context, conn transport.Conn, communities *chat.CommunityManager) {
	client, ok := p.clients.Get(conn)
	if !ok {
		client = p.clients.Resolve(conn)
	}
	detachClient(client, communities)
	p.clients.Unregister(client)
	p.log.Debug().Str("client_id", client.ID()).Str("remote", conn.RemoteAddr()).Msg("session cleaned up")
}

// detachClient removes a session from every community (and, through the
// cascade, every channel) it has joined.
func detachClient(client *chat.Client, communities *chat.CommunityManager) {
	for _, id := range client.Communities() {
		if co, ok := communities.Get(id); ok {
			co.RemoveMember(client)
		}
		client.RemoveCommunity(id)
	}
}
