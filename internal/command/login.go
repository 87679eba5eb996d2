package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mkarpis/hivechat-server/internal/auth"
	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// Login authenticates a session by password or token and registers it in
// the client manager.
type Login struct {
	deps Deps
}

func (c *Login) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	if client.Authenticated() {
		// Idempotence guard: a second login on a live session is an error.
		return respond(ctx, client, req, proto.StatusError, nil)
	}

	var data proto.LoginData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}

	var (
		result auth.Result
		err    error
	)
	switch {
	case data.Password != "":
		result, err = c.deps.Authenticator.AuthenticatePassword(ctx, data.Username, data.Password)
	case data.Token != "":
		result, err = c.deps.Authenticator.AuthenticateToken(ctx, data.Token)
	default:
		return respond(ctx, client, req, proto.StatusBadRequest, nil)
	}
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	if !result.OK {
		return respond(ctx, client, req, proto.StatusError, nil)
	}

	client.Authenticate(result.UserID, data.Username, result.Token)
	if result.DisplayName != "" && result.DisplayName != data.Username {
		client.UpdateDisplayName(result.DisplayName)
	}
	c.deps.Clients.Register(client)

	c.deps.Log.Info().Str("client_id", result.UserID).Msg("client logged in")
	return respond(ctx, client, req, proto.StatusSuccess, proto.LoginAck{
		UserID: result.UserID,
		Token:  result.Token,
	})
}

// Logout deauthenticates a session, answers with the departing user's id
// and closes the connection. The ack is sent before the close so it is not
// dropped.
type Logout struct {
	deps Deps
}

func (c *Logout) Execute(ctx context.Context, client *chat.Client, req *proto.Request) error {
	userID := client.ID()

	if err := respond(ctx, client, req, proto.StatusSuccess, proto.LogoutAck{UserID: userID}); err != nil {
		c.deps.Log.Debug().Err(err).Str("client_id", userID).Msg("logout ack not delivered")
	}

	if err := c.deps.Authenticator.Deauthenticate(ctx, userID); err != nil {
		c.deps.Log.Warn().Err(err).Str("client_id", userID).Msg("backend deauthentication failed")
	}

	detachClient(client, c.deps.Communities)
	c.deps.Clients.Unregister(client)
	client.Deauthenticate()

	c.deps.Log.Info().Str("client_id", userID).Msg("client logged out")
	return client.Close()
}
