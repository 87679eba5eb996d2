package command

import (
	"github.com/rs/zerolog"

	"github.com/mkarpis/hivechat-server/internal/auth"
	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/proto"
)

// Registry maps request types to commands. Register is startup-only; after
// initialization the map is read concurrently without locking.
type Registry struct {
	commands map[proto.RequestType]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[proto.RequestType]Command)}
}

// Register binds a command to a request type. Registering the same type
// twice overwrites the earlier binding; last write wins.
func (r *Registry) Register(reqType proto.RequestType, cmd Command) {
	r.commands[reqType] = cmd
}

// Lookup returns the command bound to a request type.
func (r *Registry) Lookup(reqType proto.RequestType) (Command, bool) {
	cmd, ok := r.commands[reqType]
	return cmd, ok
}

// Deps carries the injected collaborators every command draws from.
type Deps struct {
	Clients       *chat.ClientManager
	Communities   *chat.CommunityManager
	Authenticator auth.Authenticator
	Log           *zerolog.Logger
}

// RegisterDefaults wires the full command set. Whether a command sits
// behind the authorization decorator is declared here, not inside the
// command bodies.
func RegisterDefaults(r *Registry, deps Deps) {
	entries := []struct {
		reqType  proto.RequestType
		cmd      Command
		needAuth bool
	}{
		{proto.RequestLogin, &Login{deps: deps}, false},
		{proto.RequestLogout, &Logout{deps: deps}, true},

		{proto.RequestCreateCommunity, &CreateCommunity{deps: deps}, true},
		{proto.RequestDeleteCommunity, &DeleteCommunity{deps: deps}, true},
		{proto.RequestJoinCommunity, &JoinCommunity{deps: deps}, true},
		{proto.RequestLeaveCommunity, &LeaveCommunity{deps: deps}, true},

		{proto.RequestCreateChannel, &CreateChannel{deps: deps}, true},
		{proto.RequestDeleteChannel, &DeleteChannel{deps: deps}, true},
		{proto.RequestJoinChannel, &JoinChannel{deps: deps}, true},
		{proto.RequestLeaveChannel, &LeaveChannel{deps: deps}, true},

		{proto.RequestKickUser, &KickUser{deps: deps}, true},
		{proto.RequestChatMessage, &ChatMessage{deps: deps}, true},
		{proto.RequestUserInfo, &UserInfo{deps: deps}, true},
		{proto.RequestUpdateDisplayName, &UpdateDisplayName{deps: deps}, true},
		{proto.RequestChannelInfo, &ChannelInfo{deps: deps}, true},

		{proto.RequestAddRole, &AddRole{}, true},
		{proto.RequestRemoveRole, &RemoveRole{}, true},
		{proto.RequestBanUser, &BanUser{}, true},
	}

	for _, e := range entries {
		cmd := e.cmd
		if e.needAuth {
			cmd = Authenticated(cmd)
		}
		r.Register(e.reqType, cmd)
	}
}
