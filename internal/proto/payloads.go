package proto

// KickScope selects which member set a kick operates on.
type KickScope int

const (
	ScopeChannel KickScope = iota + 1
	ScopeCommunity
)

// LoginData carries either password or token credentials.
type LoginData struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// LoginAck is returned on successful authentication.
type LoginAck struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// LogoutAck acknowledges a logout before the connection closes.
type LogoutAck struct {
	UserID string `json:"user_id"`
}

type CreateCommunityData struct {
	Name string `json:"name"`
}

type CommunityAck struct {
	CommunityID string `json:"community_id"`
	Name        string `json:"name,omitempty"`
}

type DeleteCommunityData struct {
	CommunityID string `json:"community_id"`
}

type JoinCommunityData struct {
	CommunityID string `json:"community_id"`
}

type LeaveCommunityData struct {
	CommunityID string `json:"community_id"`
}

// CommunityNotice is broadcast to community members on join/leave/delete.
type CommunityNotice struct {
	CommunityID string `json:"community_id"`
	UserID      string `json:"user_id,omitempty"`
}

type CreateChannelData struct {
	CommunityID string `json:"community_id"`
	Name        string `json:"name"`
}

type ChannelAck struct {
	ChannelID string `json:"channel_id"`
	Name      string `json:"name,omitempty"`
}

type DeleteChannelData struct {
	ChannelID string `json:"channel_id"`
}

type JoinChannelData struct {
	ChannelID string `json:"channel_id"`
}

type LeaveChannelData struct {
	ChannelID string `json:"channel_id"`
}

type KickUserData struct {
	Scope       KickScope `json:"scope"`
	UserID      string    `json:"user_id"`
	ChannelID   string    `json:"channel_id,omitempty"`
	CommunityID string    `json:"community_id,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

// KickNotice is broadcast to the remaining members of the kicked scope.
type KickNotice struct {
	Scope       KickScope `json:"scope"`
	ActorID     string    `json:"actor_id"`
	UserID      string    `json:"user_id"`
	ChannelID   string    `json:"channel_id,omitempty"`
	CommunityID string    `json:"community_id,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}

type ChatMessageData struct {
	ChannelID string `json:"channel_id"`
	Text      string `json:"text"`
}

// ChatMessageEvent is broadcast to every channel member, sender included.
type ChatMessageEvent struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	AuthorID  string `json:"author_id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"ts"`
}

type UserInfoData struct {
	UserID string `json:"user_id,omitempty"`
}

type UserInfoAck struct {
	UserID string `json:"user_id"`
	User   User   `json:"user"`
}

type UpdateDisplayNameData struct {
	DisplayName string `json:"display_name"`
}

type UpdateDisplayNameAck struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type ChannelInfoData struct {
	ChannelID string `json:"channel_id"`
}

type ChannelInfoAck struct {
	ChannelID string `json:"channel_id"`
	Name      string `json:"name"`
	Created   int64  `json:"created"`
	Users     []User `json:"users"`
}

// User is the public record of a chat participant.
type User struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Created     int64       `json:"created"`
	Communities []Community `json:"communities,omitempty"`
}

// Community is the public record of a community and its channels.
type Community struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Channels []Channel `json:"channels,omitempty"`
}

// Channel is the public record of a channel.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
