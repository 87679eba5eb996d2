package command

import (
	"testing"

	"github.com/mkarpis/hivechat-server/internal/proto"
)

// TestChatScenario walks the happy path end to end: one client creates a
// community, a second one joins it and its default channel, and a chat
// message reaches both of them.
func TestChatScenario(t *testing.T) {
	e := newEnv(t)

	alice := newFakeConn("alice")
	aliceID := e.login(alice, "alice")
	communityID, generalID := e.createCommunity(alice, "wu-tang")

	bob := newFakeConn("bob")
	bobID := e.login(bob, "bob")
	if aliceID == bobID {
		t.Fatal("distinct sessions share a user id")
	}

	e.send(bob, proto.RequestJoinCommunity, "n-join-co", proto.JoinCommunityData{CommunityID: communityID})
	joinResp, ok := bob.findResponse(t, proto.RequestJoinCommunity)
	if !ok || joinResp.Status != proto.StatusSuccess {
		t.Fatalf("join community failed: %+v", joinResp)
	}
	community, _ := e.communities.Get(communityID)
	if got := community.MemberCount(); got != 2 {
		t.Fatalf("community member count = %d, want 2", got)
	}

	// The join notice goes to the post-mutation membership, joiner included.
	if _, ok := alice.findResponse(t, proto.RequestJoinCommunity); !ok {
		t.Fatal("existing member did not receive the join notice")
	}

	e.send(bob, proto.RequestJoinChannel, "n-join-ch", proto.JoinChannelData{ChannelID: generalID})
	chResp, ok := bob.findResponse(t, proto.RequestJoinChannel)
	if !ok || chResp.Status != proto.StatusSuccess {
		t.Fatalf("join channel failed: %+v", chResp)
	}

	e.send(alice, proto.RequestChatMessage, "n-msg", proto.ChatMessageData{ChannelID: generalID, Text: "protect ya neck"})

	for _, conn := range []*fakeConn{alice, bob} {
		resp, ok := conn.findResponse(t, proto.RequestChatMessage)
		if !ok {
			t.Fatalf("%s did not receive the chat message", conn.name)
		}
		var event proto.ChatMessageEvent
		decodeData(t, resp, &event)
		if event.Text != "protect ya neck" {
			t.Fatalf("%s got text %q", conn.name, event.Text)
		}
		if event.AuthorID != aliceID {
			t.Fatalf("%s got author %q, want %q", conn.name, event.AuthorID, aliceID)
		}
		if event.ChannelID != generalID || event.MessageID == "" {
			t.Fatalf("%s got malformed event: %+v", conn.name, event)
		}
	}
}

func TestLoginTwiceRejected(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	e.login(conn, "alice")

	e.send(conn, proto.RequestLogin, "n-2", proto.LoginData{Username: "alice", Password: "pw"})
	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusError {
		t.Fatalf("second login status = %v, want %v", resp.Status, proto.StatusError)
	}
}

func TestLoginWithoutCredentials(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")

	e.send(conn, proto.RequestLogin, "n-1", proto.LoginData{Username: "alice"})
	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusBadRequest {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusBadRequest)
	}
}

// The ack must reach the wire before the connection closes, and the
// session must be fully detached afterwards.
func TestLogoutAckThenClose(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	userID := e.login(conn, "alice")
	communityID, _ := e.createCommunity(conn, "acme")

	e.send(conn, proto.RequestLogout, "n-out", nil)

	resp, ok := conn.findResponse(t, proto.RequestLogout)
	if !ok || resp.Status != proto.StatusSuccess {
		t.Fatalf("logout ack missing or failed: %+v", resp)
	}
	var ack proto.LogoutAck
	decodeData(t, resp, &ack)
	if ack.UserID != userID {
		t.Fatalf("ack user = %q, want %q", ack.UserID, userID)
	}
	if !conn.isClosed() {
		t.Fatal("connection not closed after logout")
	}
	if _, ok := e.clients.Get(conn); ok {
		t.Fatal("logged-out session still registered")
	}
	community, _ := e.communities.Get(communityID)
	if community.HasMember(userID) {
		t.Fatal("logged-out session still a community member")
	}
}

func TestUnauthenticatedCommandsRejected(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")

	e.send(conn, proto.RequestCreateChannel, "n-1", proto.CreateChannelData{CommunityID: "c", Name: "general"})

	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusUnauthorized {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusUnauthorized)
	}
	if len(e.communities.Communities()) != 0 {
		t.Fatal("unauthenticated request mutated state")
	}
	// The rejected session must not appear among registered clients.
	if _, ok := e.clients.Get(conn); ok {
		t.Fatal("unauthenticated session registered")
	}
}

func TestCreateCommunityHasDefaultChannel(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	userID := e.login(conn, "alice")
	communityID, generalID := e.createCommunity(conn, "acme")

	community, _ := e.communities.Get(communityID)
	if !community.HasMember(userID) {
		t.Fatal("creator is not a community member")
	}
	channel, ok := community.Channels().Get(generalID)
	if !ok {
		t.Fatal("default channel missing")
	}
	if channel.Name() != "General" {
		t.Fatalf("default channel name = %q, want General", channel.Name())
	}
	if !channel.HasMember(userID) {
		t.Fatal("creator is not a member of the default channel")
	}
	if channel.CommunityID() != communityID {
		t.Fatalf("channel parent = %q, want %q", channel.CommunityID(), communityID)
	}
}

func TestJoinCommunityNotFound(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	e.login(conn, "alice")

	e.send(conn, proto.RequestJoinCommunity, "n-1", proto.JoinCommunityData{CommunityID: "nope"})
	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusNotFound {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusNotFound)
	}
}

func TestJoinCommunityTwiceForbidden(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	e.login(conn, "alice")
	communityID, _ := e.createCommunity(conn, "acme")

	e.send(conn, proto.RequestJoinCommunity, "n-1", proto.JoinCommunityData{CommunityID: communityID})
	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusForbidden {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusForbidden)
	}
}

// The leaver is still part of the notice audience: membership is
// snapshotted before the mutation.
func TestLeaveCommunityNotifiesLeaver(t *testing.T) {
	e := newEnv(t)

	alice := newFakeConn("alice")
	e.login(alice, "alice")
	communityID, _ := e.createCommunity(alice, "acme")

	bob := newFakeConn("bob")
	bobID := e.login(bob, "bob")
	e.send(bob, proto.RequestJoinCommunity, "n-join", proto.JoinCommunityData{CommunityID: communityID})

	e.send(bob, proto.RequestLeaveCommunity, "n-leave", proto.LeaveCommunityData{CommunityID: communityID})

	var notices []respEnvelope
	for _, resp := range bob.responses(t) {
		if resp.Type == proto.RequestLeaveCommunity && resp.Nonce == "" {
			notices = append(notices, resp)
		}
	}
	if len(notices) != 1 {
		t.Fatalf("leaver got %d leave notices, want 1", len(notices))
	}
	var notice proto.CommunityNotice
	decodeData(t, notices[0], &notice)
	if notice.UserID != bobID {
		t.Fatalf("notice user = %q, want %q", notice.UserID, bobID)
	}

	community, _ := e.communities.Get(communityID)
	if community.HasMember(bobID) {
		t.Fatal("leaver still a member")
	}
}

func TestDeleteCommunityNotifiesFormerMembers(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	e.login(conn, "alice")
	communityID, generalID := e.createCommunity(conn, "acme")

	e.send(conn, proto.RequestDeleteCommunity, "n-del", proto.DeleteCommunityData{CommunityID: communityID})

	if _, ok := e.communities.Get(communityID); ok {
		t.Fatal("community still registered after delete")
	}
	if _, _, ok := e.communities.FindChannel(generalID); ok {
		t.Fatal("child channel still reachable after delete")
	}
	client, _ := e.clients.Get(conn)
	if client.HasCommunity(communityID) {
		t.Fatal("former member still references the community")
	}
	var sawNotice bool
	for _, resp := range conn.responses(t) {
		if resp.Type == proto.RequestDeleteCommunity && resp.Nonce == "" {
			sawNotice = true
		}
	}
	if !sawNotice {
		t.Fatal("former member did not receive the delete notice")
	}
}

func TestCreateChannelOutsideOwnCommunities(t *testing.T) {
	e := newEnv(t)

	alice := newFakeConn("alice")
	e.login(alice, "alice")
	communityID, _ := e.createCommunity(alice, "acme")

	// Bob never joined the community, so he cannot create channels in it.
	bob := newFakeConn("bob")
	e.login(bob, "bob")
	e.send(bob, proto.RequestCreateChannel, "n-1", proto.CreateChannelData{CommunityID: communityID, Name: "random"})

	resp := bob.lastResponse(t)
	if resp.Status != proto.StatusNotFound {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusNotFound)
	}
	community, _ := e.communities.Get(communityID)
	if community.Channels().Len() != 1 {
		t.Fatalf("channel count = %d, want 1", community.Channels().Len())
	}
}

func TestDeleteChannelNotFound(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	e.login(conn, "alice")

	e.send(conn, proto.RequestDeleteChannel, "n-1", proto.DeleteChannelData{ChannelID: "nope"})
	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusNotFound {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusNotFound)
	}
}

func TestDeleteChannelDetachesMembers(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	userID := e.login(conn, "alice")
	communityID, generalID := e.createCommunity(conn, "acme")

	e.send(conn, proto.RequestDeleteChannel, "n-del", proto.DeleteChannelData{ChannelID: generalID})

	resp, ok := conn.findResponse(t, proto.RequestDeleteChannel)
	if !ok || resp.Status != proto.StatusSuccess {
		t.Fatalf("delete channel failed: %+v", resp)
	}
	community, _ := e.communities.Get(communityID)
	if community.Channels().Len() != 0 {
		t.Fatal("channel still registered after delete")
	}
	client, _ := e.clients.Get(conn)
	for _, id := range client.Channels() {
		if id == generalID {
			t.Fatalf("session %s still references the deleted channel", userID)
		}
	}
}

func TestJoinChannelRequiresCommunityMembership(t *testing.T) {
	e := newEnv(t)

	alice := newFakeConn("alice")
	e.login(alice, "alice")
	_, generalID := e.createCommunity(alice, "acme")

	bob := newFakeConn("bob")
	e.login(bob, "bob")
	e.send(bob, proto.RequestJoinChannel, "n-1", proto.JoinChannelData{ChannelID: generalID})

	resp := bob.lastResponse(t)
	if resp.Status != proto.StatusForbidden {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusForbidden)
	}
}

func TestLeaveChannelNotJoined(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	e.login(conn, "alice")

	e.send(conn, proto.RequestLeaveChannel, "n-1", proto.LeaveChannelData{ChannelID: "nope"})
	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusNotFound {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusNotFound)
	}
}

func TestChatMessageOutsideJoinedChannels(t *testing.T) {
	e := newEnv(t)

	alice := newFakeConn("alice")
	e.login(alice, "alice")
	_, generalID := e.createCommunity(alice, "acme")

	bob := newFakeConn("bob")
	e.login(bob, "bob")
	sentBefore := len(alice.responses(t))

	e.send(bob, proto.RequestChatMessage, "n-1", proto.ChatMessageData{ChannelID: generalID, Text: "hi"})

	resp := bob.lastResponse(t)
	if resp.Status != proto.StatusNotFound {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusNotFound)
	}
	if got := len(alice.responses(t)); got != sentBefore {
		t.Fatalf("channel member received %d extra frames from a rejected send", got-sentBefore)
	}
}

func TestKickFromChannel(t *testing.T) {
	e := newEnv(t)

	alice := newFakeConn("alice")
	aliceID := e.login(alice, "alice")
	communityID, generalID := e.createCommunity(alice, "acme")

	bob := newFakeConn("bob")
	bobID := e.login(bob, "bob")
	e.send(bob, proto.RequestJoinCommunity, "n-j1", proto.JoinCommunityData{CommunityID: communityID})
	e.send(bob, proto.RequestJoinChannel, "n-j2", proto.JoinChannelData{ChannelID: generalID})

	e.send(alice, proto.RequestKickUser, "n-kick", proto.KickUserData{
		Scope:     proto.ScopeChannel,
		UserID:    bobID,
		ChannelID: generalID,
		Reason:    "spam",
	})

	channel, _, _ := e.communities.FindChannel(generalID)
	if channel.HasMember(bobID) {
		t.Fatal("kicked user still a channel member")
	}
	community, _ := e.communities.Get(communityID)
	if !community.HasMember(bobID) {
		t.Fatal("channel kick must not touch community membership")
	}

	notice, ok := alice.findResponse(t, proto.RequestKickUser)
	if !ok {
		t.Fatal("remaining member did not receive the kick notice")
	}
	var kn proto.KickNotice
	decodeData(t, notice, &kn)
	if kn.UserID != bobID || kn.ActorID != aliceID || kn.Scope != proto.ScopeChannel {
		t.Fatalf("unexpected notice: %+v", kn)
	}
}

func TestKickFromCommunityCascades(t *testing.T) {
	e := newEnv(t)

	alice := newFakeConn("alice")
	e.login(alice, "alice")
	communityID, generalID := e.createCommunity(alice, "acme")

	bob := newFakeConn("bob")
	bobID := e.login(bob, "bob")
	e.send(bob, proto.RequestJoinCommunity, "n-j1", proto.JoinCommunityData{CommunityID: communityID})
	e.send(bob, proto.RequestJoinChannel, "n-j2", proto.JoinChannelData{ChannelID: generalID})

	e.send(alice, proto.RequestKickUser, "n-kick", proto.KickUserData{
		Scope:       proto.ScopeCommunity,
		UserID:      bobID,
		CommunityID: communityID,
	})

	community, _ := e.communities.Get(communityID)
	if community.HasMember(bobID) {
		t.Fatal("kicked user still a community member")
	}
	channel, _, _ := e.communities.FindChannel(generalID)
	if channel.HasMember(bobID) {
		t.Fatal("community kick did not cascade through channels")
	}
	bobClient, _ := e.clients.Get(bob)
	if bobClient.HasCommunity(communityID) {
		t.Fatal("kicked session still references the community")
	}
}

func TestKickUnknownTarget(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	e.login(conn, "alice")
	_, generalID := e.createCommunity(conn, "acme")

	e.send(conn, proto.RequestKickUser, "n-1", proto.KickUserData{
		Scope:     proto.ScopeChannel,
		UserID:    "nobody",
		ChannelID: generalID,
	})
	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusNotFound {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusNotFound)
	}
}

func TestUserInfoSelf(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	userID := e.login(conn, "alice")
	communityID, _ := e.createCommunity(conn, "acme")

	e.send(conn, proto.RequestUserInfo, "n-1", nil)

	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusSuccess {
		t.Fatalf("status = %v", resp.Status)
	}
	var ack proto.UserInfoAck
	decodeData(t, resp, &ack)
	if ack.UserID != userID {
		t.Fatalf("user id = %q, want %q", ack.UserID, userID)
	}
	if len(ack.User.Communities) != 1 || ack.User.Communities[0].ID != communityID {
		t.Fatalf("communities = %+v, want [%s]", ack.User.Communities, communityID)
	}
}

// Lookups are scoped to shared communities: a stranger's record is not
// reachable.
func TestUserInfoScopedToSharedCommunities(t *testing.T) {
	e := newEnv(t)

	alice := newFakeConn("alice")
	e.login(alice, "alice")
	communityID, _ := e.createCommunity(alice, "acme")

	bob := newFakeConn("bob")
	bobID := e.login(bob, "bob")

	// Not yet sharing a community.
	e.send(alice, proto.RequestUserInfo, "n-1", proto.UserInfoData{UserID: bobID})
	if resp := alice.lastResponse(t); resp.Status != proto.StatusNotFound {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusNotFound)
	}

	e.send(bob, proto.RequestJoinCommunity, "n-join", proto.JoinCommunityData{CommunityID: communityID})

	e.send(alice, proto.RequestUserInfo, "n-2", proto.UserInfoData{UserID: bobID})
	resp := alice.lastResponse(t)
	if resp.Status != proto.StatusSuccess {
		t.Fatalf("status = %v after sharing a community", resp.Status)
	}
	var ack proto.UserInfoAck
	decodeData(t, resp, &ack)
	if ack.UserID != bobID {
		t.Fatalf("user id = %q, want %q", ack.UserID, bobID)
	}
}

func TestUpdateDisplayName(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	e.login(conn, "alice")

	e.send(conn, proto.RequestUpdateDisplayName, "n-1", proto.UpdateDisplayNameData{DisplayName: "Allie"})

	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusSuccess {
		t.Fatalf("status = %v", resp.Status)
	}
	var ack proto.UpdateDisplayNameAck
	decodeData(t, resp, &ack)
	if ack.DisplayName != "Allie" {
		t.Fatalf("display name = %q, want Allie", ack.DisplayName)
	}
	client, _ := e.clients.Get(conn)
	if client.DisplayName() != "Allie" {
		t.Fatalf("session display name = %q", client.DisplayName())
	}
}

func TestChannelInfo(t *testing.T) {
	e := newEnv(t)
	conn := newFakeConn("a")
	userID := e.login(conn, "alice")
	_, generalID := e.createCommunity(conn, "acme")

	e.send(conn, proto.RequestChannelInfo, "n-1", proto.ChannelInfoData{ChannelID: generalID})

	resp := conn.lastResponse(t)
	if resp.Status != proto.StatusSuccess {
		t.Fatalf("status = %v", resp.Status)
	}
	var ack proto.ChannelInfoAck
	decodeData(t, resp, &ack)
	if ack.ChannelID != generalID || ack.Name != "General" {
		t.Fatalf("unexpected info: %+v", ack)
	}
	found := false
	for _, member := range ack.Users {
		if member.ID == userID {
			found = true
		}
	}
	if !found {
		t.Fatalf("creator missing from member list: %+v", ack.Users)
	}

	e.send(conn, proto.RequestChannelInfo, "n-2", proto.ChannelInfoData{ChannelID: "nope"})
	if resp := conn.lastResponse(t); resp.Status != proto.StatusNotFound {
		t.Fatalf("status = %v, want %v", resp.Status, proto.StatusNotFound)
	}
}

// A failing recipient must not block delivery to the rest of the channel.
func TestBroadcastPartialFailureStillDelivers(t *testing.T) {
	e := newEnv(t)

	alice := newFakeConn("alice")
	e.login(alice, "alice")
	communityID, generalID := e.createCommunity(alice, "acme")

	bob := newFakeConn("bob")
	e.login(bob, "bob")
	e.send(bob, proto.RequestJoinCommunity, "n-j1", proto.JoinCommunityData{CommunityID: communityID})
	e.send(bob, proto.RequestJoinChannel, "n-j2", proto.JoinChannelData{ChannelID: generalID})

	bob.mu.Lock()
	bob.failSend = true
	bob.mu.Unlock()

	e.send(alice, proto.RequestChatMessage, "n-msg", proto.ChatMessageData{ChannelID: generalID, Text: "still here"})

	resp, ok := alice.findResponse(t, proto.RequestChatMessage)
	if !ok {
		t.Fatal("healthy member did not receive the message")
	}
	var event proto.ChatMessageEvent
	decodeData(t, resp, &event)
	if event.Text != "still here" {
		t.Fatalf("text = %q", event.Text)
	}
}
