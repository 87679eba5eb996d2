package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/mkarpis/hivechat-server/internal/proto"
)

// Smoke test client: logs in, creates a community, sends a message into
// its default channel and waits for the echo.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

type outbound struct {
	Status proto.Status      `json:"status"`
	Type   proto.RequestType `json:"type"`
	Nonce  string            `json:"nonce"`
	Data   json.RawMessage   `json:"data"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "tester", "username to log in with")
	community := flag.String("community", "smoke", "community name to create")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(reqType proto.RequestType, nonce string, data any) error {
		payload, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			return fmt.Errorf("marshal request data: %w", marshalErr)
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Request{Type: reqType, Nonce: nonce, Data: payload}); writeErr != nil {
			return fmt.Errorf("send: %w", writeErr)
		}
		return nil
	}
	read := func() (outbound, error) {
		var resp outbound
		if readErr := wsjson.Read(ctx, conn, &resp); readErr != nil {
			return resp, fmt.Errorf("read: %w", readErr)
		}
		return resp, nil
	}

	if err := send(proto.RequestLogin, "n-login", proto.LoginData{Username: *user, Password: "smoke"}); err != nil {
		return err
	}
	resp, err := read()
	if err != nil {
		return err
	}
	if resp.Status != proto.StatusSuccess {
		return fmt.Errorf("login rejected: status=%s", resp.Status)
	}
	var loginAck proto.LoginAck
	if err := json.Unmarshal(resp.Data, &loginAck); err != nil {
		return fmt.Errorf("unmarshal login ack: %w", err)
	}
	fmt.Printf("logged in: user_id=%s\n", loginAck.UserID)

	if err := send(proto.RequestCreateCommunity, "n-create", proto.CreateCommunityData{Name: *community}); err != nil {
		return err
	}
	resp, err = read()
	if err != nil {
		return err
	}
	if resp.Status != proto.StatusCreated {
		return fmt.Errorf("create community rejected: status=%s", resp.Status)
	}
	var communityAck proto.CommunityAck
	if err := json.Unmarshal(resp.Data, &communityAck); err != nil {
		return fmt.Errorf("unmarshal community ack: %w", err)
	}
	fmt.Printf("community created: id=%s\n", communityAck.CommunityID)

	// The creator is already a member of the default channel; find its id
	// through the own-user record.
	if err := send(proto.RequestUserInfo, "n-me", nil); err != nil {
		return err
	}
	var channelID string
	for channelID == "" {
		resp, err = read()
		if err != nil {
			return err
		}
		if resp.Type != proto.RequestUserInfo {
			continue
		}
		var me proto.UserInfoAck
		if err := json.Unmarshal(resp.Data, &me); err != nil {
			return fmt.Errorf("unmarshal user info: %w", err)
		}
		for _, co := range me.User.Communities {
			for _, ch := range co.Channels {
				channelID = ch.ID
			}
		}
	}
	fmt.Printf("default channel: id=%s\n", channelID)

	if err := send(proto.RequestChatMessage, "n-msg", proto.ChatMessageData{ChannelID: channelID, Text: *text}); err != nil {
		return err
	}

	for {
		resp, err = read()
		if err != nil {
			return err
		}
		if resp.Type != proto.RequestChatMessage {
			continue
		}
		var evt proto.ChatMessageEvent
		if err := json.Unmarshal(resp.Data, &evt); err != nil {
			return fmt.Errorf("unmarshal message event: %w", err)
		}
		fmt.Printf("echo: channel=%s author=%s text=%q ts=%d\n", evt.ChannelID, evt.AuthorID, evt.Text, evt.Timestamp)
		return nil
	}
}
