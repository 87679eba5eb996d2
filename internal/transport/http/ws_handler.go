package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/mkarpis/hivechat-server/internal/chat"
	"github.com/mkarpis/hivechat-server/internal/command"
)

// WSHandler upgrades HTTP connections and feeds their frames to the
// message processor one at a time.
type WSHandler struct {
	processor   *command.Processor
	communities *chat.CommunityManager
	log         *zerolog.Logger
}

func NewWSHandler(processor *command.Processor, communities *chat.CommunityManager, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{processor: processor, communities: communities, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	wconn := &wsConn{conn: conn, remote: r.RemoteAddr}
	defer func() {
		h.processor.Disconnect(context.WithoutCancel(ctx), wconn, h.communities)
		wconn.Close()
	}()

	for {
		_, payload, err := conn.Read(ctx)
		if err != nil {
			if !isExpectedClose(err) {
				h.log.Warn().Err(err).Str("remote", wconn.RemoteAddr()).Msg("ws read error")
			}
			return
		}
		// Frames arrive one at a time per connection, so processing here
		// keeps a connection's messages in arrival order.
		h.processor.Process(ctx, wconn, payload)
	}
}

func isExpectedClose(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}

// wsConn adapts a websocket connection to the transport.Conn contract.
// The mutex serializes writes: broadcasts fan out from many goroutines.
type wsConn struct {
	conn   *websocket.Conn
	remote string

	mu     sync.Mutex
	closed bool
}

func (c *wsConn) Send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *wsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close(websocket.StatusNormalClosure, "closing")
}

func (c *wsConn) RemoteAddr() string { return c.remote }
