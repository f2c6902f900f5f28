package signal

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

const (
	// Time allowed for a single write or ping to complete.
	writeWait = 10 * time.Second

	// Ping interval. A participant whose transport stops responding fails
	// the ping, which closes the connection and fires disconnect cleanup.
	pingPeriod = 20 * time.Second

	// Outbound queue per connection.
	sendBuffer = 32
)

// connState tracks the per-connection join lifecycle. Transitions happen
// only on the hub goroutine.
type connState int

const (
	stateUnjoined connState = iota
	stateJoined
	stateRejected
	stateLeft
)

// Client wraps one websocket connection and its room membership, if any.
// roomID and userID are set at join time so disconnect cleanup can run
// without re-parsing any message.
type Client struct {
	hub *Hub
	ws  *websocket.Conn

	state  connState
	roomID string
	userID string

	out chan *Message
}

// accept upgrades HTTP to websocket (allow all origins)
func accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

func newClient(hub *Hub, ws *websocket.Conn) *Client {
	return &Client{hub: hub, ws: ws, out: make(chan *Message, sendBuffer)}
}

// readLoop decodes inbound frames and hands them to the hub. It exits on
// connection loss, which deregisters the client.
func (c *Client) readLoop(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
	}()

	// 64 KB is plenty for SDP offers and ICE candidates.
	c.ws.SetReadLimit(64 * 1024)

	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText && typ != websocket.MessageBinary {
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed frames are dropped, never fatal to the loop.
			c.hub.log.Debug("ws.frame.malformed", "err", err)
			continue
		}
		msg.client = c

		select {
		case c.hub.inbound <- &msg:
		case <-ctx.Done():
			return
		}
	}
}

// writeLoop flushes queued messages and pings on an interval. It exits when
// the hub closes the out channel or a write fails.
func (c *Client) writeLoop(ctx context.Context) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()

	for {
		select {
		case msg, ok := <-c.out:
			if !ok {
				_ = c.ws.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			if err := c.write(ctx, msg); err != nil {
				return
			}
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.ws.Ping(pctx)
			cancel()
			if err != nil {
				_ = c.ws.Close(websocket.StatusPolicyViolation, "ping timeout")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg *Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.ws.Write(wctx, websocket.MessageText, raw)
}

// send queues a message without blocking the hub loop. A slow consumer
// loses messages rather than stalling every other room's traffic.
func (c *Client) send(msg *Message) {
	select {
	case c.out <- msg:
	default:
		c.hub.log.Warn("ws.send.dropped", "room", c.roomID, "user", c.userID)
	}
}
