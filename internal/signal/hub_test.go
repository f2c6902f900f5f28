package signal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHub starts a hub with a fresh registry and no presence publisher.
func newTestHub(t *testing.T) (*Hub, *Registry) {
	t.Helper()
	reg := NewRegistry()
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), reg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	return h, reg
}

// newTestClient builds a client that is wired to the hub's channels but has
// no websocket behind it; outbound traffic lands in c.out.
func newTestClient(h *Hub) *Client {
	return &Client{hub: h, out: make(chan *Message, 16)}
}

func (h *Hub) join(c *Client, roomID, userID string) {
	h.inbound <- &Message{Event: EventJoinRoom, RoomID: roomID, UserID: userID, client: c}
}

// probe round-trips a check-room through the hub. Because the hub is a
// single loop, receiving the reply means everything sent before it has been
// processed, making subsequent registry reads safe from the test goroutine.
func probe(t *testing.T, h *Hub, c *Client, roomID string) RoomStatus {
	t.Helper()
	h.inbound <- &Message{Event: EventCheckRoom, RoomID: roomID, client: c}
	msg := recv(t, c)
	require.Equal(t, EventRoomStatus, msg.Event)
	require.NotNil(t, msg.Status)
	return *msg.Status
}

func recv(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case m, ok := <-c.out:
		require.True(t, ok, "out channel closed")
		return m
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func expectNone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case m := <-c.out:
		t.Fatalf("unexpected message %q", m.Event)
	default:
	}
}

func TestCheckRoomDoesNotCreateRoom(t *testing.T) {
	h, reg := newTestHub(t)
	c := newTestClient(h)

	st := probe(t, h, c, "never-used")

	assert.Equal(t, RoomStatus{UserCount: 0, IsFull: false}, st)
	assert.Equal(t, 0, reg.Rooms())
}

func TestJoinFlowAndCapacity(t *testing.T) {
	h, reg := newTestHub(t)
	c1, c2, c3 := newTestClient(h), newTestClient(h), newTestClient(h)

	// First join: admitted, nobody to notify.
	h.join(c1, "appt-1", "u1")
	st := probe(t, h, c1, "appt-1")
	assert.Equal(t, RoomStatus{UserCount: 1, IsFull: false}, st)

	// Second join: admitted, the waiting peer hears about it.
	h.join(c2, "appt-1", "u2")
	msg := recv(t, c1)
	assert.Equal(t, EventUserConnected, msg.Event)
	assert.Equal(t, "u2", msg.UserID)
	expectNone(t, c2)

	// Third join: room full, no registry mutation, peers hear nothing.
	h.join(c3, "appt-1", "u3")
	msg = recv(t, c3)
	assert.Equal(t, EventRoomFull, msg.Event)

	st = probe(t, h, c3, "appt-1")
	assert.Equal(t, RoomStatus{UserCount: 2, IsFull: true}, st)
	assert.Equal(t, 2, reg.Occupancy("appt-1"))
	expectNone(t, c1)
	expectNone(t, c2)
}

func TestRejectedConnectionCannotRetry(t *testing.T) {
	h, reg := newTestHub(t)
	c1, c2, c3 := newTestClient(h), newTestClient(h), newTestClient(h)

	h.join(c1, "appt-1", "u1")
	h.join(c2, "appt-1", "u2")
	recv(t, c1) // user-connected u2

	h.join(c3, "appt-1", "u3")
	require.Equal(t, EventRoomFull, recv(t, c3).Event)

	// A slot frees up, but the rejected connection is terminal.
	h.unregister <- c2
	require.Equal(t, EventUserDisconnected, recv(t, c1).Event)

	h.join(c3, "appt-1", "u3")
	st := probe(t, h, c3, "appt-1")
	assert.Equal(t, 1, st.UserCount)
	assert.Equal(t, 1, reg.Occupancy("appt-1"))
}

func TestSignalRelay(t *testing.T) {
	h, _ := newTestHub(t)
	c1, c2 := newTestClient(h), newTestClient(h)

	h.join(c1, "appt-1", "u1")
	h.join(c2, "appt-1", "u2")
	recv(t, c1) // user-connected u2

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	h.inbound <- &Message{Event: EventSignal, RoomID: "appt-1", UserID: "u1", Signal: offer, client: c1}

	msg := recv(t, c2)
	assert.Equal(t, EventSignal, msg.Event)
	assert.Equal(t, "u1", msg.UserID)
	assert.JSONEq(t, string(offer), string(msg.Signal))

	// Never echoed back to the sender.
	probe(t, h, c1, "appt-1")
	expectNone(t, c1)
}

func TestSignalForUnknownRoomIsDropped(t *testing.T) {
	h, _ := newTestHub(t)
	c1, c2 := newTestClient(h), newTestClient(h)

	h.join(c1, "appt-1", "u1")
	h.join(c2, "appt-1", "u2")
	recv(t, c1) // user-connected u2

	// An untracked room: the peer may have just left. Nothing is delivered
	// and nothing blows up.
	h.inbound <- &Message{Event: EventSignal, RoomID: "gone", UserID: "u1",
		Signal: json.RawMessage(`{}`), client: c1}

	probe(t, h, c1, "appt-1")
	expectNone(t, c1)
	expectNone(t, c2)
}

func TestDisconnectCleansUp(t *testing.T) {
	h, reg := newTestHub(t)
	c1, c2 := newTestClient(h), newTestClient(h)

	h.join(c1, "appt-1", "u1")
	h.join(c2, "appt-1", "u2")
	recv(t, c1) // user-connected u2

	// u2 drops: remaining occupant is told, occupancy shrinks by one.
	h.unregister <- c2
	msg := recv(t, c1)
	assert.Equal(t, EventUserDisconnected, msg.Event)
	assert.Equal(t, "u2", msg.UserID)

	st := probe(t, h, c1, "appt-1")
	assert.Equal(t, RoomStatus{UserCount: 1, IsFull: false}, st)

	// u1 drops too: the room is gone entirely.
	h.unregister <- c1
	c3 := newTestClient(h)
	st = probe(t, h, c3, "appt-1")
	assert.Equal(t, RoomStatus{UserCount: 0, IsFull: false}, st)
	assert.Equal(t, 0, reg.Rooms())
}

func TestExplicitLeave(t *testing.T) {
	h, reg := newTestHub(t)
	c1, c2 := newTestClient(h), newTestClient(h)

	h.join(c1, "appt-1", "u1")
	h.join(c2, "appt-1", "u2")
	recv(t, c1) // user-connected u2

	h.inbound <- &Message{Event: EventLeaveRoom, client: c2}
	msg := recv(t, c1)
	assert.Equal(t, EventUserDisconnected, msg.Event)
	assert.Equal(t, "u2", msg.UserID)
	assert.Equal(t, 1, probe(t, h, c1, "appt-1").UserCount)

	// The transport-level disconnect that follows must not clean up twice.
	h.unregister <- c2
	probe(t, h, c1, "appt-1")
	expectNone(t, c1)
	assert.Equal(t, 1, reg.Occupancy("appt-1"))
}

func TestUnknownEventIgnored(t *testing.T) {
	h, _ := newTestHub(t)
	c := newTestClient(h)

	h.inbound <- &Message{Event: "nonsense", client: c}
	probe(t, h, c, "appt-1")
	expectNone(t, c)
}

func TestSlowConsumerDoesNotBlockHub(t *testing.T) {
	h, _ := newTestHub(t)
	c1 := newTestClient(h)
	// A peer with a full outbound queue.
	c2 := &Client{hub: h, out: make(chan *Message)}

	h.join(c1, "appt-1", "u1")
	h.join(c2, "appt-1", "u2")
	recv(t, c1) // user-connected u2

	// Relays toward the stuck peer are dropped, not queued forever.
	for i := 0; i < 10; i++ {
		h.inbound <- &Message{Event: EventSignal, RoomID: "appt-1", UserID: "u1",
			Signal: json.RawMessage(`{}`), client: c1}
	}
	st := probe(t, h, c1, "appt-1")
	assert.Equal(t, 2, st.UserCount, "hub still responsive")
}
