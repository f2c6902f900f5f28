package signal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mzeev8/online-medical-consultation/pkg/metrics"
)

// Hub coordinates every signaling connection. A single Run goroutine owns
// the registry and the connection index: registrations, joins, relays, and
// disconnects are all serialized through its channels, so two participants
// racing for the last slot of a room are resolved in arrival order.
type Hub struct {
	log    *slog.Logger
	reg    *Registry
	gate   *Gate
	events *Publisher // optional, nil disables presence fanout

	register   chan *Client
	unregister chan *Client
	inbound    chan *Message

	// members resolves a registered participant id to its connection.
	// Mutated in lockstep with the registry, only on the Run goroutine.
	members map[string]map[string]*Client

	// handlers is built once per hub, keyed by event name. Per-connection
	// handler registration is what the dispatch table replaces.
	handlers map[string]func(*Message)
}

// NewHub wires the hub to an injected registry so tests get a fresh one.
// events may be nil.
func NewHub(logger *slog.Logger, reg *Registry, events *Publisher) *Hub {
	h := &Hub{
		log:        logger,
		reg:        reg,
		gate:       NewGate(reg),
		events:     events,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *Message),
		members:    make(map[string]map[string]*Client),
	}
	h.handlers = map[string]func(*Message){
		EventCheckRoom: h.handleCheckRoom,
		EventJoinRoom:  h.handleJoin,
		EventSignal:    h.handleSignal,
		EventLeaveRoom: h.handleLeave,
	}
	return h
}

// Run processes hub events until ctx is cancelled. It is the only
// goroutine that touches the registry or the member index.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.register:
			h.log.Debug("ws.connected")
		case c := <-h.unregister:
			h.dropClient(c)
		case msg := <-h.inbound:
			h.dispatch(msg)
		}
	}
}

func (h *Hub) dispatch(msg *Message) {
	fn := h.handlers[msg.Event]
	if fn == nil {
		h.log.Debug("ws.event.unknown", "event", msg.Event)
		return
	}
	fn(msg)
}

// handleCheckRoom answers a capacity probe. It never creates a room.
func (h *Hub) handleCheckRoom(msg *Message) {
	st := h.gate.Status(msg.RoomID)
	h.log.Debug("room.check", "room", msg.RoomID, "occupancy", st.UserCount)
	msg.client.send(&Message{Event: EventRoomStatus, RoomID: msg.RoomID, Status: &st})
}

// handleJoin admits the connection into a room or rejects it with
// room-full. A rejected connection stays open but is terminal: it cannot
// retry a join.
func (h *Hub) handleJoin(msg *Message) {
	c := msg.client
	if c.state != stateUnjoined {
		h.log.Debug("room.join.ignored", "room", msg.RoomID, "user", msg.UserID)
		return
	}

	if !h.gate.CanAdmit(msg.RoomID) {
		c.state = stateRejected
		metrics.JoinRejections.Inc()
		h.log.Info("room.full", "room", msg.RoomID, "user", msg.UserID)
		c.send(&Message{Event: EventRoomFull})
		return
	}

	c.state = stateJoined
	c.roomID = msg.RoomID
	c.userID = msg.UserID
	h.reg.Add(msg.RoomID, msg.UserID)

	m := h.members[msg.RoomID]
	if m == nil {
		m = make(map[string]*Client)
		h.members[msg.RoomID] = m
	}
	m[msg.UserID] = c

	metrics.Joins.Inc()
	metrics.ActiveRooms.Set(float64(h.reg.Rooms()))
	h.log.Info("room.join", "room", msg.RoomID, "user", msg.UserID,
		"occupancy", h.reg.Occupancy(msg.RoomID))

	// Tell the peer already waiting in the room.
	h.notify(msg.RoomID, msg.UserID, &Message{Event: EventUserConnected, UserID: msg.UserID})
	h.publish("joined", msg.RoomID, msg.UserID)
}

// handleSignal forwards an opaque negotiation payload to the other
// occupant of the room, never back to the sender. A signal for an
// untracked room is an expected race with a just-departed peer and is
// dropped quietly.
func (h *Hub) handleSignal(msg *Message) {
	if h.reg.Occupancy(msg.RoomID) == 0 {
		h.log.Debug("signal.dropped", "room", msg.RoomID, "user", msg.UserID)
		return
	}
	metrics.Relays.Inc()
	h.notify(msg.RoomID, msg.UserID, &Message{
		Event:  EventSignal,
		UserID: msg.UserID,
		Signal: msg.Signal,
	})
}

func (h *Hub) handleLeave(msg *Message) {
	h.removeMembership(msg.client)
}

// dropClient runs when a connection's read loop exits for any reason.
func (h *Hub) dropClient(c *Client) {
	h.removeMembership(c)
	close(c.out)
}

// removeMembership performs the one-time cleanup for a joined connection:
// deregister, notify the remaining occupant, publish presence. Calling it
// again, or for a connection that never joined, is a no-op.
func (h *Hub) removeMembership(c *Client) {
	if c.state != stateJoined {
		return
	}
	c.state = stateLeft

	// A stale connection for a participant that reconnected must not tear
	// down the live one's slot.
	m := h.members[c.roomID]
	if m == nil || m[c.userID] != c {
		return
	}
	delete(m, c.userID)
	if len(m) == 0 {
		delete(h.members, c.roomID)
	}
	h.reg.Remove(c.roomID, c.userID)

	metrics.Disconnects.Inc()
	metrics.ActiveRooms.Set(float64(h.reg.Rooms()))
	h.log.Info("room.leave", "room", c.roomID, "user", c.userID,
		"occupancy", h.reg.Occupancy(c.roomID))

	h.notify(c.roomID, c.userID, &Message{Event: EventUserDisconnected, UserID: c.userID})
	h.publish("left", c.roomID, c.userID)
}

// notify delivers msg to every occupant of roomID except fromUserID.
func (h *Hub) notify(roomID, fromUserID string, msg *Message) {
	for _, id := range h.reg.Others(roomID, fromUserID) {
		if peer := h.members[roomID][id]; peer != nil {
			peer.send(msg)
		}
	}
}

func (h *Hub) publish(kind, roomID, userID string) {
	if h.events == nil {
		return
	}
	h.events.Enqueue(PresenceEvent{
		RoomID:    roomID,
		UserID:    userID,
		Kind:      kind,
		Occupancy: h.reg.Occupancy(roomID),
	})
}

// ServeWS handles a new /ws connection. The appointment and participant
// ids arrive in the join-room message, not the URL; identity is whatever
// opaque strings the booking flow hands the browser.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	c := newClient(h, ws)
	h.register <- c

	go c.writeLoop(r.Context())
	c.readLoop(r.Context())
}
