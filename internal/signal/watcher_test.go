package signal

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestWatcher() *Watcher {
	return NewWatcher(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestWatcherTracksOccupancy(t *testing.T) {
	w := newTestWatcher()

	w.Observe(PresenceEvent{RoomID: "appt-1", UserID: "u1", Kind: "joined", Occupancy: 1})
	w.Observe(PresenceEvent{RoomID: "appt-1", UserID: "u2", Kind: "joined", Occupancy: 2})
	w.Observe(PresenceEvent{RoomID: "appt-2", UserID: "u3", Kind: "joined", Occupancy: 1})

	assert.Equal(t, 2, w.Occupancy("appt-1"))
	assert.Equal(t, 1, w.Occupancy("appt-2"))
	assert.Equal(t, 2, w.Rooms())
}

func TestWatcherDropsEmptyRooms(t *testing.T) {
	w := newTestWatcher()

	w.Observe(PresenceEvent{RoomID: "appt-1", UserID: "u1", Kind: "joined", Occupancy: 1})
	w.Observe(PresenceEvent{RoomID: "appt-1", UserID: "u1", Kind: "left", Occupancy: 0})

	assert.Equal(t, 0, w.Occupancy("appt-1"))
	assert.Equal(t, 0, w.Rooms())
}

func TestWatcherConvergesAfterMissedEvents(t *testing.T) {
	w := newTestWatcher()

	// The first join was dropped in transit; the next event still carries
	// the room's absolute occupancy, so the view catches up.
	w.Observe(PresenceEvent{RoomID: "appt-1", UserID: "u2", Kind: "joined", Occupancy: 2})
	assert.Equal(t, 2, w.Occupancy("appt-1"))

	w.Observe(PresenceEvent{RoomID: "appt-1", UserID: "u2", Kind: "left", Occupancy: 1})
	assert.Equal(t, 1, w.Occupancy("appt-1"))
}
