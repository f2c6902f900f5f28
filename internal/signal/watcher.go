package signal

import (
	"log/slog"
	"sync"

	"github.com/mzeev8/online-medical-consultation/pkg/metrics"
)

// Watcher folds presence events from every instance into one live occupancy
// view. The local registry only knows rooms hosted on this process; the
// watcher sees the whole deployment through redis pub/sub.
type Watcher struct {
	log *slog.Logger

	mu    sync.Mutex
	rooms map[string]int
}

func NewWatcher(log *slog.Logger) *Watcher {
	return &Watcher{log: log, rooms: make(map[string]int)}
}

// Observe applies one presence event to the view. Events carry the room's
// occupancy after the change, so the view converges even when earlier
// events were dropped under load.
func (w *Watcher) Observe(ev PresenceEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ev.Occupancy <= 0 {
		delete(w.rooms, ev.RoomID)
	} else {
		w.rooms[ev.RoomID] = ev.Occupancy
	}
	metrics.ClusterRooms.Set(float64(len(w.rooms)))
	w.log.Debug("presence.observe", "room", ev.RoomID, "kind", ev.Kind, "occupancy", ev.Occupancy)
}

// Occupancy reports the cluster-wide participant count for a room.
func (w *Watcher) Occupancy(roomID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rooms[roomID]
}

// Rooms reports how many rooms are occupied anywhere in the deployment.
func (w *Watcher) Rooms() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.rooms)
}
