package signal

// Registry is the authoritative mapping of room id → participant ids.
// It is owned by the hub goroutine: all reads and mutations happen on the
// Run loop, so no locking is needed or provided.
type Registry struct {
	rooms map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[string]struct{})}
}

// Occupancy returns the participant count for a room, 0 if the room is
// unknown.
func (r *Registry) Occupancy(roomID string) int {
	return len(r.rooms[roomID])
}

// Add inserts userID into the room, creating the room on first join.
// Adding a participant that is already present is a no-op.
func (r *Registry) Add(roomID, userID string) {
	m := r.rooms[roomID]
	if m == nil {
		m = make(map[string]struct{})
		r.rooms[roomID] = m
	}
	m[userID] = struct{}{}
}

// Remove deletes userID from the room. The room entry itself is deleted
// once its last participant leaves, so empty rooms never linger.
// Removing an absent participant or room is a no-op.
func (r *Registry) Remove(roomID, userID string) {
	m := r.rooms[roomID]
	if m == nil {
		return
	}
	delete(m, userID)
	if len(m) == 0 {
		delete(r.rooms, roomID)
	}
}

// Others returns every participant in the room except userID.
func (r *Registry) Others(roomID, userID string) []string {
	var out []string
	for id := range r.rooms[roomID] {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

// Rooms returns the number of rooms currently tracked.
func (r *Registry) Rooms() int {
	return len(r.rooms)
}
