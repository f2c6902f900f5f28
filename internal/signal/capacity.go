package signal

// maxOccupancy caps a room at its two appointment parties.
const maxOccupancy = 2

// Gate enforces the two-participant cap. It is consulted on the hub
// goroutine for both the check-room probe and the actual join, so the
// second of two racing joins always sees the first one's slot taken.
type Gate struct {
	reg *Registry
}

func NewGate(reg *Registry) *Gate {
	return &Gate{reg: reg}
}

// CanAdmit reports whether roomID still has a free slot.
func (g *Gate) CanAdmit(roomID string) bool {
	return g.reg.Occupancy(roomID) < maxOccupancy
}

// Status returns the check-room view of a room without joining it.
func (g *Gate) Status(roomID string) RoomStatus {
	n := g.reg.Occupancy(roomID)
	return RoomStatus{UserCount: n, IsFull: n >= maxOccupancy}
}
