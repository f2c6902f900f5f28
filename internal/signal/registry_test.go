package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOccupancyUnknownRoom(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, 0, reg.Occupancy("appt-1"))
	assert.Equal(t, 0, reg.Rooms(), "probing must not create a room")
}

func TestRegistryAddAndRemove(t *testing.T) {
	reg := NewRegistry()

	reg.Add("appt-1", "u1")
	reg.Add("appt-1", "u2")
	require.Equal(t, 2, reg.Occupancy("appt-1"))

	reg.Remove("appt-1", "u2")
	assert.Equal(t, 1, reg.Occupancy("appt-1"))
	assert.Equal(t, 1, reg.Rooms())

	// Last participant out deletes the room entry entirely.
	reg.Remove("appt-1", "u1")
	assert.Equal(t, 0, reg.Occupancy("appt-1"))
	assert.Equal(t, 0, reg.Rooms())
}

func TestRegistryAddIsIdempotent(t *testing.T) {
	reg := NewRegistry()

	reg.Add("appt-1", "u1")
	reg.Add("appt-1", "u1")

	assert.Equal(t, 1, reg.Occupancy("appt-1"))
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	reg := NewRegistry()

	reg.Add("appt-1", "u1")
	reg.Remove("appt-1", "u1")
	reg.Remove("appt-1", "u1")
	reg.Remove("never-seen", "u1")

	assert.Equal(t, 0, reg.Occupancy("appt-1"))
	assert.Equal(t, 0, reg.Rooms())
}

func TestRegistryOthers(t *testing.T) {
	reg := NewRegistry()

	reg.Add("appt-1", "u1")
	reg.Add("appt-1", "u2")
	reg.Add("appt-2", "u3")

	assert.Equal(t, []string{"u2"}, reg.Others("appt-1", "u1"))
	assert.Equal(t, []string{"u1"}, reg.Others("appt-1", "u2"))
	assert.Empty(t, reg.Others("appt-2", "u3"), "never echo back to the only occupant")
	assert.Empty(t, reg.Others("never-seen", "u1"))
}

func TestGate(t *testing.T) {
	reg := NewRegistry()
	gate := NewGate(reg)

	assert.True(t, gate.CanAdmit("appt-1"))
	assert.Equal(t, RoomStatus{UserCount: 0, IsFull: false}, gate.Status("appt-1"))

	reg.Add("appt-1", "u1")
	assert.True(t, gate.CanAdmit("appt-1"))

	reg.Add("appt-1", "u2")
	assert.False(t, gate.CanAdmit("appt-1"))
	assert.Equal(t, RoomStatus{UserCount: 2, IsFull: true}, gate.Status("appt-1"))

	reg.Remove("appt-1", "u1")
	assert.True(t, gate.CanAdmit("appt-1"), "a freed slot can be taken again")
}
