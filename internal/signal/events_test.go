package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnqueueNeverBlocks(t *testing.T) {
	p := &Publisher{q: make(chan PresenceEvent, 2)}

	// Overfilling the queue drops events instead of stalling the caller.
	for i := 0; i < 5; i++ {
		p.Enqueue(PresenceEvent{RoomID: "appt-1", UserID: "u1", Kind: "joined", Occupancy: 1})
	}

	assert.Len(t, p.q, 2)
}

func TestChannelNamespacing(t *testing.T) {
	assert.Equal(t, "room:appt-1", channel("appt-1"))
	assert.Equal(t, "room:*", channel("*"))
}
