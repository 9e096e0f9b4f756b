package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(h *Hub, userID, familyID string, buffer int) *Client {
	return &Client{
		hub:      h,
		send:     make(chan []byte, buffer),
		userID:   userID,
		familyID: familyID,
	}
}

func registeredClients(h *Hub, familyID string) int {
	h.familiesMux.RLock()
	defer h.familiesMux.RUnlock()
	return len(h.families[familyID])
}

func TestSendToFamilyDeliversToAllConnections(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	c1 := newTestClient(h, "u1", "fam_1", 4)
	c2 := newTestClient(h, "u2", "fam_1", 4)
	other := newTestClient(h, "u3", "fam_2", 4)
	h.register <- c1
	h.register <- c2
	h.register <- other

	require.Eventually(t, func() bool {
		return registeredClients(h, "fam_1") == 2
	}, time.Second, 10*time.Millisecond)

	h.SendToFamily("fam_1", "message", map[string]string{"text": "hi"})

	for _, c := range []*Client{c1, c2} {
		select {
		case raw := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "message", msg.Type)
		case <-time.After(time.Second):
			t.Fatal("expected a delivered message")
		}
	}
	assert.Empty(t, other.send)
}

func TestSendToFamilyEvictsSlowClients(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	slow := newTestClient(h, "u1", "fam_1", 1)
	slow.send <- []byte("backlog") // fill the buffer so the next send would block
	fast := newTestClient(h, "u2", "fam_1", 4)
	h.register <- slow
	h.register <- fast

	require.Eventually(t, func() bool {
		return registeredClients(h, "fam_1") == 2
	}, time.Second, 10*time.Millisecond)

	h.SendToFamily("fam_1", "message", map[string]string{"text": "hi"})

	// The slow client is dropped through the hub loop and its channel closed.
	require.Eventually(t, func() bool {
		return registeredClients(h, "fam_1") == 1
	}, time.Second, 10*time.Millisecond)

	<-slow.send // drain the backlog
	_, open := <-slow.send
	assert.False(t, open)

	select {
	case <-fast.send:
	case <-time.After(time.Second):
		t.Fatal("responsive client should still receive the message")
	}
}
