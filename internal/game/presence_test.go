package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williambechard/cardmath-backend/internal"
)

// emitRecorder captures broadcasts instead of writing to connections.
type emitRecorder struct {
	mu   sync.Mutex
	msgs []internal.Message[any]
}

func (r *emitRecorder) record(_ *internal.Room, msg internal.Message[any]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *emitRecorder) byType(msgType string) []internal.Message[any] {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []internal.Message[any]
	for _, m := range r.msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func TestPresenceUpdatesAreCoalesced(t *testing.T) {
	h, fc := newTestHub()
	rec := &emitRecorder{}
	h.emit = rec.record

	room, _ := h.CreateRoom("conn-1", nil, nil)
	_, _, err := h.JoinRoom(room.Id, "conn-2", nil, nil)
	require.NoError(t, err)

	// Back-to-back membership changes collapse into one snapshot.
	h.SchedulePresenceUpdate(room.Id, internal.PresenceDebounceDelay)
	h.SchedulePresenceUpdate(room.Id, internal.PresenceDebounceDelay)
	h.SchedulePresenceUpdate(room.Id, internal.PresenceDebounceDelay)

	fc.Advance(internal.PresenceDebounceDelay)

	assert.Eventually(t, func() bool {
		return len(rec.byType("presence_update")) == 1
	}, time.Second, 5*time.Millisecond)

	// Still exactly one after the dust settles.
	time.Sleep(50 * time.Millisecond)
	updates := rec.byType("presence_update")
	require.Len(t, updates, 1)

	snapshot, ok := updates[0].Data.(PresenceUpdate)
	require.True(t, ok)
	assert.Equal(t, room.Id, snapshot.RoomId)
	require.Len(t, snapshot.Players, 2)
	assert.Equal(t, 1, snapshot.Players[0].PlayerNumber)
	assert.Equal(t, internal.StatusLobby, snapshot.Players[0].Status)
	assert.Equal(t, 2, snapshot.Players[1].PlayerNumber)
}

func TestPresenceSnapshotReflectsCurrentMembership(t *testing.T) {
	h, fc := newTestHub()
	rec := &emitRecorder{}
	h.emit = rec.record

	room, _ := h.CreateRoom("conn-1", nil, nil)
	_, _, err := h.JoinRoom(room.Id, "conn-2", nil, nil)
	require.NoError(t, err)

	h.SchedulePresenceUpdate(room.Id, internal.PresenceDebounceDelay)

	// Membership changes between scheduling and firing; the snapshot is
	// built from authoritative state at fire time.
	require.True(t, h.SetPlayerStatus(room.Id, "conn-2", internal.StatusInGame))

	fc.Advance(internal.PresenceDebounceDelay)

	assert.Eventually(t, func() bool {
		updates := rec.byType("presence_update")
		if len(updates) != 1 {
			return false
		}
		snapshot := updates[0].Data.(PresenceUpdate)
		return len(snapshot.Players) == 2 &&
			snapshot.Players[1].Status == internal.StatusInGame
	}, time.Second, 5*time.Millisecond)
}

func TestPresenceSkipsDeletedRoom(t *testing.T) {
	h, fc := newTestHub()
	rec := &emitRecorder{}
	h.emit = rec.record

	room, _ := h.CreateRoom("conn-1", nil, nil)
	h.SchedulePresenceUpdate(room.Id, internal.PresenceDebounceDelay)
	require.NotNil(t, h.LeaveRoom("conn-1"))

	fc.Advance(internal.PresenceDebounceDelay)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.byType("presence_update"))
}
