package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williambechard/cardmath-backend/internal"
)

func handSizes(room *internal.Room) (int, int) {
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	return len(room.Game.Hands[1]), len(room.Game.Hands[2])
}

func isTransitioning(room *internal.Room) bool {
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	return room.Transitioning
}

func TestScheduleAutoAdvanceFires(t *testing.T) {
	h, fc := newTestHub()
	room := setupGame(t, h, 2)
	st := playRound(t, h, room)
	h.SubmitAnswer(room.Id, 1, st.CorrectAnswer)

	require.True(t, h.ScheduleAutoAdvance(room.Id, internal.RoundAdvanceDelay))
	assert.True(t, isTransitioning(room))

	// Selections are rejected while the advance is pending: the state comes
	// back unchanged, still holding the original pick.
	room.Mu.RLock()
	original := st.Selected[1].Id
	other := room.Game.Hands[1][1]
	room.Mu.RUnlock()
	blocked := h.SelectCard(room.Id, 1, other.Id)
	require.NotNil(t, blocked.Selected[1])
	assert.Equal(t, original, blocked.Selected[1].Id)

	fc.Advance(internal.RoundAdvanceDelay)

	assert.Eventually(t, func() bool {
		n1, n2 := handSizes(room)
		return n1 == 1 && n2 == 1 && !isTransitioning(room)
	}, time.Second, 5*time.Millisecond)
}

func TestScheduleAutoAdvanceIsIdempotent(t *testing.T) {
	h, _ := newTestHub()
	room := setupGame(t, h, 2)

	assert.True(t, h.ScheduleAutoAdvance(room.Id, internal.RoundAdvanceDelay))
	assert.False(t, h.ScheduleAutoAdvance(room.Id, internal.RoundAdvanceDelay),
		"duplicate scheduling must be a no-op")
	assert.False(t, h.ScheduleAutoAdvance("NOPE", internal.RoundAdvanceDelay))
}

func TestCancelAutoAdvanceClearsGuardAndTimer(t *testing.T) {
	h, fc := newTestHub()
	room := setupGame(t, h, 2)
	st := playRound(t, h, room)
	h.SubmitAnswer(room.Id, 1, st.CorrectAnswer)

	require.True(t, h.ScheduleAutoAdvance(room.Id, internal.RoundAdvanceDelay))
	h.CancelAutoAdvance(room.Id)
	assert.False(t, isTransitioning(room))

	// The cancelled timer must not advance the round when its deadline
	// passes.
	fc.Advance(internal.RoundAdvanceDelay)
	time.Sleep(50 * time.Millisecond)
	n1, n2 := handSizes(room)
	assert.Equal(t, 2, n1)
	assert.Equal(t, 2, n2)
}

func TestManualAdvanceWinsRaceWithTimer(t *testing.T) {
	h, fc := newTestHub()
	room := setupGame(t, h, 2)
	st := playRound(t, h, room)
	h.SubmitAnswer(room.Id, 2, st.CorrectAnswer)

	require.True(t, h.ScheduleAutoAdvance(room.Id, internal.RoundAdvanceDelay))

	// Explicit next-round request: cancel first so the manual advance wins.
	h.CancelAutoAdvance(room.Id)
	h.AdvanceRound(room.Id)

	fc.Advance(internal.RoundAdvanceDelay)
	time.Sleep(50 * time.Millisecond)

	// The advance applied exactly once: one card left per hand, not zero.
	n1, n2 := handSizes(room)
	assert.Equal(t, 1, n1)
	assert.Equal(t, 1, n2)
	assert.False(t, isTransitioning(room))
}

func TestAutoAdvanceSkipsDeletedRoom(t *testing.T) {
	h, fc := newTestHub()
	room := setupGame(t, h, 2)

	require.True(t, h.ScheduleAutoAdvance(room.Id, internal.RoundAdvanceDelay))

	// Both players disconnect; the room is deleted and its timer cancelled.
	h.Leave("conn-1")
	res := h.Leave("conn-2")
	require.NotNil(t, res)
	require.True(t, res.Deleted)

	fc.Advance(internal.RoundAdvanceDelay)
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, h.Room(room.Id))
}
