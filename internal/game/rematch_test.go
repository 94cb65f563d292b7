package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRematchWaitsForOpponent(t *testing.T) {
	h, _ := newTestHub()
	room := setupGame(t, h, 2)

	room.Mu.RLock()
	before := room.Game
	room.Mu.RUnlock()

	ack, err := h.RequestRematch(room.Id, 1)
	require.NoError(t, err)
	assert.True(t, ack.Ok)
	assert.True(t, ack.Waiting)
	assert.False(t, ack.BothConfirmed)

	// One-sided requests leave the finished game untouched.
	room.Mu.RLock()
	assert.Same(t, before, room.Game)
	assert.True(t, room.RematchRequests[1])
	assert.False(t, room.RematchRequests[2])
	room.Mu.RUnlock()
}

func TestRequestRematchIsIdempotentPerPlayer(t *testing.T) {
	h, _ := newTestHub()
	room := setupGame(t, h, 2)

	for i := 0; i < 3; i++ {
		ack, err := h.RequestRematch(room.Id, 1)
		require.NoError(t, err)
		assert.True(t, ack.Waiting, "repeats from the same player stay pending")
	}
}

func TestRequestRematchBothConfirmedResetsGame(t *testing.T) {
	h, _ := newTestHub()
	room := setupGame(t, h, 2)

	room.Mu.RLock()
	before := room.Game
	room.Mu.RUnlock()

	_, err := h.RequestRematch(room.Id, 1)
	require.NoError(t, err)
	ack, err := h.RequestRematch(room.Id, 2)
	require.NoError(t, err)
	assert.True(t, ack.Ok)
	assert.True(t, ack.BothConfirmed)
	assert.False(t, ack.Waiting)

	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.NotSame(t, before, room.Game, "rematch deals a brand-new game")
	assert.Len(t, room.Game.Hands[1], room.InitialHandSize)
	assert.Zero(t, room.Game.Scores[1])
	assert.Empty(t, room.RematchRequests, "pending set cleared by the reset")
}

func TestRequestRematchUnknownRoom(t *testing.T) {
	h, _ := newTestHub()
	_, err := h.RequestRematch("NOPE", 1)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRequestRematchRejectsInvalidPlayerNumber(t *testing.T) {
	h, _ := newTestHub()
	room := setupGame(t, h, 2)

	for _, pn := range []int{0, 3, 7, -1} {
		_, err := h.RequestRematch(room.Id, pn)
		assert.ErrorIs(t, err, ErrNotInRoom, "playerNumber %d", pn)
	}

	// The pending set stays clean of stray numbers.
	room.Mu.RLock()
	assert.Empty(t, room.RematchRequests)
	room.Mu.RUnlock()
}

func TestResetGameClearsPendingRematch(t *testing.T) {
	h, _ := newTestHub()
	room := setupGame(t, h, 2)

	_, err := h.RequestRematch(room.Id, 1)
	require.NoError(t, err)

	require.NotNil(t, h.ResetGame(room.Id))

	room.Mu.RLock()
	assert.Empty(t, room.RematchRequests)
	room.Mu.RUnlock()

	// A stale half-request never combines with a fresh one across resets.
	ack, err := h.RequestRematch(room.Id, 2)
	require.NoError(t, err)
	assert.True(t, ack.Waiting)
}
