package game

import (
	"log"

	"github.com/williambechard/cardmath-backend/internal"
)

// =============================================================================
// REMATCH CONSENSUS
// =============================================================================

// RematchAck acknowledges a rematch request to its caller.
type RematchAck struct {
	Ok            bool `json:"ok"`
	Waiting       bool `json:"waiting,omitempty"`
	BothConfirmed bool `json:"bothConfirmed,omitempty"`
}

// RequestRematch records a player's consent to a rematch. Only once both
// player numbers have requested within the same epoch does the game reset,
// reusing the room's configured difficulty and hand size; the pending set is
// cleared by the reset. A lone request notifies the other player and stays
// pending.
func (h *Hub) RequestRematch(roomId string, playerNumber int) (RematchAck, error) {
	room := h.Room(roomId)
	if room == nil {
		return RematchAck{}, ErrRoomNotFound
	}
	if playerNumber != 1 && playerNumber != 2 {
		return RematchAck{}, ErrNotInRoom
	}

	room.Mu.Lock()
	room.RematchRequests[playerNumber] = true
	both := room.RematchRequests[1] && room.RematchRequests[2]
	room.Mu.Unlock()

	if !both {
		log.Printf("[RequestRematch] Room %s: player %d waiting for opponent", roomId, playerNumber)
		h.sendToPlayer(room, 3-playerNumber, internal.Message[any]{
			Type: "rematch_requested",
			Data: map[string]any{"roomId": roomId, "playerNumber": playerNumber},
		})
		return RematchAck{Ok: true, Waiting: true}, nil
	}

	log.Printf("[RequestRematch] Room %s: both players confirmed, resetting game", roomId)
	// InitGame clears the pending set and flips both players to in-game.
	st := h.InitGame(roomId)
	if st == nil {
		return RematchAck{}, ErrInternal
	}
	h.broadcastState(room, st, 0)
	h.SchedulePresenceUpdate(roomId, internal.PresenceDebounceDelay)
	return RematchAck{Ok: true, BothConfirmed: true}, nil
}
