package game

import (
	"log"
	"time"

	"github.com/williambechard/cardmath-backend/internal"
)

// =============================================================================
// PRESENCE BROADCASTING
// =============================================================================

// PresenceUpdate is the coalesced presence snapshot broadcast to a room.
type PresenceUpdate struct {
	RoomId  string          `json:"roomId"`
	Players []PlayerSummary `json:"players"`
}

// SchedulePresenceUpdate (re)starts the room's presence debounce timer. A new
// call replaces any pending one, so back-to-back membership changes collapse
// into a single snapshot built from authoritative membership at fire time.
// Rooms that no longer exist when the timer fires are silently skipped.
func (h *Hub) SchedulePresenceUpdate(roomId string, delay time.Duration) {
	pt := &pendingTimer{
		timer:  h.clock.NewTimer(delay),
		cancel: make(chan struct{}),
	}

	h.presenceMu.Lock()
	if old, ok := h.presenceTimers[roomId]; ok {
		close(old.cancel)
		stopAndDrainTimer(old.timer)
	}
	h.presenceTimers[roomId] = pt
	h.presenceMu.Unlock()

	go func() {
		select {
		case <-pt.cancel:
			return
		case <-pt.timer.Chan():
		}

		h.presenceMu.Lock()
		if h.presenceTimers[roomId] != pt {
			h.presenceMu.Unlock()
			return
		}
		delete(h.presenceTimers, roomId)
		h.presenceMu.Unlock()

		room := h.Room(roomId)
		if room == nil {
			return
		}

		room.Mu.RLock()
		snapshot := PresenceUpdate{RoomId: roomId}
		for _, connId := range room.PlayerOrder {
			if p := room.Players[connId]; p != nil {
				snapshot.Players = append(snapshot.Players, PlayerSummary{
					PlayerNumber: p.Number,
					Status:       p.Status,
				})
			}
		}
		room.Mu.RUnlock()

		log.Printf("[SchedulePresenceUpdate] Room %s: broadcasting presence (%d players)",
			roomId, len(snapshot.Players))
		h.emit(room, internal.Message[any]{Type: "presence_update", Data: snapshot})
	}()
}

// cancelPresenceUpdate drops a pending debounce timer, if any.
func (h *Hub) cancelPresenceUpdate(roomId string) {
	h.presenceMu.Lock()
	defer h.presenceMu.Unlock()
	if pt, ok := h.presenceTimers[roomId]; ok {
		delete(h.presenceTimers, roomId)
		close(pt.cancel)
		stopAndDrainTimer(pt.timer)
	}
}
