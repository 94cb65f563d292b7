package game

import (
	"log"
	"time"
)

// =============================================================================
// AUTOMATIC ROUND ADVANCEMENT
// =============================================================================

// ScheduleAutoAdvance arms the room's deferred round advance. A no-op when a
// timer is already pending, so duplicate scheduling cannot stack advances.
// The room is marked transitioning immediately; selections are rejected until
// the timer fires or is cancelled. Returns true if a timer was armed.
func (h *Hub) ScheduleAutoAdvance(roomId string, delay time.Duration) bool {
	room := h.Room(roomId)
	if room == nil {
		return false
	}

	h.timersMu.Lock()
	if _, pending := h.advanceTimers[roomId]; pending {
		h.timersMu.Unlock()
		return false
	}
	pt := &pendingTimer{
		timer:  h.clock.NewTimer(delay),
		cancel: make(chan struct{}),
	}
	h.advanceTimers[roomId] = pt
	h.timersMu.Unlock()

	room.Mu.Lock()
	room.Transitioning = true
	room.Mu.Unlock()

	log.Printf("[ScheduleAutoAdvance] Room %s: next round in %v", roomId, delay)

	go func() {
		select {
		case <-pt.cancel:
			return
		case <-pt.timer.Chan():
		}

		// Fire and cancel can race; whoever removes the registration wins,
		// so a cancelled timer never also advances.
		h.timersMu.Lock()
		if h.advanceTimers[roomId] != pt {
			h.timersMu.Unlock()
			return
		}
		delete(h.advanceTimers, roomId)
		h.timersMu.Unlock()

		// Scheduling-time state is stale by now; re-fetch the room.
		room := h.Room(roomId)
		if room == nil {
			log.Printf("[ScheduleAutoAdvance] Room %s gone before auto-advance, skipping", roomId)
			return
		}
		st := h.AdvanceRound(roomId)
		room.Mu.Lock()
		room.Transitioning = false
		room.Mu.Unlock()
		if st != nil {
			log.Printf("[ScheduleAutoAdvance] Room %s: auto-advance fired", roomId)
			h.broadcastState(room, st, 0)
		}
	}()
	return true
}

// CancelAutoAdvance drops any pending auto-advance and clears the
// transitioning guard immediately. Called when a client explicitly requests
// the next round (the manual request wins the race) and when a room's last
// connection goes away.
func (h *Hub) CancelAutoAdvance(roomId string) {
	h.timersMu.Lock()
	pt, pending := h.advanceTimers[roomId]
	if pending {
		delete(h.advanceTimers, roomId)
		close(pt.cancel)
		stopAndDrainTimer(pt.timer)
	}
	h.timersMu.Unlock()

	if room := h.Room(roomId); room != nil {
		room.Mu.Lock()
		room.Transitioning = false
		room.Mu.Unlock()
	}
	if pending {
		log.Printf("[CancelAutoAdvance] Room %s: pending auto-advance cancelled", roomId)
	}
}
