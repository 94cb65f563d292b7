package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/williambechard/cardmath-backend/internal"
)

// RoundRecorder archives resolved rounds. Recording is best-effort
// bookkeeping: a failure is logged and never aborts round resolution.
type RoundRecorder interface {
	RecordRound(ctx context.Context, roomId string, rec internal.RoundRecord) error
}

// pendingTimer is a cancellable deferred task for one room. The cancel
// channel unblocks the waiting goroutine when the timer is stopped before
// firing, so replaced or cancelled timers never leak a goroutine.
type pendingTimer struct {
	timer  clockwork.Timer
	cancel chan struct{}
}

// Hub owns all rooms and is the sole mutation point for room and game state.
// The rooms map is guarded by mu; each room carries its own lock and is the
// serialization point for everything inside it. Lock order is always
// hub.mu before room.Mu, never the reverse.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*internal.Room

	clock    clockwork.Clock
	recorder RoundRecorder

	timersMu      sync.Mutex
	advanceTimers map[string]*pendingTimer

	presenceMu     sync.Mutex
	presenceTimers map[string]*pendingTimer

	// emit delivers a message to every connection in a room. Overridable in
	// tests to capture broadcasts.
	emit func(room *internal.Room, msg internal.Message[any])
}

// NewHub builds a hub. Pass clockwork.NewRealClock() in production and a fake
// clock in tests. recorder may be nil.
func NewHub(clock clockwork.Clock, recorder RoundRecorder) *Hub {
	h := &Hub{
		rooms:          make(map[string]*internal.Room),
		clock:          clock,
		recorder:       recorder,
		advanceTimers:  make(map[string]*pendingTimer),
		presenceTimers: make(map[string]*pendingTimer),
	}
	h.emit = h.broadcastToRoom
	return h
}

// broadcastToRoom sends msg to every connection currently in the room.
// Emission is best-effort: a stale connection is logged and skipped, the
// authoritative state change it reports has already happened.
func (h *Hub) broadcastToRoom(room *internal.Room, msg internal.Message[any]) {
	room.Mu.RLock()
	players := make([]*internal.Player, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, p)
	}
	room.Mu.RUnlock()

	for _, p := range players {
		if err := p.SafeWriteJSON(msg); err != nil {
			log.Printf("[broadcastToRoom] room=%s: failed to send %s to player %d: %v",
				room.Id, msg.Type, p.Number, err)
		}
	}
}

// sendToPlayer writes msg to a single member, identified by playerNumber.
func (h *Hub) sendToPlayer(room *internal.Room, playerNumber int, msg internal.Message[any]) {
	room.Mu.RLock()
	p := room.PlayerByNumber(playerNumber)
	room.Mu.RUnlock()
	if p == nil {
		return
	}
	if err := p.SafeWriteJSON(msg); err != nil {
		log.Printf("[sendToPlayer] room=%s: failed to send %s to player %d: %v",
			room.Id, msg.Type, playerNumber, err)
	}
}

// StateUpdate wraps a broadcast GameState with its room id and, when a round
// was just solved, the schedule of the pending automatic advance.
type StateUpdate struct {
	RoomId      string              `json:"roomId"`
	State       *internal.GameState `json:"state"`
	NextRoundIn int64               `json:"nextRoundInMs,omitempty"`
	NextRoundAt *time.Time          `json:"nextRoundAt,omitempty"`
}

// broadcastState pushes the full game state to the room. delay > 0 announces
// the pending auto-advance window to clients.
func (h *Hub) broadcastState(room *internal.Room, st *internal.GameState, delay time.Duration) {
	if st == nil {
		return
	}
	update := StateUpdate{RoomId: room.Id, State: st}
	if delay > 0 {
		deadline := h.clock.Now().Add(delay)
		update.NextRoundIn = delay.Milliseconds()
		update.NextRoundAt = &deadline
	}
	h.emit(room, internal.Message[any]{Type: "state_update", Data: update})
}

// recordRound hands a resolved round to the archive, if one is configured.
func (h *Hub) recordRound(roomId string, rec internal.RoundRecord) {
	if h.recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.recorder.RecordRound(ctx, roomId, rec); err != nil {
			log.Printf("[recordRound] room=%s: archive failed (ignored): %v", roomId, err)
		}
	}()
}

// stopAndDrainTimer stops a timer and drains its channel so a fired-but-not-
// yet-consumed tick cannot leak.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
