package game

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/williambechard/cardmath-backend/internal"
	"github.com/williambechard/cardmath-backend/internal/utils"
)

// =============================================================================
// ROOM MEMBERSHIP LIFECYCLE
// =============================================================================

// JoinAck is the acknowledgement returned for create_room and join_room.
type JoinAck struct {
	RoomId               string `json:"roomId"`
	RoomName             string `json:"roomName"`
	PlayerId             string `json:"playerId"`
	PlayerNumber         int    `json:"playerNumber"`
	OtherPlayerConnected bool   `json:"otherPlayerConnected"`
}

// LeaveResult reports what leaving a room did.
type LeaveResult struct {
	RoomId    string `json:"roomId"`
	Deleted   bool   `json:"deleted"`
	Remaining int    `json:"remaining"`
}

// CreateRoom allocates a new room and seats the creator as player 1. Never
// fails. conn and writeMu may be nil for connectionless callers (tests).
func (h *Hub) CreateRoom(connId string, conn *websocket.Conn, writeMu *sync.Mutex) (*internal.Room, JoinAck) {
	now := h.clock.Now()
	player := &internal.Player{
		Id:      uuid.NewString(),
		Number:  1,
		ConnId:  connId,
		Status:  internal.StatusLobby,
		Conn:    conn,
		WriteMu: writeMu,
	}
	room := &internal.Room{
		Name:            utils.GenerateRoomName(),
		Players:         map[string]*internal.Player{connId: player},
		PlayerOrder:     []string{connId},
		CreatedAt:       now,
		LastActivity:    now,
		Difficulty:      internal.DefaultDifficulty,
		InitialHandSize: internal.DefaultInitialHandSize,
		RematchRequests: make(map[int]bool),
	}

	h.mu.Lock()
	for {
		id := utils.GenerateID(6)
		if _, taken := h.rooms[id]; !taken {
			room.Id = id
			break
		}
	}
	h.rooms[room.Id] = room
	h.mu.Unlock()

	log.Printf("[CreateRoom] Created room %s (%q) for conn %s", room.Id, room.Name, connId)
	return room, JoinAck{
		RoomId:       room.Id,
		RoomName:     room.Name,
		PlayerId:     player.Id,
		PlayerNumber: 1,
	}
}

// JoinRoom seats a second player. Fails with ErrRoomNotFound or ErrRoomFull.
func (h *Hub) JoinRoom(roomId, connId string, conn *websocket.Conn, writeMu *sync.Mutex) (*internal.Room, JoinAck, error) {
	room := h.Room(roomId)
	if room == nil {
		return nil, JoinAck{}, ErrRoomNotFound
	}

	room.Mu.Lock()
	if len(room.Players) >= internal.MaxPlayersPerRoom {
		room.Mu.Unlock()
		return nil, JoinAck{}, ErrRoomFull
	}

	// Join order assigns numbers; the lowest free number keeps the
	// one-holds-1/one-holds-2 invariant if the creator already left.
	number := 2
	if room.PlayerByNumber(1) == nil {
		number = 1
	}
	player := &internal.Player{
		Id:      uuid.NewString(),
		Number:  number,
		ConnId:  connId,
		Status:  internal.StatusLobby,
		Conn:    conn,
		WriteMu: writeMu,
	}
	room.Players[connId] = player
	room.PlayerOrder = append(room.PlayerOrder, connId)
	room.LastActivity = h.clock.Now()
	roomName := room.Name
	room.Mu.Unlock()

	log.Printf("[JoinRoom] Conn %s joined room %s as player %d", connId, roomId, number)
	return room, JoinAck{
		RoomId:               roomId,
		RoomName:             roomName,
		PlayerId:             player.Id,
		PlayerNumber:         number,
		OtherPlayerConnected: true,
	}, nil
}

// LeaveRoom removes the connection from whichever room holds it (at most
// one). An emptied room is deleted immediately, together with its game state.
// Returns nil if the connection was not in any room.
func (h *Hub) LeaveRoom(connId string) *LeaveResult {
	h.mu.Lock()
	var room *internal.Room
	for _, r := range h.rooms {
		r.Mu.RLock()
		_, ok := r.Players[connId]
		r.Mu.RUnlock()
		if ok {
			room = r
			break
		}
	}
	if room == nil {
		h.mu.Unlock()
		return nil
	}

	room.Mu.Lock()
	player := room.Players[connId]
	player.Status = internal.StatusLeft
	delete(room.Players, connId)
	for i, id := range room.PlayerOrder {
		if id == connId {
			room.PlayerOrder = append(room.PlayerOrder[:i], room.PlayerOrder[i+1:]...)
			break
		}
	}
	remaining := len(room.Players)
	deleted := remaining == 0
	if deleted {
		now := h.clock.Now()
		room.EmptySince = &now
		room.Game = nil
		delete(h.rooms, room.Id)
	}
	room.LastActivity = h.clock.Now()
	room.Mu.Unlock()
	h.mu.Unlock()

	log.Printf("[LeaveRoom] Conn %s left room %s (remaining=%d, deleted=%t)",
		connId, room.Id, remaining, deleted)
	return &LeaveResult{RoomId: room.Id, Deleted: deleted, Remaining: remaining}
}

// Leave applies full leave semantics: registry removal, timer cancellation
// for dead rooms, and departure notifications for the remaining player.
func (h *Hub) Leave(connId string) *LeaveResult {
	room := h.RoomByConn(connId)
	if room == nil {
		return nil
	}
	res := h.LeaveRoom(connId)
	if res == nil {
		return nil
	}
	if res.Deleted {
		// No stale timer may fire against a deleted room.
		h.CancelAutoAdvance(res.RoomId)
		h.cancelPresenceUpdate(res.RoomId)
		return res
	}
	h.emit(room, internal.Message[any]{
		Type: "other_player_disconnected",
		Data: map[string]any{"roomId": res.RoomId, "remaining": res.Remaining},
	})
	h.SchedulePresenceUpdate(res.RoomId, internal.PresenceDebounceDelay)
	return res
}

// SetPlayerStatus updates a membership record. Returns false (without other
// effect) if the room or player is unknown.
func (h *Hub) SetPlayerStatus(roomId, connId string, status internal.PlayerStatus) bool {
	room := h.Room(roomId)
	if room == nil {
		return false
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	p, ok := room.Players[connId]
	if !ok {
		return false
	}
	p.Status = status
	room.LastActivity = h.clock.Now()
	return true
}

// Room fetches a room by id, or nil.
func (h *Hub) Room(roomId string) *internal.Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomId]
}

// RoomByConn locates the room containing the connection, or nil.
func (h *Hub) RoomByConn(connId string) *internal.Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, room := range h.rooms {
		room.Mu.RLock()
		_, ok := room.Players[connId]
		room.Mu.RUnlock()
		if ok {
			return room
		}
	}
	return nil
}

// PlayerSummary is one membership entry in a room summary or presence
// snapshot.
type PlayerSummary struct {
	PlayerNumber int                   `json:"playerNumber"`
	Status       internal.PlayerStatus `json:"status"`
}

// RoomSummary is the debug/admin view of a room.
type RoomSummary struct {
	RoomId          string          `json:"roomId"`
	RoomName        string          `json:"roomName"`
	PlayerCount     int             `json:"playerCount"`
	Players         []PlayerSummary `json:"players"`
	Difficulty      string          `json:"difficulty"`
	InitialHandSize int             `json:"initialHandSize"`
	Transitioning   bool            `json:"transitioning"`
}

// ListRooms returns summaries for every live room.
func (h *Hub) ListRooms() []RoomSummary {
	h.mu.RLock()
	rooms := make([]*internal.Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		room.Mu.RLock()
		s := RoomSummary{
			RoomId:          room.Id,
			RoomName:        room.Name,
			PlayerCount:     len(room.Players),
			Players:         make([]PlayerSummary, 0, len(room.Players)),
			Difficulty:      room.Difficulty,
			InitialHandSize: room.InitialHandSize,
			Transitioning:   room.Transitioning,
		}
		for _, connId := range room.PlayerOrder {
			if p := room.Players[connId]; p != nil {
				s.Players = append(s.Players, PlayerSummary{PlayerNumber: p.Number, Status: p.Status})
			}
		}
		room.Mu.RUnlock()
		summaries = append(summaries, s)
	}
	return summaries
}

// SetRoomOptions updates configurable game options. Hand size is clamped so
// two hands always fit one deck.
func (h *Hub) SetRoomOptions(roomId string, difficulty *string, handSize *int) error {
	room := h.Room(roomId)
	if room == nil {
		return ErrRoomNotFound
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	if difficulty != nil && *difficulty != "" {
		room.Difficulty = *difficulty
	}
	if handSize != nil {
		n := *handSize
		if n < 1 {
			n = 1
		}
		if n > internal.MaxInitialHandSize {
			n = internal.MaxInitialHandSize
		}
		room.InitialHandSize = n
	}
	room.LastActivity = h.clock.Now()
	return nil
}

// SweepIdleRooms deletes rooms that have been empty longer than the retention
// window. Under the current leave policy empty rooms are deleted
// synchronously, so this is a safety net; it returns the number of rooms
// removed.
func (h *Hub) SweepIdleRooms() int {
	now := h.clock.Now()
	h.mu.Lock()
	defer h.mu.Unlock()

	swept := 0
	for id, room := range h.rooms {
		room.Mu.RLock()
		idle := len(room.Players) == 0 &&
			room.EmptySince != nil &&
			now.Sub(*room.EmptySince) > internal.IdleRoomRetention
		room.Mu.RUnlock()
		if idle {
			delete(h.rooms, id)
			swept++
			log.Printf("[SweepIdleRooms] Removed idle room %s", id)
		}
	}
	return swept
}
