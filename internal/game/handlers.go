package game

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/williambechard/cardmath-backend/internal"
)

// =============================================================================
// ACTION ROUTING
// =============================================================================

type roomPayload struct {
	RoomId string `json:"roomId"`
}

type optionsPayload struct {
	RoomId     string `json:"roomId"`
	Difficulty string `json:"difficulty"`

	// Accepted synonyms for the initial hand size.
	InitialHandSize *int `json:"initialHandSize"`
	HandSize        *int `json:"handSize"`
	CardsPerPlayer  *int `json:"cardsPerPlayer"`
}

func (p optionsPayload) handSize() *int {
	switch {
	case p.InitialHandSize != nil:
		return p.InitialHandSize
	case p.HandSize != nil:
		return p.HandSize
	default:
		return p.CardsPerPlayer
	}
}

type selectCardPayload struct {
	RoomId       string `json:"roomId"`
	PlayerNumber int    `json:"playerNumber"`
	CardId       string `json:"cardId"`
}

type submitAnswerPayload struct {
	RoomId       string `json:"roomId"`
	PlayerNumber int    `json:"playerNumber"`
	Answer       int    `json:"answer"`
}

type rematchPayload struct {
	RoomId       string `json:"roomId"`
	PlayerNumber int    `json:"playerNumber"`
}

type presencePayload struct {
	RoomId string `json:"roomId"`
	Status string `json:"status"`
}

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

// dispatch routes one inbound action. Request/ack actions answer the caller;
// game-sync actions broadcast the resulting state to the whole room.
func (h *Hub) dispatch(c *client, action string, raw json.RawMessage) {
	switch action {
	case "create_room":
		h.handleCreateRoom(c)
	case "join_room":
		h.handleJoinRoom(c, raw)
	case "start_game":
		h.handleStartGame(c, raw)
	case "card_selected":
		h.handleCardSelected(c, raw)
	case "answer_submitted":
		h.handleAnswerSubmitted(c, raw)
	case "next_round":
		h.handleNextRound(c, raw)
	case "reset_game":
		h.handleResetGame(c, raw)
	case "request_rematch":
		h.handleRequestRematch(c, raw)
	case "set_presence":
		h.handleSetPresence(c, raw)
	case "set_room_options":
		h.handleSetRoomOptions(c, raw)
	case "leave_room":
		h.handleLeaveRoom(c)
	default:
		log.Printf("[dispatch] Unknown action %q from conn %s", action, c.id)
	}
}

func (h *Hub) handleCreateRoom(c *client) {
	_, ack := h.CreateRoom(c.id, c.conn, &c.writeMu)
	c.reply("create_room", ack)
}

func (h *Hub) handleJoinRoom(c *client, raw json.RawMessage) {
	var p roomPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomId == "" {
		c.replyError("join_room", missingField("roomId"))
		return
	}
	room, ack, err := h.JoinRoom(p.RoomId, c.id, c.conn, &c.writeMu)
	if err != nil {
		c.replyError("join_room", err)
		return
	}
	c.reply("join_room", ack)

	// Tell the creator their opponent arrived. Best-effort bookkeeping: a
	// failed hint never unwinds the join.
	h.sendToPlayer(room, 3-ack.PlayerNumber, internal.Message[any]{
		Type: "other_player_connected",
		Data: map[string]any{"roomId": room.Id, "playerNumber": ack.PlayerNumber},
	})
	h.SchedulePresenceUpdate(room.Id, internal.PresenceDebounceDelay)
}

func (h *Hub) handleStartGame(c *client, raw json.RawMessage) {
	var p optionsPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomId == "" {
		c.replyError("start_game", missingField("roomId"))
		return
	}
	if p.Difficulty != "" || p.handSize() != nil {
		diff := p.Difficulty
		if err := h.SetRoomOptions(p.RoomId, &diff, p.handSize()); err != nil {
			c.replyError("start_game", err)
			return
		}
	}
	st, err := h.StartGame(p.RoomId, c.id)
	if err != nil {
		c.replyError("start_game", err)
		return
	}
	c.reply("start_game", map[string]any{"ok": true})

	room := h.Room(p.RoomId)
	if room != nil {
		h.broadcastState(room, st, 0)
		h.SchedulePresenceUpdate(p.RoomId, internal.PresenceDebounceDelay)
	}
}

func (h *Hub) handleCardSelected(c *client, raw json.RawMessage) {
	var p selectCardPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomId == "" {
		return
	}
	st := h.SelectCard(p.RoomId, p.PlayerNumber, p.CardId)
	if room := h.Room(p.RoomId); room != nil && st != nil {
		h.broadcastState(room, st, 0)
	}
}

func (h *Hub) handleAnswerSubmitted(c *client, raw json.RawMessage) {
	var p submitAnswerPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomId == "" {
		return
	}
	st := h.SubmitAnswer(p.RoomId, p.PlayerNumber, p.Answer)
	room := h.Room(p.RoomId)
	if room == nil || st == nil {
		return
	}

	if st.ProblemSolved {
		h.ScheduleAutoAdvance(p.RoomId, internal.RoundAdvanceDelay)
		h.broadcastState(room, st, internal.RoundAdvanceDelay)
		return
	}
	h.broadcastState(room, st, 0)
}

func (h *Hub) handleNextRound(c *client, raw json.RawMessage) {
	var p roomPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomId == "" {
		return
	}
	// The explicit request wins any race with the pending timer.
	h.CancelAutoAdvance(p.RoomId)
	st := h.AdvanceRound(p.RoomId)
	if room := h.Room(p.RoomId); room != nil && st != nil {
		h.broadcastState(room, st, 0)
	}
}

func (h *Hub) handleResetGame(c *client, raw json.RawMessage) {
	var p roomPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomId == "" {
		return
	}
	h.CancelAutoAdvance(p.RoomId)
	st := h.ResetGame(p.RoomId)
	if room := h.Room(p.RoomId); room != nil && st != nil {
		h.broadcastState(room, st, 0)
	}
}

func (h *Hub) handleRequestRematch(c *client, raw json.RawMessage) {
	var p rematchPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomId == "" {
		c.replyError("request_rematch", missingField("roomId"))
		return
	}
	ack, err := h.RequestRematch(p.RoomId, p.PlayerNumber)
	if err != nil {
		c.replyError("request_rematch", err)
		return
	}
	c.reply("request_rematch", ack)
}

func (h *Hub) handleSetPresence(c *client, raw json.RawMessage) {
	var p presencePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomId == "" || p.Status == "" {
		c.replyError("set_presence", missingField("roomId/status"))
		return
	}
	if p.Status == string(internal.StatusLeft) {
		if res := h.Leave(c.id); res == nil {
			c.replyError("set_presence", ErrNotInRoom)
			return
		}
		c.reply("set_presence", map[string]any{"ok": true})
		return
	}
	if !h.SetPlayerStatus(p.RoomId, c.id, internal.PlayerStatus(p.Status)) {
		c.replyError("set_presence", ErrNotInRoom)
		return
	}
	h.SchedulePresenceUpdate(p.RoomId, internal.PresenceDebounceDelay)
	c.reply("set_presence", map[string]any{"ok": true})
}

func (h *Hub) handleSetRoomOptions(c *client, raw json.RawMessage) {
	var p optionsPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.RoomId == "" {
		c.replyError("set_room_options", missingField("roomId"))
		return
	}
	var diff *string
	if p.Difficulty != "" {
		diff = &p.Difficulty
	}
	if err := h.SetRoomOptions(p.RoomId, diff, p.handSize()); err != nil {
		c.replyError("set_room_options", err)
		return
	}
	c.reply("set_room_options", map[string]any{"ok": true})
}

func (h *Hub) handleLeaveRoom(c *client) {
	res := h.Leave(c.id)
	if res == nil {
		c.replyError("leave_room", ErrNotInRoom)
		return
	}
	c.reply("leave_room", map[string]any{
		"ok":        true,
		"roomId":    res.RoomId,
		"deleted":   res.Deleted,
		"remaining": res.Remaining,
	})
}
