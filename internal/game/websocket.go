package game

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/williambechard/cardmath-backend/internal"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one websocket connection. The write mutex is shared with the
// Player record once the connection joins a room, so acks and broadcasts
// never interleave on the wire.
type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// reply sends the action's acknowledgement back to the originating caller.
func (c *client) reply(action string, data any) {
	msg := internal.Message[any]{Type: action + "_ack", Data: data}
	if err := c.writeJSON(msg); err != nil {
		log.Printf("[reply] conn=%s: failed to send %s: %v", c.id, msg.Type, err)
	}
}

// replyError surfaces a rejected action to its caller only; no other
// connection sees anything and no state was mutated.
func (c *client) replyError(action string, err error) {
	c.reply(action, map[string]any{"error": err.Error()})
}

// HandleWebSocket upgrades the HTTP connection and runs the per-connection
// message loop.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[HandleWebSocket] Upgrade failed:", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn}
	log.Printf("[HandleWebSocket] Conn %s established", c.id)
	go h.handleMessages(c)
}

// handleMessages reads and routes inbound actions until the connection drops.
// A dropped connection triggers full leave-room semantics, including
// cancellation of any pending auto-advance for a deleted room.
func (h *Hub) handleMessages(c *client) {
	defer func() {
		c.conn.Close()
		if res := h.Leave(c.id); res != nil {
			log.Printf("[handleMessages] Conn %s disconnected from room %s (deleted=%t)",
				c.id, res.RoomId, res.Deleted)
		}
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("[handleMessages] Read error on conn %s: %v", c.id, err)
			break
		}

		var baseMsg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &baseMsg); err != nil {
			log.Printf("[handleMessages] Conn %s sent malformed message: %v", c.id, err)
			continue
		}

		log.Printf("[handleMessages] Received %s from conn %s", baseMsg.Type, c.id)
		h.dispatch(c, baseMsg.Type, baseMsg.Data)
	}
}
