package game

import "errors"

// Errors surfaced to the originating caller via the action's ack. They never
// cross connection boundaries and never abort another player's view.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room already has two players")
	ErrNotInRoom           = errors.New("connection is not in a room")
	ErrNotAuthorized       = errors.New("only the room creator can start the game")
	ErrInsufficientPlayers = errors.New("two players are required to start")
	ErrMissingField        = errors.New("missing required field")
	ErrInternal            = errors.New("internal error")
)
