package internal

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DeckSize     = 44
	MinCardValue = 2
	MaxCardValue = 12

	MaxPlayersPerRoom = 2

	DefaultDifficulty      = "normal"
	DefaultInitialHandSize = 8
	MaxInitialHandSize     = DeckSize / 2

	// Grace period between a round being solved and the next round's cards
	// being revealed.
	RoundAdvanceDelay = 5 * time.Second

	// Presence notifications are coalesced within this window.
	PresenceDebounceDelay = 200 * time.Millisecond

	// Rooms that have sat empty longer than this are eligible for sweeping.
	IdleRoomRetention = 10 * time.Minute
)

type PlayerStatus string

const (
	StatusLobby  PlayerStatus = "lobby"
	StatusInGame PlayerStatus = "in-game"
	StatusLeft   PlayerStatus = "left"
)

type Suit string

var Suits = [4]Suit{"hearts", "diamonds", "clubs", "spades"}

type Card struct {
	Id    string `json:"id"`
	Value int    `json:"value"`
	Suit  Suit   `json:"suit"`
}

type Player struct {
	Id     string       `json:"playerId"`
	Number int          `json:"playerNumber"`
	ConnId string       `json:"-"`
	Status PlayerStatus `json:"status"`

	Conn    *websocket.Conn `json:"-"`
	WriteMu *sync.Mutex     `json:"-"`
}

// SafeWriteJSON serializes writes so broadcasts and acks never interleave on
// the same connection. A player without a live connection is skipped.
func (p *Player) SafeWriteJSON(v any) error {
	if p == nil || p.Conn == nil {
		return nil
	}
	if p.WriteMu != nil {
		p.WriteMu.Lock()
		defer p.WriteMu.Unlock()
	}
	return p.Conn.WriteJSON(v)
}

type Problem struct {
	Operand1 int `json:"operand1"`
	Operand2 int `json:"operand2"`
}

type RoundRecord struct {
	Operands      [2]int    `json:"operands"`
	CorrectAnswer int       `json:"correctAnswer"`
	SolvedBy      *int      `json:"solvedBy"`
	Timestamp     time.Time `json:"timestamp"`
}

// GameState is the authoritative snapshot of one room's game. All mutation
// happens under the owning room's lock.
type GameState struct {
	Hands            map[int][]Card `json:"playerHands"`
	Selected         map[int]*Card  `json:"selectedCards"`
	Problem          *Problem       `json:"currentProblem"`
	CorrectAnswer    int            `json:"correctAnswer"`
	AnswerOptions    []int          `json:"answerOptions"`
	Answered         map[int]bool   `json:"answered"`
	SubmittedAnswers map[int]*int   `json:"submittedAnswers"`
	Scores           map[int]int    `json:"scores"`
	RoundInProgress  bool           `json:"roundInProgress"`
	ProblemSolved    bool           `json:"problemSolved"`
	SolvedBy         *int           `json:"solvedBy"`
	RevealProblem    bool           `json:"revealProblem"`
	GameOver         bool           `json:"gameOver"`
	Winner           *string        `json:"winner"`
	RoundHistory     []RoundRecord  `json:"roundHistory"`

	// Client animation control: when both are true the client may skip the
	// dealing animation and advance its local view immediately.
	DealComplete   bool `json:"dealComplete"`
	AdvanceClients bool `json:"advanceClients"`
}

func NewGameState() *GameState {
	return &GameState{
		Hands:            map[int][]Card{1: nil, 2: nil},
		Selected:         map[int]*Card{1: nil, 2: nil},
		Answered:         map[int]bool{1: false, 2: false},
		SubmittedAnswers: map[int]*int{1: nil, 2: nil},
		Scores:           map[int]int{1: 0, 2: 0},
		RoundHistory:     make([]RoundRecord, 0),
	}
}

// ResetRound returns all per-round fields to the pre-selection baseline.
// Scores, hands, history and the game-over verdict are untouched.
func (g *GameState) ResetRound() {
	g.Selected = map[int]*Card{1: nil, 2: nil}
	g.Answered = map[int]bool{1: false, 2: false}
	g.SubmittedAnswers = map[int]*int{1: nil, 2: nil}
	g.Problem = nil
	g.CorrectAnswer = 0
	g.AnswerOptions = nil
	g.RoundInProgress = false
	g.ProblemSolved = false
	g.SolvedBy = nil
	g.RevealProblem = false
}

type Room struct {
	Id   string
	Name string

	// Membership, keyed by connection id. PlayerOrder preserves join order.
	Players     map[string]*Player
	PlayerOrder []string

	CreatedAt    time.Time
	LastActivity time.Time
	EmptySince   *time.Time

	Difficulty      string
	InitialHandSize int

	// True while an automatic round advance is pending; selections are
	// rejected for the duration.
	Transitioning bool

	Game            *GameState
	RematchRequests map[int]bool

	Mu sync.RWMutex `json:"-"`
}

// PlayerByNumber returns the member holding the given playerNumber, or nil.
// Caller must hold the room lock.
func (r *Room) PlayerByNumber(n int) *Player {
	for _, connId := range r.PlayerOrder {
		if p := r.Players[connId]; p != nil && p.Number == n {
			return p
		}
	}
	return nil
}

// OtherPlayer returns the member that does not hold the given playerNumber.
// Caller must hold the room lock.
func (r *Room) OtherPlayer(n int) *Player {
	for _, connId := range r.PlayerOrder {
		if p := r.Players[connId]; p != nil && p.Number != n {
			return p
		}
	}
	return nil
}

// Message is the JSON envelope used in both directions on the wire.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Response wraps debug/admin HTTP replies.
type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}
