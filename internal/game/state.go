package game

import (
	"log"
	"math/rand"

	"github.com/williambechard/cardmath-backend/internal"
)

// =============================================================================
// ROUND STATE MACHINE
// =============================================================================

// InitGame deals a fresh game for the room: full 44-card shuffled deck, one
// hand of InitialHandSize per player, all round fields at baseline, both
// members marked in-game. Each call produces a fresh random deal. Returns nil
// if the room does not exist.
func (h *Hub) InitGame(roomId string) *internal.GameState {
	room := h.Room(roomId)
	if room == nil {
		log.Printf("[InitGame] Room %s not found, skipping", roomId)
		return nil
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	n := room.InitialHandSize
	if n < 1 {
		n = 1
	}
	if n > internal.MaxInitialHandSize {
		n = internal.MaxInitialHandSize
	}

	deck := internal.NewShuffledDeck()
	st := internal.NewGameState()
	st.Hands[1] = append([]internal.Card(nil), deck[:n]...)
	st.Hands[2] = append([]internal.Card(nil), deck[n:2*n]...)

	// Fresh deals always animate on the client.
	st.DealComplete = false
	st.AdvanceClients = false

	room.Game = st
	room.RematchRequests = make(map[int]bool)
	for _, p := range room.Players {
		p.Status = internal.StatusInGame
	}
	room.LastActivity = h.clock.Now()

	log.Printf("[InitGame] Room %s: dealt %d cards per hand (difficulty=%s)",
		roomId, n, room.Difficulty)
	return st
}

// SelectCard records a player's selection and, once both sides have selected,
// generates the round's problem. The card id is validated against the
// player's authoritative hand; an unknown id clears the selection. While the
// room is mid-automatic-advance the call is a no-op returning the unchanged
// state, so a new round cannot start while the previous one is closing.
func (h *Hub) SelectCard(roomId string, playerNumber int, cardId string) *internal.GameState {
	room := h.Room(roomId)
	if room == nil {
		return nil
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	st := room.Game
	if st == nil {
		return nil
	}
	if room.Transitioning {
		log.Printf("[SelectCard] Room %s: rejecting selection by player %d, round advance pending",
			roomId, playerNumber)
		return st
	}
	if playerNumber != 1 && playerNumber != 2 {
		return st
	}

	st.Selected[playerNumber] = findCard(st.Hands[playerNumber], cardId)

	if st.Selected[1] != nil && st.Selected[2] != nil {
		a, b := st.Selected[1].Value, st.Selected[2].Value
		st.Problem = &internal.Problem{Operand1: a, Operand2: b}
		st.CorrectAnswer = a * b
		st.AnswerOptions = generateAnswerOptions(a * b)
		st.RoundInProgress = true
		st.ProblemSolved = false
		st.SolvedBy = nil
		st.Answered = map[int]bool{1: false, 2: false}
		st.SubmittedAnswers = map[int]*int{1: nil, 2: nil}
		st.RevealProblem = true
		log.Printf("[SelectCard] Room %s: problem generated %dx%d", roomId, a, b)
	} else {
		// Mask the problem until both sides have selected so no stale
		// round data leaks to observers.
		st.RevealProblem = false
	}
	room.LastActivity = h.clock.Now()
	return st
}

// SubmitAnswer resolves a player's answer for the active round. A no-op when
// no round is in progress or the round is already solved, which prevents
// double-scoring. The raw submitted value is recorded regardless of
// correctness.
func (h *Hub) SubmitAnswer(roomId string, playerNumber int, answer int) *internal.GameState {
	room := h.Room(roomId)
	if room == nil {
		return nil
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	st := room.Game
	if st == nil {
		return nil
	}
	if !st.RoundInProgress || st.ProblemSolved {
		return st
	}
	if playerNumber != 1 && playerNumber != 2 {
		return st
	}

	submitted := answer
	st.SubmittedAnswers[playerNumber] = &submitted
	st.Answered[playerNumber] = true
	room.LastActivity = h.clock.Now()

	if answer == st.CorrectAnswer {
		st.Scores[playerNumber]++
		st.ProblemSolved = true
		solver := playerNumber
		st.SolvedBy = &solver
		h.appendRoundRecord(room.Id, st, &solver)
		log.Printf("[SubmitAnswer] Room %s: player %d solved %d (score=%d)",
			roomId, playerNumber, st.CorrectAnswer, st.Scores[playerNumber])
		return st
	}

	other := 3 - playerNumber
	if st.Answered[other] {
		// Both answered, neither correctly. The round resolves with no
		// solver and no score change.
		st.ProblemSolved = true
		st.SolvedBy = nil
		h.appendRoundRecord(room.Id, st, nil)
		log.Printf("[SubmitAnswer] Room %s: both players wrong, round closed unsolved", roomId)
	}
	return st
}

// appendRoundRecord grows the append-only history and hands the entry to the
// archive. Caller holds the room lock.
func (h *Hub) appendRoundRecord(roomId string, st *internal.GameState, solver *int) {
	rec := internal.RoundRecord{
		CorrectAnswer: st.CorrectAnswer,
		SolvedBy:      solver,
		Timestamp:     h.clock.Now(),
	}
	if st.Problem != nil {
		rec.Operands = [2]int{st.Problem.Operand1, st.Problem.Operand2}
	}
	st.RoundHistory = append(st.RoundHistory, rec)
	h.recordRound(roomId, rec)
}

// AdvanceRound closes the current round: each player's selected card leaves
// their hand, the game ends once either hand is empty (winner by strict score
// comparison, tie means no winner), and all round fields reset. dealComplete
// and advanceClients are raised so clients skip the dealing animation.
// An unresolved in-progress round cannot be advanced past; the call is a
// no-op returning the unchanged state.
func (h *Hub) AdvanceRound(roomId string) *internal.GameState {
	room := h.Room(roomId)
	if room == nil {
		return nil
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()
	st := room.Game
	if st == nil {
		return nil
	}
	if st.RoundInProgress && !st.ProblemSolved {
		log.Printf("[AdvanceRound] Room %s: round still unresolved, ignoring advance", roomId)
		return st
	}

	for pn := 1; pn <= 2; pn++ {
		if sel := st.Selected[pn]; sel != nil {
			st.Hands[pn] = removeCard(st.Hands[pn], sel.Id)
		}
	}

	st.GameOver = len(st.Hands[1]) == 0 || len(st.Hands[2]) == 0
	if st.GameOver {
		switch {
		case st.Scores[1] > st.Scores[2]:
			winner := "player1"
			st.Winner = &winner
		case st.Scores[2] > st.Scores[1]:
			winner := "player2"
			st.Winner = &winner
		default:
			st.Winner = nil
		}
		log.Printf("[AdvanceRound] Room %s: game over, winner=%v", roomId, st.Winner)
	}

	st.ResetRound()
	st.DealComplete = true
	st.AdvanceClients = true
	room.LastActivity = h.clock.Now()
	return st
}

// ResetGame discards the current game state wholesale and deals again. The
// fresh state keeps dealComplete and advanceClients low so clients run a full
// dealing animation. Any pending rematch requests are cleared.
func (h *Hub) ResetGame(roomId string) *internal.GameState {
	log.Printf("[ResetGame] Room %s: full reset requested", roomId)
	return h.InitGame(roomId)
}

// StartGame validates the start request and deals the first game. Only the
// room creator (player 1) may start, and both seats must be filled.
func (h *Hub) StartGame(roomId, connId string) (*internal.GameState, error) {
	room := h.Room(roomId)
	if room == nil {
		return nil, ErrRoomNotFound
	}

	room.Mu.RLock()
	caller, inRoom := room.Players[connId]
	count := len(room.Players)
	room.Mu.RUnlock()

	if !inRoom {
		return nil, ErrNotInRoom
	}
	if caller.Number != 1 {
		return nil, ErrNotAuthorized
	}
	if count < internal.MaxPlayersPerRoom {
		return nil, ErrInsufficientPlayers
	}

	st := h.InitGame(roomId)
	if st == nil {
		return nil, ErrInternal
	}
	return st, nil
}

func findCard(hand []internal.Card, cardId string) *internal.Card {
	for i := range hand {
		if hand[i].Id == cardId {
			return &hand[i]
		}
	}
	return nil
}

func removeCard(hand []internal.Card, cardId string) []internal.Card {
	out := hand[:0]
	for _, c := range hand {
		if c.Id != cardId {
			out = append(out, c)
		}
	}
	return out
}

// generateAnswerOptions builds 4 distinct options containing the correct
// answer. Wrong options offset the correct answer by a random amount in
// [1,20] with random sign, clamped to a minimum of 1, deduplicated until 4
// distinct values exist, then order-randomized.
func generateAnswerOptions(correct int) []int {
	seen := map[int]bool{correct: true}
	options := []int{correct}
	for len(options) < 4 {
		offset := rand.Intn(20) + 1
		if rand.Intn(2) == 0 {
			offset = -offset
		}
		candidate := correct + offset
		if candidate < 1 {
			candidate = 1
		}
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		options = append(options, candidate)
	}
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
