package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"battleship/internal/game"
)

// Status represents the session lifecycle. Transitions only move forward:
// waiting -> setup -> playing -> finished.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusSetup    Status = "setup"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Player is one of the two slots in a session.
type Player struct {
	ID        string    `json:"playerId"`
	Name      string    `json:"playerName"`
	Number    int       `json:"playerNumber"` // 1 or 2
	Ready     bool      `json:"ready"`
	Connected bool      `json:"isConnected"`
	LastSeen  time.Time `json:"lastSeen"`
}

// Move is one append-only log entry. Immutable once recorded.
type Move struct {
	TurnNumber   int         `json:"turnNumber"`
	PlayerNumber int         `json:"playerNumber"`
	Row          int         `json:"row"`
	Col          int         `json:"col"`
	Result       game.Result `json:"result"`
	SunkShip     string      `json:"sunkShip,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// Session is one game room: two player slots, a board per player, the turn
// pointer and the move log. All mutating transitions hold the session mutex so
// concurrent requests for the same game serialize into single
// read-modify-write steps.
type Session struct {
	mu sync.RWMutex

	ID          string              `json:"id"`
	Code        string              `json:"code"`
	Status      Status              `json:"status"`
	Players     []*Player           `json:"players"`
	Boards      map[int]*game.Board `json:"boards"` // playerNumber -> that player's own board
	CurrentTurn int                 `json:"currentTurn"`
	TurnCounter int                 `json:"turnCounter"`
	Moves       []Move              `json:"moves"`
	Winner      int                 `json:"winner"` // 0 until finished
	CreatedAt   time.Time           `json:"createdAt"`
	LastUpdated time.Time           `json:"lastUpdated"`
}

// NewSession creates a session in the waiting state with player 1 seated.
func NewSession(id, code, playerID, playerName string) *Session {
	now := time.Now()
	return &Session{
		ID:     id,
		Code:   code,
		Status: StatusWaiting,
		Players: []*Player{{
			ID:        playerID,
			Name:      playerName,
			Number:    1,
			Connected: true,
			LastSeen:  now,
		}},
		Boards:      make(map[int]*game.Board),
		CurrentTurn: 1,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// Join seats player 2 and moves the session to setup.
func (s *Session) Join(playerID, playerName string) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Players) >= 2 {
		return nil, ErrFull
	}
	if s.Status != StatusWaiting {
		return nil, fmt.Errorf("%w: cannot join, game status is %q", ErrWrongStatus, s.Status)
	}
	p := &Player{
		ID:        playerID,
		Name:      playerName,
		Number:    2,
		Connected: true,
		LastSeen:  time.Now(),
	}
	s.Players = append(s.Players, p)
	s.Status = StatusSetup
	s.touch()
	return p, nil
}

// PlaceResult reports the outcome of a ship placement.
type PlaceResult struct {
	Ready     bool
	BothReady bool
	Status    Status
}

// PlaceShips validates and applies a player's full fleet as one atomic batch.
// Any invalid placement rejects the whole batch; the board stays untouched.
// When both players are ready the session starts: playing, player 1 to move.
func (s *Session) PlaceShips(playerID string, placements []game.Placement) (PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerByID(playerID)
	if p == nil {
		return PlaceResult{}, ErrPlayerNotFound
	}
	if s.Status != StatusSetup {
		return PlaceResult{}, fmt.Errorf("%w: cannot place ships, game status is %q", ErrWrongStatus, s.Status)
	}
	if len(placements) != len(game.Catalog) {
		return PlaceResult{}, fmt.Errorf("%w: expected %d ships, received %d", ErrInvalidPlacement, len(game.Catalog), len(placements))
	}
	seen := make(map[string]bool, len(placements))
	for _, pl := range placements {
		if _, ok := game.SizeOf(pl.ShipID); !ok {
			return PlaceResult{}, fmt.Errorf("%w: unknown ship type %q", ErrInvalidPlacement, pl.ShipID)
		}
		if seen[pl.ShipID] {
			return PlaceResult{}, fmt.Errorf("%w: duplicate ship type %q", ErrInvalidPlacement, pl.ShipID)
		}
		seen[pl.ShipID] = true
	}

	// Apply to a fresh board; only install it if the whole batch fits.
	board := game.NewBoard()
	for _, pl := range placements {
		if !board.Place(pl.ShipID, pl.Row, pl.Col, pl.Orientation) {
			return PlaceResult{}, fmt.Errorf("%w: ship %q does not fit at (%d,%d) %s",
				ErrInvalidPlacement, pl.ShipID, pl.Row, pl.Col, pl.Orientation)
		}
	}
	s.Boards[p.Number] = board
	p.Ready = true

	bothReady := len(s.Players) == 2 && s.Players[0].Ready && s.Players[1].Ready
	if bothReady {
		s.Status = StatusPlaying
		s.CurrentTurn = 1
		s.TurnCounter = 0
	}
	s.touch()
	return PlaceResult{Ready: true, BothReady: bothReady, Status: s.Status}, nil
}

// AttackResult reports one resolved attack.
type AttackResult struct {
	Result   game.Result
	SunkShip string
	GameOver bool
	Winner   int
	NextTurn int
}

// Attack resolves an attack against the opponent's board. A repeat target
// returns ErrAlreadyAttacked and consumes nothing. A resolved attack appends a
// move, bumps the turn counter and either passes the turn or, when the last
// opposing ship sinks, finishes the game with the attacker as winner.
func (s *Session) Attack(playerID string, row, col int) (AttackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.playerByID(playerID)
	if p == nil {
		return AttackResult{}, ErrPlayerNotFound
	}
	if s.Status != StatusPlaying {
		return AttackResult{}, fmt.Errorf("%w: cannot attack, game status is %q", ErrWrongStatus, s.Status)
	}
	if s.CurrentTurn != p.Number {
		return AttackResult{}, ErrNotYourTurn
	}
	if !game.InBounds(row, col) {
		return AttackResult{}, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, row, col)
	}

	defender := 3 - p.Number
	board := s.Boards[defender]
	if board == nil || len(board.Ships) == 0 {
		return AttackResult{}, fmt.Errorf("%w: opponent has not placed ships", ErrWrongStatus)
	}
	if board.WasAttacked(row, col) {
		return AttackResult{Result: game.ResultAlreadyAttacked, NextTurn: s.CurrentTurn}, ErrAlreadyAttacked
	}

	outcome := board.ResolveAttack(row, col)
	s.Moves = append(s.Moves, Move{
		TurnNumber:   s.TurnCounter + 1,
		PlayerNumber: p.Number,
		Row:          row,
		Col:          col,
		Result:       outcome.Result,
		SunkShip:     outcome.SunkShipID,
		Timestamp:    time.Now(),
	})
	s.TurnCounter++

	res := AttackResult{Result: outcome.Result, SunkShip: outcome.SunkShipID}
	if outcome.Result == game.ResultSunk && board.AllSunk() {
		s.Status = StatusFinished
		s.Winner = p.Number
		res.GameOver = true
		res.Winner = p.Number
	} else {
		s.CurrentTurn = defender
	}
	res.NextTurn = s.CurrentTurn
	s.touch()
	return res, nil
}

// Touch refreshes a player's liveness markers. Called on every state poll.
func (s *Session) Touch(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.playerByID(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	p.LastSeen = time.Now()
	p.Connected = true
	return nil
}

func (s *Session) playerByID(playerID string) *Player {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) opponentOf(number int) *Player {
	for _, p := range s.Players {
		if p.Number != number {
			return p
		}
	}
	return nil
}

// touch must be called with the lock held.
func (s *Session) touch() {
	s.LastUpdated = time.Now()
}

// CurrentStatus returns the status under the read lock.
func (s *Session) CurrentStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

func (s *Session) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type alias Session
	return json.Marshal((*alias)(s))
}

func (s *Session) UnmarshalJSON(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	type alias Session
	return json.Unmarshal(data, (*alias)(s))
}
