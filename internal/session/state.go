package session

import (
	"time"

	"battleship/internal/game"
)

// MoveView is one move as shown to either player. Ship identity appears only
// through the result of the shot itself.
type MoveView struct {
	Row        int         `json:"row"`
	Col        int         `json:"col"`
	Result     game.Result `json:"result"`
	SunkShip   string      `json:"sunkShip,omitempty"`
	TurnNumber int         `json:"turnNumber"`
}

// ShipView is one of the requester's own placed ships.
type ShipView struct {
	ShipID      string           `json:"shipId"`
	Cells       []game.Cell      `json:"cells"`
	Orientation game.Orientation `json:"orientation"`
	Hits        int              `json:"hits"`
	Sunk        bool             `json:"sunk"`
}

// Statistics summarizes shot outcomes for both sides.
type Statistics struct {
	YourHits           int      `json:"yourHits"`
	YourMisses         int      `json:"yourMisses"`
	YourSunkShips      []string `json:"yourSunkShips"`
	YourTotalShots     int      `json:"yourTotalShots"`
	OpponentHits       int      `json:"opponentHits"`
	OpponentMisses     int      `json:"opponentMisses"`
	OpponentSunkShips  []string `json:"opponentSunkShips"`
	OpponentTotalShots int      `json:"opponentTotalShots"`
}

// View is the player-scoped projection returned on every poll. It never
// contains the opponent's unrevealed ship positions.
type View struct {
	GameCode     string `json:"gameCode"`
	GameStatus   Status `json:"gameStatus"`
	PlayerNumber int    `json:"playerNumber"`
	PlayerName   string `json:"playerName"`

	OpponentJoined      bool   `json:"opponentJoined"`
	OpponentName        string `json:"opponentName,omitempty"`
	OpponentReady       bool   `json:"opponentReady"`
	OpponentConnected   bool   `json:"opponentConnected"`
	OpponentShipsPlaced bool   `json:"opponentShipsPlaced"`

	CurrentTurn int  `json:"currentTurn"`
	IsYourTurn  bool `json:"isYourTurn"`
	TurnCounter int  `json:"turnCounter"`

	YourShipsPlaced bool       `json:"yourShipsPlaced"`
	YourReady       bool       `json:"yourReady"`
	YourShips       []ShipView `json:"yourShips"`

	YourMoves     []MoveView `json:"yourMoves"`
	OpponentMoves []MoveView `json:"opponentMoves"`

	Statistics Statistics `json:"statistics"`

	GameOver bool `json:"gameOver"`
	Winner   int  `json:"winner,omitempty"`
	YouWon   bool `json:"youWon"`

	GameCreatedAt time.Time  `json:"gameCreatedAt"`
	LastMoveAt    *time.Time `json:"lastMoveAt,omitempty"`
}

// StateFor builds the projection for one player.
func (s *Session) StateFor(playerID string) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.playerByID(playerID)
	if p == nil {
		return View{}, ErrPlayerNotFound
	}
	opp := s.opponentOf(p.Number)

	v := View{
		GameCode:      s.Code,
		GameStatus:    s.Status,
		PlayerNumber:  p.Number,
		PlayerName:    p.Name,
		CurrentTurn:   s.CurrentTurn,
		IsYourTurn:    s.Status == StatusPlaying && s.CurrentTurn == p.Number,
		TurnCounter:   s.TurnCounter,
		YourReady:     p.Ready,
		GameOver:      s.Status == StatusFinished,
		Winner:        s.Winner,
		YouWon:        s.Winner != 0 && s.Winner == p.Number,
		GameCreatedAt: s.CreatedAt,
	}

	if opp != nil {
		v.OpponentJoined = true
		v.OpponentName = opp.Name
		v.OpponentReady = opp.Ready
		v.OpponentConnected = opp.Connected
		if b := s.Boards[opp.Number]; b != nil {
			v.OpponentShipsPlaced = len(b.Ships) == len(game.Catalog)
		}
	}

	if b := s.Boards[p.Number]; b != nil {
		v.YourShipsPlaced = len(b.Ships) == len(game.Catalog)
		v.YourShips = make([]ShipView, 0, len(b.Ships))
		for _, ship := range b.Ships {
			v.YourShips = append(v.YourShips, ShipView{
				ShipID:      ship.ShipID,
				Cells:       ship.Cells,
				Orientation: ship.Orientation,
				Hits:        ship.Hits,
				Sunk:        ship.Sunk(),
			})
		}
	}

	v.YourMoves = make([]MoveView, 0)
	v.OpponentMoves = make([]MoveView, 0)
	for _, m := range s.Moves {
		mv := MoveView{
			Row:        m.Row,
			Col:        m.Col,
			Result:     m.Result,
			SunkShip:   m.SunkShip,
			TurnNumber: m.TurnNumber,
		}
		if m.PlayerNumber == p.Number {
			v.YourMoves = append(v.YourMoves, mv)
		} else {
			v.OpponentMoves = append(v.OpponentMoves, mv)
		}
	}
	v.Statistics = buildStatistics(v.YourMoves, v.OpponentMoves)

	if len(s.Moves) > 0 {
		last := s.Moves[len(s.Moves)-1].Timestamp
		v.LastMoveAt = &last
	}
	return v, nil
}

func buildStatistics(yours, theirs []MoveView) Statistics {
	st := Statistics{
		YourSunkShips:      []string{},
		OpponentSunkShips:  []string{},
		YourTotalShots:     len(yours),
		OpponentTotalShots: len(theirs),
	}
	for _, m := range yours {
		switch m.Result {
		case game.ResultHit, game.ResultSunk:
			st.YourHits++
		case game.ResultMiss:
			st.YourMisses++
		}
		if m.SunkShip != "" {
			st.YourSunkShips = append(st.YourSunkShips, m.SunkShip)
		}
	}
	for _, m := range theirs {
		switch m.Result {
		case game.ResultHit, game.ResultSunk:
			st.OpponentHits++
		case game.ResultMiss:
			st.OpponentMisses++
		}
		if m.SunkShip != "" {
			st.OpponentSunkShips = append(st.OpponentSunkShips, m.SunkShip)
		}
	}
	return st
}
