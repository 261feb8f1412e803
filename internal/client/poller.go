package client

import (
	"context"
	"errors"
	"log"
	"time"

	"battleship/internal/game"
	"battleship/internal/session"
)

// DefaultInterval matches the roughly two-second cadence the UI polls at.
const DefaultInterval = 2 * time.Second

// Poller repeatedly fetches the player-scoped state view and reconciles the
// server's move log into local board mirrors. The server stays authoritative:
// the mirrors only replay reported results, they never classify shots.
type Poller struct {
	Client   *Client
	GameID   string
	PlayerID string
	Interval time.Duration

	// OnState, if set, runs after each successful fetch and reconcile.
	OnState func(session.View)

	// Local mirrors: shots you fired at the opponent and shots that landed on
	// your own board, keyed by cell with the server-reported result.
	YourShots     map[game.Cell]game.Result
	OpponentShots map[game.Cell]game.Result

	yourApplied int
	oppApplied  int
}

// NewPoller creates a poller for one seat in a game.
func NewPoller(c *Client, gameID, playerID string) *Poller {
	return &Poller{
		Client:        c,
		GameID:        gameID,
		PlayerID:      playerID,
		Interval:      DefaultInterval,
		YourShots:     make(map[game.Cell]game.Result),
		OpponentShots: make(map[game.Cell]game.Result),
	}
}

// Run polls until the context is cancelled, the game finishes, or the server
// reports the game gone. A 404 halts polling and returns ErrGameGone rather
// than looping forever.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		view, err := p.Client.State(ctx, p.GameID, p.PlayerID)
		switch {
		case errors.Is(err, ErrGameGone):
			return ErrGameGone
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("poll game %s: %v", p.GameID, err)
		default:
			p.apply(view)
			if p.OnState != nil {
				p.OnState(view)
			}
			if view.GameOver {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// apply replays only moves the mirrors have not seen yet. Move logs are
// append-only, so the entry count is a safe replay cursor.
func (p *Poller) apply(v session.View) {
	for _, m := range v.YourMoves[min(p.yourApplied, len(v.YourMoves)):] {
		p.YourShots[game.Cell{Row: m.Row, Col: m.Col}] = m.Result
	}
	p.yourApplied = len(v.YourMoves)

	for _, m := range v.OpponentMoves[min(p.oppApplied, len(v.OpponentMoves)):] {
		p.OpponentShots[game.Cell{Row: m.Row, Col: m.Col}] = m.Result
	}
	p.oppApplied = len(v.OpponentMoves)
}
