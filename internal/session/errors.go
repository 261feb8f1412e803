package session

import "errors"

// Error kinds the HTTP boundary distinguishes with errors.Is. Transitions wrap
// these with fmt.Errorf("%w: ...") to add detail without losing the kind.
var (
	// ErrNotFound: unknown game id or room code.
	ErrNotFound = errors.New("game not found")
	// ErrPlayerNotFound: the player id is not part of the game.
	ErrPlayerNotFound = errors.New("player not found in this game")
	// ErrWrongStatus: operation attempted outside the status that allows it.
	ErrWrongStatus = errors.New("operation not allowed in current game status")
	// ErrFull: joining a game that already has two players.
	ErrFull = errors.New("game is already full")
	// ErrNotYourTurn: attack from the player whose turn it is not.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrOutOfBounds: target coordinates outside the 10x10 grid.
	ErrOutOfBounds = errors.New("target must be within the 10x10 board")
	// ErrInvalidPlacement: placement batch rejected; nothing was applied.
	ErrInvalidPlacement = errors.New("invalid ship placement")
	// ErrAlreadyAttacked: repeat target. No turn consumed, no move recorded.
	ErrAlreadyAttacked = errors.New("this cell has already been attacked")
	// ErrCodeExhausted: unique room code generation gave up.
	ErrCodeExhausted = errors.New("failed to generate a unique game code")
)
