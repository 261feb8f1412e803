package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"battleship/internal/game"
	"battleship/internal/session"
)

// ErrGameGone marks a 404 from the server: the game no longer exists and the
// caller should stop polling and return to matchmaking.
var ErrGameGone = errors.New("game no longer exists")

// Client is a typed HTTP client for the game API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

// CreateResult is the server's answer to a create request.
type CreateResult struct {
	GameCode     string `json:"gameCode"`
	GameID       string `json:"gameId"`
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
}

// JoinResult is the server's answer to a join request.
type JoinResult struct {
	GameID       string `json:"gameId"`
	GameCode     string `json:"gameCode"`
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
	OpponentName string `json:"opponentName"`
}

// AttackResult is the server's answer to an attack.
type AttackResult struct {
	Result   game.Result `json:"result"`
	SunkShip string      `json:"sunkShip"`
	GameOver bool        `json:"gameOver"`
	Winner   int         `json:"winner"`
	NextTurn int         `json:"nextTurn"`
}

// CreateGame opens a new game room.
func (c *Client) CreateGame(ctx context.Context, playerName string) (CreateResult, error) {
	var out CreateResult
	err := c.post(ctx, "/api/game/create", map[string]any{"playerName": playerName}, &out)
	return out, err
}

// JoinGame joins an existing room by code.
func (c *Client) JoinGame(ctx context.Context, gameCode, playerName string) (JoinResult, error) {
	var out JoinResult
	err := c.post(ctx, "/api/game/join", map[string]any{
		"gameCode":   gameCode,
		"playerName": playerName,
	}, &out)
	return out, err
}

// PlaceShips submits the full fleet for the setup phase.
func (c *Client) PlaceShips(ctx context.Context, gameID, playerID string, placements []game.Placement) error {
	ships := make([]map[string]any, 0, len(placements))
	for _, p := range placements {
		ships = append(ships, map[string]any{
			"type":        p.ShipID,
			"position":    map[string]int{"row": p.Row, "col": p.Col},
			"orientation": string(p.Orientation),
		})
	}
	return c.post(ctx, "/api/game/place-ships", map[string]any{
		"gameId":   gameID,
		"playerId": playerID,
		"ships":    ships,
	}, nil)
}

// Attack fires at one cell of the opponent's board.
func (c *Client) Attack(ctx context.Context, gameID, playerID string, row, col int) (AttackResult, error) {
	var out AttackResult
	err := c.post(ctx, "/api/game/attack", map[string]any{
		"gameId":   gameID,
		"playerId": playerID,
		"target":   map[string]int{"row": row, "col": col},
	}, &out)
	return out, err
}

// State fetches the player-scoped projection.
func (c *Client) State(ctx context.Context, gameID, playerID string) (session.View, error) {
	var out session.View
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/api/game/state/"+gameID+"/"+playerID, nil)
	if err != nil {
		return out, err
	}
	err = c.do(req, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrGameGone
	}
	if resp.StatusCode >= 400 {
		var eb struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Error != "" {
			return fmt.Errorf("server: %s", eb.Error)
		}
		return fmt.Errorf("server: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
