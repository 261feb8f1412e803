package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"battleship/internal/game"
	"battleship/internal/session"
)

// Server is the HTTP server.
type Server struct {
	mux     *http.ServeMux
	manager *session.Manager
}

// New creates a server with all routes.
func New(manager *session.Manager) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		manager: manager,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/game/create", s.handleCreate)
	s.mux.HandleFunc("POST /api/game/join", s.handleJoin)
	s.mux.HandleFunc("POST /api/game/place-ships", s.handlePlaceShips)
	s.mux.HandleFunc("POST /api/game/attack", s.handleAttack)
	s.mux.HandleFunc("GET /api/game/state/{gameID}/{playerID}", s.handleState)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type createRequest struct {
	PlayerName string `json:"playerName"`
}

type createResponse struct {
	GameCode     string `json:"gameCode"`
	GameID       string `json:"gameId"`
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if req.PlayerName == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "player name is required"})
		return
	}

	sess, player, err := s.manager.Create(req.PlayerName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{
		GameCode:     sess.Code,
		GameID:       sess.ID,
		PlayerID:     player.ID,
		PlayerNumber: player.Number,
	})
}

type joinRequest struct {
	GameCode   string `json:"gameCode"`
	PlayerName string `json:"playerName"`
}

type joinResponse struct {
	GameID       string `json:"gameId"`
	GameCode     string `json:"gameCode"`
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
	OpponentName string `json:"opponentName"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	req.GameCode = strings.ToUpper(strings.TrimSpace(req.GameCode))
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if req.GameCode == "" || req.PlayerName == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "gameCode and playerName required"})
		return
	}

	sess, player, err := s.manager.Join(req.GameCode, req.PlayerName)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := joinResponse{
		GameID:       sess.ID,
		GameCode:     sess.Code,
		PlayerID:     player.ID,
		PlayerNumber: player.Number,
	}
	if view, err := sess.StateFor(player.ID); err == nil {
		resp.OpponentName = view.OpponentName
	}
	writeJSON(w, http.StatusOK, resp)
}

type coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type shipPayload struct {
	Type        string `json:"type"`
	Position    coord  `json:"position"`
	Orientation string `json:"orientation"`
}

type placeShipsRequest struct {
	GameID   string        `json:"gameId"`
	PlayerID string        `json:"playerId"`
	Ships    []shipPayload `json:"ships"`
}

type placeShipsResponse struct {
	Ready            bool           `json:"ready"`
	BothPlayersReady bool           `json:"bothPlayersReady"`
	GameStatus       session.Status `json:"gameStatus"`
}

func (s *Server) handlePlaceShips(w http.ResponseWriter, r *http.Request) {
	var req placeShipsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if req.GameID == "" || req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "gameId and playerId required"})
		return
	}
	if req.Ships == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "ships array is required"})
		return
	}

	placements := make([]game.Placement, 0, len(req.Ships))
	for _, ship := range req.Ships {
		placements = append(placements, game.Placement{
			ShipID:      ship.Type,
			Row:         ship.Position.Row,
			Col:         ship.Position.Col,
			Orientation: game.Orientation(ship.Orientation),
		})
	}

	res, err := s.manager.PlaceShips(req.GameID, req.PlayerID, placements)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, placeShipsResponse{
		Ready:            res.Ready,
		BothPlayersReady: res.BothReady,
		GameStatus:       res.Status,
	})
}

type attackRequest struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Target   coord  `json:"target"`
}

type attackResponse struct {
	Result   game.Result `json:"result"`
	SunkShip string      `json:"sunkShip,omitempty"`
	GameOver bool        `json:"gameOver"`
	Winner   int         `json:"winner,omitempty"`
	NextTurn int         `json:"nextTurn"`
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req attackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if req.GameID == "" || req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "gameId and playerId required"})
		return
	}

	res, err := s.manager.Attack(req.GameID, req.PlayerID, req.Target.Row, req.Target.Col)
	if err != nil {
		if errors.Is(err, session.ErrAlreadyAttacked) {
			// Repeat target: no turn consumed, caller should pick another cell.
			writeJSON(w, http.StatusConflict, errorBody{
				Error:  err.Error(),
				Result: string(game.ResultAlreadyAttacked),
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attackResponse{
		Result:   res.Result,
		SunkShip: res.SunkShip,
		GameOver: res.GameOver,
		Winner:   res.Winner,
		NextTurn: res.NextTurn,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	playerID := r.PathValue("playerID")

	view, err := s.manager.State(gameID, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type errorBody struct {
	Error  string `json:"error"`
	Result string `json:"result,omitempty"`
}

// writeError maps domain error kinds to HTTP statuses. Internal errors are
// logged and reach the caller as a generic message.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, session.ErrPlayerNotFound):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, session.ErrOutOfBounds),
		errors.Is(err, session.ErrInvalidPlacement):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, session.ErrFull),
		errors.Is(err, session.ErrWrongStatus),
		errors.Is(err, session.ErrNotYourTurn),
		errors.Is(err, session.ErrAlreadyAttacked):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
