package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"battleship/internal/game"
	"battleship/internal/session"
	"battleship/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts  *httptest.Server
	mgr *session.Manager
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mgr := session.NewManager(store)
	ts := httptest.NewServer(New(mgr))
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, mgr: mgr}
}

// --- REST API helpers ---

// postJSON marshals v and POSTs it, decoding the response body into out when
// out is non-nil. Returns the response status code.
func postJSON(t *testing.T, url string, v any, out any) int {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func createViaAPI(t *testing.T, env *testEnv, name string) createResponse {
	t.Helper()
	var created createResponse
	status := postJSON(t, env.ts.URL+"/api/game/create", createRequest{PlayerName: name}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", status)
	}
	return created
}

func joinViaAPI(t *testing.T, env *testEnv, code, name string) joinResponse {
	t.Helper()
	var joined joinResponse
	status := postJSON(t, env.ts.URL+"/api/game/join", joinRequest{GameCode: code, PlayerName: name}, &joined)
	if status != http.StatusOK {
		t.Fatalf("join: expected 200, got %d", status)
	}
	return joined
}

// standardFleet lays each ship on its own even row starting at column 0.
func standardFleet() []shipPayload {
	ships := make([]shipPayload, 0, len(game.Catalog))
	for i, st := range game.Catalog {
		ships = append(ships, shipPayload{
			Type:        st.ID,
			Position:    coord{Row: i * 2, Col: 0},
			Orientation: string(game.Horizontal),
		})
	}
	return ships
}

func placeFleetViaAPI(t *testing.T, env *testEnv, gameID, playerID string) placeShipsResponse {
	t.Helper()
	var placed placeShipsResponse
	status := postJSON(t, env.ts.URL+"/api/game/place-ships", placeShipsRequest{
		GameID:   gameID,
		PlayerID: playerID,
		Ships:    standardFleet(),
	}, &placed)
	if status != http.StatusOK {
		t.Fatalf("place-ships: expected 200, got %d", status)
	}
	return placed
}

// startedGameViaAPI drives both players through create, join, and placement,
// returning the game id and both player ids. Player 1 holds the first turn.
func startedGameViaAPI(t *testing.T, env *testEnv) (gameID, p1, p2 string) {
	t.Helper()
	created := createViaAPI(t, env, "alice")
	joined := joinViaAPI(t, env, created.GameCode, "bob")
	placeFleetViaAPI(t, env, created.GameID, created.PlayerID)
	placed := placeFleetViaAPI(t, env, created.GameID, joined.PlayerID)
	if !placed.BothPlayersReady {
		t.Fatal("expected both players ready after second placement")
	}
	return created.GameID, created.PlayerID, joined.PlayerID
}

func attackViaAPI(t *testing.T, env *testEnv, gameID, playerID string, row, col int) (attackResponse, int) {
	t.Helper()
	body, err := json.Marshal(attackRequest{GameID: gameID, PlayerID: playerID, Target: coord{Row: row, Col: col}})
	if err != nil {
		t.Fatalf("marshal attack: %v", err)
	}
	resp, err := http.Post(env.ts.URL+"/api/game/attack", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST attack: %v", err)
	}
	defer resp.Body.Close()
	var res attackResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			t.Fatalf("decode attack response: %v", err)
		}
	}
	return res, resp.StatusCode
}

func stateViaAPI(t *testing.T, env *testEnv, gameID, playerID string) (session.View, int) {
	t.Helper()
	var view session.View
	resp, err := http.Get(env.ts.URL + "/api/game/state/" + gameID + "/" + playerID)
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
			t.Fatalf("decode state: %v", err)
		}
	}
	return view, resp.StatusCode
}
