package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"battleship/internal/game"
	"battleship/internal/session"
)

// viewServer serves a fixed sequence of state responses, repeating the last
// one once the sequence is exhausted.
func viewServer(t *testing.T, views ...session.View) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(views) {
			n = len(views) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views[n])
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func testPoller(ts *httptest.Server) *Poller {
	p := NewPoller(New(ts.URL), "game-1", "player-1")
	p.Interval = 5 * time.Millisecond
	return p
}

func TestPollerAppliesMoves(t *testing.T) {
	mid := session.View{
		GameStatus: session.StatusPlaying,
		YourMoves: []session.MoveView{
			{Row: 0, Col: 0, Result: game.ResultHit, TurnNumber: 1},
		},
		OpponentMoves: []session.MoveView{
			{Row: 9, Col: 9, Result: game.ResultMiss, TurnNumber: 2},
		},
	}
	final := mid
	final.YourMoves = append([]session.MoveView{}, mid.YourMoves...)
	final.YourMoves = append(final.YourMoves, session.MoveView{Row: 0, Col: 1, Result: game.ResultMiss, TurnNumber: 3})
	final.GameOver = true

	ts, _ := viewServer(t, mid, final)
	p := testPoller(ts)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := p.YourShots[game.Cell{Row: 0, Col: 0}]; got != game.ResultHit {
		t.Fatalf("expected hit at (0,0), got %q", got)
	}
	if got := p.YourShots[game.Cell{Row: 0, Col: 1}]; got != game.ResultMiss {
		t.Fatalf("expected miss at (0,1), got %q", got)
	}
	if got := p.OpponentShots[game.Cell{Row: 9, Col: 9}]; got != game.ResultMiss {
		t.Fatalf("expected opponent miss at (9,9), got %q", got)
	}
	if len(p.YourShots) != 2 || len(p.OpponentShots) != 1 {
		t.Fatalf("unexpected mirror sizes: %d/%d", len(p.YourShots), len(p.OpponentShots))
	}
}

func TestPollerReplayIdempotent(t *testing.T) {
	v := session.View{
		GameStatus: session.StatusPlaying,
		YourMoves: []session.MoveView{
			{Row: 3, Col: 4, Result: game.ResultHit, TurnNumber: 1},
		},
	}

	p := NewPoller(New("http://unused"), "game-1", "player-1")
	// The same snapshot arriving repeatedly must not double-apply.
	p.apply(v)
	p.apply(v)
	p.apply(v)

	if p.yourApplied != 1 {
		t.Fatalf("expected cursor 1, got %d", p.yourApplied)
	}
	if len(p.YourShots) != 1 {
		t.Fatalf("expected 1 mirrored shot, got %d", len(p.YourShots))
	}
}

func TestPollerStopsOnGameOver(t *testing.T) {
	over := session.View{GameStatus: session.StatusFinished, GameOver: true, Winner: 2}
	ts, calls := viewServer(t, over)
	p := testPoller(ts)

	var seen session.View
	p.OnState = func(v session.View) { seen = v }

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly 1 poll, got %d", calls.Load())
	}
	if !seen.GameOver || seen.Winner != 2 {
		t.Fatalf("expected final view via OnState, got %+v", seen)
	}
}

func TestPollerHaltsWhenGameGone(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"game not found"}`, http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	p := testPoller(ts)
	err := p.Run(context.Background())
	if !errors.Is(err, ErrGameGone) {
		t.Fatalf("expected ErrGameGone, got %v", err)
	}
}

func TestPollerRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(session.View{GameStatus: session.StatusFinished, GameOver: true})
	}))
	t.Cleanup(ts.Close)

	p := testPoller(ts)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("expected recovery after transient error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 polls, got %d", calls.Load())
	}
}

func TestPollerContextCancel(t *testing.T) {
	playing := session.View{GameStatus: session.StatusPlaying}
	ts, _ := viewServer(t, playing)
	p := testPoller(ts)

	ctx, cancel := context.WithCancel(context.Background())
	p.OnState = func(session.View) { cancel() }

	err := p.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
