package session

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"battleship/internal/game"
	"battleship/internal/storage"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeAttempts = 10
)

// Manager owns all active sessions and is the only component that creates or
// mutates them. Every mutating gateway call persists the session snapshot so a
// restart can restore in-flight games.
type Manager struct {
	mu     sync.RWMutex
	byID   map[string]*Session
	byCode map[string]*Session
	store  *storage.Store
}

// NewManager creates a session manager backed by the given store.
func NewManager(store *storage.Store) *Manager {
	return &Manager{
		byID:   make(map[string]*Session),
		byCode: make(map[string]*Session),
		store:  store,
	}
}

// Create allocates a new game with a fresh room code and seats player 1.
func (m *Manager) Create(playerName string) (*Session, *Player, error) {
	code, err := m.uniqueCode()
	if err != nil {
		return nil, nil, err
	}
	id := uuid.NewString()
	playerID := uuid.NewString()

	if err := m.store.CreateGame(id, code); err != nil {
		return nil, nil, fmt.Errorf("persist game: %w", err)
	}
	s := NewSession(id, code, playerID, playerName)

	m.mu.Lock()
	m.byID[id] = s
	m.byCode[code] = s
	m.mu.Unlock()

	m.persist(s)
	log.Printf("game %s created by %s", code, playerName)
	return s, s.Players[0], nil
}

// Join seats player 2 in the game with the given room code.
func (m *Manager) Join(code, playerName string) (*Session, *Player, error) {
	s, ok := m.getByCode(code)
	if !ok {
		return nil, nil, fmt.Errorf("%w: code %q", ErrNotFound, code)
	}
	p, err := s.Join(uuid.NewString(), playerName)
	if err != nil {
		return nil, nil, err
	}
	m.persist(s)
	log.Printf("player %s joined game %s", playerName, code)
	return s, p, nil
}

// PlaceShips applies a player's fleet to their board in the given game.
func (m *Manager) PlaceShips(gameID, playerID string, placements []game.Placement) (PlaceResult, error) {
	s, ok := m.getByID(gameID)
	if !ok {
		return PlaceResult{}, fmt.Errorf("%w: id %q", ErrNotFound, gameID)
	}
	res, err := s.PlaceShips(playerID, placements)
	if err != nil {
		return PlaceResult{}, err
	}
	m.persist(s)
	return res, nil
}

// Attack resolves one attack in the given game.
func (m *Manager) Attack(gameID, playerID string, row, col int) (AttackResult, error) {
	s, ok := m.getByID(gameID)
	if !ok {
		return AttackResult{}, fmt.Errorf("%w: id %q", ErrNotFound, gameID)
	}
	res, err := s.Attack(playerID, row, col)
	if err != nil {
		return res, err
	}
	m.persist(s)
	return res, nil
}

// State returns the player-scoped projection and refreshes the requester's
// liveness markers.
func (m *Manager) State(gameID, playerID string) (View, error) {
	s, ok := m.getByID(gameID)
	if !ok {
		return View{}, fmt.Errorf("%w: id %q", ErrNotFound, gameID)
	}
	if err := s.Touch(playerID); err != nil {
		return View{}, err
	}
	return s.StateFor(playerID)
}

// Get returns a session by room code.
func (m *Manager) Get(code string) (*Session, bool) {
	return m.getByCode(code)
}

// GetByID returns a session by internal id.
func (m *Manager) GetByID(id string) (*Session, bool) {
	return m.getByID(id)
}

func (m *Manager) getByCode(code string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byCode[code]
	return s, ok
}

func (m *Manager) getByID(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[id]
	return s, ok
}

// Restore loads unfinished games from the database on startup.
func (m *Manager) Restore() error {
	rows, err := m.store.ListGames("")
	if err != nil {
		return fmt.Errorf("list games: %w", err)
	}
	for _, row := range rows {
		if row.Status == string(StatusFinished) {
			continue
		}
		stateJSON, err := m.store.GetState(row.ID)
		if err != nil {
			log.Printf("skipping game %s: no state: %v", row.Code, err)
			continue
		}
		s := &Session{}
		if err := s.UnmarshalJSON([]byte(stateJSON)); err != nil {
			log.Printf("skipping game %s: unmarshal error: %v", row.Code, err)
			continue
		}
		m.mu.Lock()
		m.byID[s.ID] = s
		m.byCode[s.Code] = s
		m.mu.Unlock()
	}
	return nil
}

// Remove deletes a session from memory and storage.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.byID[id]
	delete(m.byID, id)
	if ok {
		delete(m.byCode, s.Code)
	}
	m.mu.Unlock()
	m.store.DeleteGame(id)
}

// CleanupLoop reaps stale games periodically.
func (m *Manager) CleanupLoop(interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		m.cleanup(maxAge)
	}
}

// cleanup removes waiting games nobody ever joined and finished games past
// their retention age.
func (m *Manager) cleanup(maxAge time.Duration) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.byID))
	for _, s := range m.byID {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	now := time.Now()
	for _, s := range sessions {
		status := s.CurrentStatus()
		if status != StatusWaiting && status != StatusFinished {
			continue
		}
		if now.Sub(s.CreatedAt) > maxAge {
			log.Printf("cleaning up %s game %s created %s", status, s.Code, humanize.Time(s.CreatedAt))
			m.Remove(s.ID)
		}
	}
}

// persist snapshots the session; storage failures are logged, never surfaced
// to the player whose move already succeeded.
func (m *Manager) persist(s *Session) {
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("marshal game %s: %v", s.Code, err)
		return
	}
	if err := m.store.SaveState(s.ID, string(data)); err != nil {
		log.Printf("save game %s: %v", s.Code, err)
	}
	if err := m.store.UpdateStatus(s.ID, string(s.CurrentStatus())); err != nil {
		log.Printf("update game %s status: %v", s.Code, err)
	}
}

// uniqueCode draws room codes until one is free in both the store and memory.
func (m *Manager) uniqueCode() (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := randomCode()
		if _, inMemory := m.getByCode(code); inMemory {
			continue
		}
		exists, err := m.store.CodeExists(code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

func randomCode() string {
	b := make([]byte, codeLength)
	rand.Read(b)
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
