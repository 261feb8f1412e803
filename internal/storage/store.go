package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// GameRow represents a game in the database.
type GameRow struct {
	ID        string
	Code      string
	Status    string // "waiting", "setup", "playing", "finished"
	CreatedAt time.Time
}

// Store handles SQLite persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id         TEXT PRIMARY KEY,
			code       TEXT NOT NULL UNIQUE,
			status     TEXT NOT NULL DEFAULT 'waiting',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS game_state (
			game_id    TEXT PRIMARY KEY REFERENCES games(id),
			state_json TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_games_status ON games(status, created_at);
	`)
	return err
}

// CreateGame inserts a new game.
func (s *Store) CreateGame(id, code string) error {
	_, err := s.db.Exec(
		"INSERT INTO games (id, code, status) VALUES (?, ?, 'waiting')",
		id, code,
	)
	return err
}

// GetGame retrieves a game by internal id.
func (s *Store) GetGame(id string) (*GameRow, error) {
	row := s.db.QueryRow("SELECT id, code, status, created_at FROM games WHERE id = ?", id)
	return scanGame(row)
}

// GetGameByCode retrieves a game by its room code.
func (s *Store) GetGameByCode(code string) (*GameRow, error) {
	row := s.db.QueryRow("SELECT id, code, status, created_at FROM games WHERE code = ?", code)
	return scanGame(row)
}

func scanGame(row *sql.Row) (*GameRow, error) {
	var gr GameRow
	if err := row.Scan(&gr.ID, &gr.Code, &gr.Status, &gr.CreatedAt); err != nil {
		return nil, err
	}
	return &gr, nil
}

// CodeExists reports whether a room code is already taken.
func (s *Store) CodeExists(code string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM games WHERE code = ?", code).Scan(&n)
	return n > 0, err
}

// UpdateStatus changes a game's status.
func (s *Store) UpdateStatus(id, status string) error {
	_, err := s.db.Exec("UPDATE games SET status = ? WHERE id = ?", status, id)
	return err
}

// ListGames returns all games with the given status (or all if status is empty).
func (s *Store) ListGames(status string) ([]GameRow, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.Query("SELECT id, code, status, created_at FROM games ORDER BY created_at DESC")
	} else {
		rows, err = s.db.Query("SELECT id, code, status, created_at FROM games WHERE status = ? ORDER BY created_at DESC", status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []GameRow
	for rows.Next() {
		var gr GameRow
		if err := rows.Scan(&gr.ID, &gr.Code, &gr.Status, &gr.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, gr)
	}
	return result, rows.Err()
}

// SaveState upserts the serialized session state for a game.
func (s *Store) SaveState(id, stateJSON string) error {
	_, err := s.db.Exec(`
		INSERT INTO game_state (game_id, state_json, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(game_id) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at
	`, id, stateJSON)
	return err
}

// GetState retrieves the serialized session state for a game.
func (s *Store) GetState(id string) (string, error) {
	var stateJSON string
	err := s.db.QueryRow("SELECT state_json FROM game_state WHERE game_id = ?", id).Scan(&stateJSON)
	return stateJSON, err
}

// DeleteGame removes a game and its state.
func (s *Store) DeleteGame(id string) error {
	_, err := s.db.Exec("DELETE FROM game_state WHERE game_id = ?", id)
	if err != nil {
		return err
	}
	_, err = s.db.Exec("DELETE FROM games WHERE id = ?", id)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
