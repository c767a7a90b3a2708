// Package store provides storage backends for MindMate.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/TsarRusi/mindmate/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists all MindMate state in a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// AddTurn appends a conversation turn and trims the user's history to the cap.
func (s *SQLiteStore) AddTurn(userID string, t models.ConversationTurn) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	_, err := s.db.Exec(
		`INSERT INTO conversation_turns (user_id, user_text, response_text, created_at) VALUES (?, ?, ?, ?)`,
		userID, t.UserText, t.ResponseText, t.Timestamp,
	)
	if err != nil {
		slog.Error("SQLiteStore AddTurn failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to insert conversation turn: %w", err)
	}

	// Evict everything older than the newest HistoryCap turns.
	_, err = s.db.Exec(
		`DELETE FROM conversation_turns WHERE user_id = ? AND id NOT IN (
			SELECT id FROM conversation_turns WHERE user_id = ? ORDER BY id DESC LIMIT ?
		)`,
		userID, userID, models.HistoryCap,
	)
	if err != nil {
		slog.Error("SQLiteStore AddTurn trim failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to trim conversation history: %w", err)
	}
	return nil
}

// RecentTurns returns the last n turns for a user in insertion order.
func (s *SQLiteStore) RecentTurns(userID string, n int) ([]models.ConversationTurn, error) {
	rows, err := s.db.Query(
		`SELECT user_text, response_text, created_at FROM (
			SELECT id, user_text, response_text, created_at FROM conversation_turns
			WHERE user_id = ? ORDER BY id DESC LIMIT ?
		) recent ORDER BY recent.id ASC`,
		userID, n,
	)
	if err != nil {
		slog.Error("SQLiteStore RecentTurns query failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to query conversation turns: %w", err)
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.UserText, &t.ResponseText, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan conversation turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// AddMoodEntry appends a mood entry.
func (s *SQLiteStore) AddMoodEntry(e models.MoodEntry) error {
	if e.UserID == "" {
		return models.ErrEmptyUserID
	}
	_, err := s.db.Exec(
		`INSERT INTO mood_entries (user_id, score, note, created_at) VALUES (?, ?, ?, ?)`,
		e.UserID, e.Score, nilIfEmpty(e.Note), e.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore AddMoodEntry failed", "error", err, "user_id", e.UserID)
		return fmt.Errorf("failed to insert mood entry: %w", err)
	}
	return nil
}

// MoodEntries returns all mood entries for a user in insertion order.
func (s *SQLiteStore) MoodEntries(userID string) ([]models.MoodEntry, error) {
	rows, err := s.db.Query(
		`SELECT user_id, score, COALESCE(note, ''), created_at FROM mood_entries WHERE user_id = ? ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		slog.Error("SQLiteStore MoodEntries query failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to query mood entries: %w", err)
	}
	defer rows.Close()

	var entries []models.MoodEntry
	for rows.Next() {
		var e models.MoodEntry
		if err := rows.Scan(&e.UserID, &e.Score, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveUser inserts or replaces a user record.
func (s *SQLiteStore) SaveUser(u models.User) error {
	if u.ID == "" {
		return models.ErrEmptyUserID
	}
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, chat_mode, in_chat, joined_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, chat_mode = excluded.chat_mode, in_chat = excluded.in_chat`,
		u.ID, nilIfEmpty(u.Name), string(u.ChatMode), u.InChat, u.JoinedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore SaveUser failed", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to save user %s: %w", u.ID, err)
	}
	return nil
}

// GetUser returns the user record, or nil when unknown.
func (s *SQLiteStore) GetUser(userID string) (*models.User, error) {
	var u models.User
	var mode string
	err := s.db.QueryRow(
		`SELECT id, COALESCE(name, ''), chat_mode, in_chat, joined_at FROM users WHERE id = ?`,
		userID,
	).Scan(&u.ID, &u.Name, &mode, &u.InChat, &u.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetUser failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	u.ChatMode = models.ChatMode(mode)
	return &u, nil
}

// AddSession records a completed practice session.
func (s *SQLiteStore) AddSession(sess models.PracticeSession) error {
	if sess.UserID == "" {
		return models.ErrEmptyUserID
	}
	_, err := s.db.Exec(
		`INSERT INTO practice_sessions (user_id, technique_id, minutes, mood_before, mood_after, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.UserID, sess.TechniqueID, sess.Minutes, sess.MoodBefore, sess.MoodAfter, sess.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore AddSession failed", "error", err, "user_id", sess.UserID)
		return fmt.Errorf("failed to insert practice session: %w", err)
	}
	return nil
}

// Sessions returns all practice sessions for a user in insertion order.
func (s *SQLiteStore) Sessions(userID string) ([]models.PracticeSession, error) {
	rows, err := s.db.Query(
		`SELECT user_id, technique_id, minutes, mood_before, mood_after, created_at
		 FROM practice_sessions WHERE user_id = ? ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		slog.Error("SQLiteStore Sessions query failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to query practice sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.PracticeSession
	for rows.Next() {
		var sess models.PracticeSession
		if err := rows.Scan(&sess.UserID, &sess.TechniqueID, &sess.Minutes, &sess.MoodBefore, &sess.MoodAfter, &sess.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan practice session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// AddFavorite marks a technique as a favorite; duplicates are ignored.
func (s *SQLiteStore) AddFavorite(userID string, techniqueID int) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO favorites (user_id, technique_id) VALUES (?, ?)`,
		userID, techniqueID,
	)
	if err != nil {
		slog.Error("SQLiteStore AddFavorite failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

// Favorites returns the user's favorite technique ids, sorted ascending.
func (s *SQLiteStore) Favorites(userID string) ([]int, error) {
	rows, err := s.db.Query(
		`SELECT technique_id FROM favorites WHERE user_id = ? ORDER BY technique_id ASC`,
		userID,
	)
	if err != nil {
		slog.Error("SQLiteStore Favorites query failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RateTechnique stores the user's rating for a technique, replacing any
// previous rating.
func (s *SQLiteStore) RateTechnique(userID string, techniqueID, rating int) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	_, err := s.db.Exec(
		`INSERT INTO technique_ratings (user_id, technique_id, rating) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, technique_id) DO UPDATE SET rating = excluded.rating`,
		userID, techniqueID, rating,
	)
	if err != nil {
		slog.Error("SQLiteStore RateTechnique failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to save rating: %w", err)
	}
	return nil
}

// Ratings returns the user's ratings keyed by technique id.
func (s *SQLiteStore) Ratings(userID string) (map[int]int, error) {
	rows, err := s.db.Query(
		`SELECT technique_id, rating FROM technique_ratings WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		slog.Error("SQLiteStore Ratings query failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[int]int)
	for rows.Next() {
		var id, rating int
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings[id] = rating
	}
	return ratings, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
