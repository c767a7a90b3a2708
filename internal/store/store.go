// Package store provides storage backends for MindMate.
//
// It includes an in-memory store and persistent SQLite and PostgreSQL
// variants behind a single Store interface, so the decision logic above
// stays oblivious to storage mechanics.
package store

import (
	"sort"
	"sync"

	"github.com/TsarRusi/mindmate/internal/models"
)

// Store is the persistence contract shared by all backends.
//
// Conversation history is bounded: AddTurn evicts the oldest turns once a
// user's history exceeds models.HistoryCap, and RecentTurns returns the most
// recent n turns in insertion order.
type Store interface {
	AddTurn(userID string, t models.ConversationTurn) error
	RecentTurns(userID string, n int) ([]models.ConversationTurn, error)

	AddMoodEntry(e models.MoodEntry) error
	MoodEntries(userID string) ([]models.MoodEntry, error)

	SaveUser(u models.User) error
	GetUser(userID string) (*models.User, error)

	AddSession(s models.PracticeSession) error
	Sessions(userID string) ([]models.PracticeSession, error)
	AddFavorite(userID string, techniqueID int) error
	Favorites(userID string) ([]int, error)
	RateTechnique(userID string, techniqueID, rating int) error
	Ratings(userID string) (map[int]int, error)

	Close() error
}

// InMemoryStore keeps all state in process memory. It is the default when no
// database DSN is configured, and the backend used throughout tests.
type InMemoryStore struct {
	mu        sync.Mutex
	turns     map[string][]models.ConversationTurn
	moods     map[string][]models.MoodEntry
	users     map[string]models.User
	sessions  map[string][]models.PracticeSession
	favorites map[string][]int
	ratings   map[string]map[int]int
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		turns:     make(map[string][]models.ConversationTurn),
		moods:     make(map[string][]models.MoodEntry),
		users:     make(map[string]models.User),
		sessions:  make(map[string][]models.PracticeSession),
		favorites: make(map[string][]int),
		ratings:   make(map[string]map[int]int),
	}
}

// AddTurn appends a conversation turn and evicts the oldest entries beyond
// the history cap.
func (s *InMemoryStore) AddTurn(userID string, t models.ConversationTurn) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.turns[userID], t)
	if len(history) > models.HistoryCap {
		history = history[len(history)-models.HistoryCap:]
	}
	s.turns[userID] = history
	return nil
}

// RecentTurns returns the last n turns for a user in insertion order.
func (s *InMemoryStore) RecentTurns(userID string, n int) ([]models.ConversationTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.turns[userID]
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]models.ConversationTurn, len(history))
	copy(out, history)
	return out, nil
}

// AddMoodEntry appends a mood entry for a user.
func (s *InMemoryStore) AddMoodEntry(e models.MoodEntry) error {
	if e.UserID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moods[e.UserID] = append(s.moods[e.UserID], e)
	return nil
}

// MoodEntries returns all mood entries for a user in insertion order.
func (s *InMemoryStore) MoodEntries(userID string) ([]models.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.moods[userID]
	out := make([]models.MoodEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// SaveUser inserts or replaces a user record.
func (s *InMemoryStore) SaveUser(u models.User) error {
	if u.ID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

// GetUser returns the user record, or nil when unknown.
func (s *InMemoryStore) GetUser(userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// AddSession records a completed practice session.
func (s *InMemoryStore) AddSession(sess models.PracticeSession) error {
	if sess.UserID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = append(s.sessions[sess.UserID], sess)
	return nil
}

// Sessions returns all practice sessions for a user in insertion order.
func (s *InMemoryStore) Sessions(userID string) ([]models.PracticeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := s.sessions[userID]
	out := make([]models.PracticeSession, len(sessions))
	copy(out, sessions)
	return out, nil
}

// AddFavorite marks a technique as a favorite; duplicates are ignored.
func (s *InMemoryStore) AddFavorite(userID string, techniqueID int) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.favorites[userID] {
		if id == techniqueID {
			return nil
		}
	}
	s.favorites[userID] = append(s.favorites[userID], techniqueID)
	return nil
}

// Favorites returns the user's favorite technique ids, sorted ascending.
func (s *InMemoryStore) Favorites(userID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.favorites[userID]))
	copy(out, s.favorites[userID])
	sort.Ints(out)
	return out, nil
}

// RateTechnique stores the user's rating for a technique, replacing any
// previous rating.
func (s *InMemoryStore) RateTechnique(userID string, techniqueID, rating int) error {
	if userID == "" {
		return models.ErrEmptyUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ratings[userID] == nil {
		s.ratings[userID] = make(map[int]int)
	}
	s.ratings[userID][techniqueID] = rating
	return nil
}

// Ratings returns the user's ratings keyed by technique id.
func (s *InMemoryStore) Ratings(userID string) (map[int]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]int, len(s.ratings[userID]))
	for id, rating := range s.ratings[userID] {
		out[id] = rating
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
