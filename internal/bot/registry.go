package bot

import (
	"context"
	"sync"
	"time"
)

type sessionKey struct {
	userID    string
	sessionID string
}

type managedSession struct {
	mu  sync.Mutex
	bot *Bot
}

// Registry owns the live engines, one per (user, session) pair. Lifecycle
// is explicit: an engine is created on the first turn that touches its
// session, and reclaimed on conversation deletion or logout. Turns on one
// session are serialized through the session handle; separate sessions run
// concurrently.
type Registry struct {
	mu       sync.Mutex
	store    HistoryStore
	table    *PatternTable
	opts     []Option
	sessions map[sessionKey]*managedSession
}

func NewRegistry(store HistoryStore, table *PatternTable, opts ...Option) *Registry {
	return &Registry{
		store:    store,
		table:    table,
		opts:     opts,
		sessions: make(map[sessionKey]*managedSession),
	}
}

// Session is a serialized handle on one live engine. Every call holds the
// session lock for the duration of the operation, so at most one turn per
// session is ever in flight.
type Session struct {
	ms *managedSession
}

// Acquire returns the session handle, constructing the engine (and loading
// its history) on first contact. Construction happens under the session
// lock, not the registry lock, so a slow history load on one session does
// not stall the others.
func (r *Registry) Acquire(ctx context.Context, userID, sessionID string) *Session {
	key := sessionKey{userID: userID, sessionID: sessionID}

	r.mu.Lock()
	ms, ok := r.sessions[key]
	if !ok {
		ms = &managedSession{}
		r.sessions[key] = ms
	}
	r.mu.Unlock()

	ms.mu.Lock()
	if ms.bot == nil {
		ms.bot = New(ctx, userID, sessionID, r.store, r.table, r.opts...)
	}
	ms.mu.Unlock()

	return &Session{ms: ms}
}

// Remove drops one session's engine, if live.
func (r *Registry) Remove(userID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey{userID: userID, sessionID: sessionID})
}

// RemoveUser drops every live engine belonging to a user. Called on logout.
func (r *Registry) RemoveUser(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.sessions {
		if key.userID == userID {
			delete(r.sessions, key)
		}
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (s *Session) Process(ctx context.Context, message string) (Reply, error) {
	s.ms.mu.Lock()
	defer s.ms.mu.Unlock()
	return s.ms.bot.Process(ctx, message)
}

func (s *Session) Summary(persistedCreatedAt time.Time) Summary {
	s.ms.mu.Lock()
	defer s.ms.mu.Unlock()
	return s.ms.bot.Summary(persistedCreatedAt)
}

func (s *Session) Snapshot() StateSnapshot {
	s.ms.mu.Lock()
	defer s.ms.mu.Unlock()
	return s.ms.bot.Snapshot()
}
