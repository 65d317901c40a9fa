package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"maximas/backend/internal/bot"
)

type memoryConversation struct {
	conv    Conversation
	entries []bot.Entry
}

// Memory is the in-memory Store. It backs tests and the no-database dev
// mode; its semantics mirror the Postgres implementation.
type Memory struct {
	mu            sync.RWMutex
	usersByID     map[string]User
	usersByName   map[string]string
	conversations map[string]*memoryConversation
}

func NewMemory() *Memory {
	return &Memory{
		usersByID:     make(map[string]User),
		usersByName:   make(map[string]string),
		conversations: make(map[string]*memoryConversation),
	}
}

func (s *Memory) Close() {}

func (s *Memory) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByName[username]; taken {
		return User{}, ErrUsernameTaken
	}
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.usersByID[user.ID] = user
	s.usersByName[username] = user.ID
	return user, nil
}

func (s *Memory) GetUserByUsername(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return s.usersByID[id], nil
}

func (s *Memory) GetUser(ctx context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *Memory) CreateConversation(ctx context.Context, userID, sessionID, title string) (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	conv := Conversation{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		UserID:     userID,
		Title:      title,
		CreatedAt:  now,
		LastActive: now,
	}
	s.conversations[sessionID] = &memoryConversation{conv: conv}
	return conv, nil
}

func (s *Memory) GetConversation(ctx context.Context, userID, sessionID string) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mc, ok := s.conversations[sessionID]
	if !ok || mc.conv.UserID != userID {
		return Conversation{}, ErrConversationNotFound
	}
	return mc.conv, nil
}

func (s *Memory) ListConversations(ctx context.Context, userID string) ([]ConversationListItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ConversationListItem, 0, 8)
	for _, mc := range s.conversations {
		if mc.conv.UserID != userID {
			continue
		}
		item := ConversationListItem{
			SessionID:    mc.conv.SessionID,
			Title:        mc.conv.Title,
			CreatedAt:    mc.conv.CreatedAt,
			LastActive:   mc.conv.LastActive,
			MessageCount: len(mc.entries),
		}
		if len(mc.entries) > 0 {
			item.LastMessage = mc.entries[len(mc.entries)-1].Message
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].LastActive.After(items[j].LastActive)
	})
	return items, nil
}

func (s *Memory) UpdateConversationTitle(ctx context.Context, userID, sessionID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.conversations[sessionID]
	if !ok || mc.conv.UserID != userID {
		return ErrConversationNotFound
	}
	mc.conv.Title = title
	mc.conv.LastActive = time.Now().UTC()
	return nil
}

func (s *Memory) TouchConversation(ctx context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.conversations[sessionID]
	if !ok || mc.conv.UserID != userID {
		return ErrConversationNotFound
	}
	mc.conv.LastActive = time.Now().UTC()
	return nil
}

func (s *Memory) DeleteConversation(ctx context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.conversations[sessionID]
	if !ok || mc.conv.UserID != userID {
		return ErrConversationNotFound
	}
	delete(s.conversations, sessionID)
	return nil
}

func (s *Memory) Load(ctx context.Context, userID, sessionID string) ([]bot.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mc, ok := s.conversations[sessionID]
	if !ok || mc.conv.UserID != userID {
		return nil, nil
	}
	entries := make([]bot.Entry, len(mc.entries))
	copy(entries, mc.entries)
	return entries, nil
}

func (s *Memory) Append(ctx context.Context, userID, sessionID string, entry bot.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mc, ok := s.conversations[sessionID]
	if !ok || mc.conv.UserID != userID {
		return ErrConversationNotFound
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	mc.entries = append(mc.entries, entry)
	mc.conv.LastActive = time.Now().UTC()
	return nil
}

func (s *Memory) GlobalStats(ctx context.Context) (GlobalStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := GlobalStats{
		Users:         len(s.usersByID),
		Conversations: len(s.conversations),
	}
	for _, mc := range s.conversations {
		stats.Messages += len(mc.entries)
	}
	return stats, nil
}
