package storage

import (
	"context"
	"errors"
	"time"

	"maximas/backend/internal/bot"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrConversationNotFound = errors.New("conversation not found")
)

type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Conversation struct {
	ID         string
	SessionID  string
	UserID     string
	Title      string
	CreatedAt  time.Time
	LastActive time.Time
}

// ConversationListItem is one row of a user's conversation list, newest
// activity first. LastMessage is the full text; presentation truncation is
// the caller's business.
type ConversationListItem struct {
	SessionID    string
	Title        string
	LastMessage  string
	CreatedAt    time.Time
	LastActive   time.Time
	MessageCount int
}

type GlobalStats struct {
	Users         int
	Conversations int
	Messages      int
}

// Store is the durable backend: user accounts, conversation metadata, and
// the append-only history stream. Load and Append satisfy bot.HistoryStore.
type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)

	CreateConversation(ctx context.Context, userID, sessionID, title string) (Conversation, error)
	GetConversation(ctx context.Context, userID, sessionID string) (Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]ConversationListItem, error)
	UpdateConversationTitle(ctx context.Context, userID, sessionID, title string) error
	TouchConversation(ctx context.Context, userID, sessionID string) error
	DeleteConversation(ctx context.Context, userID, sessionID string) error

	Load(ctx context.Context, userID, sessionID string) ([]bot.Entry, error)
	Append(ctx context.Context, userID, sessionID string, entry bot.Entry) error

	GlobalStats(ctx context.Context) (GlobalStats, error)
	Close()
}
