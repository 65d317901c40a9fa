package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"maximas/backend/internal/bot"
)

const uniqueViolationCode = "23505"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id UUID PRIMARY KEY,
		session_id TEXT NOT NULL UNIQUE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL DEFAULT 'New Chat',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_active TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS conversation_entries (
		seq BIGSERIAL PRIMARY KEY,
		id UUID NOT NULL UNIQUE,
		conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		sender TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS conversation_entries_conversation_seq_idx
		ON conversation_entries (conversation_id, seq)`,
	`CREATE INDEX IF NOT EXISTS conversations_user_idx
		ON conversations (user_id, last_active DESC)`,
}

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the tables if they do not exist yet. The service owns
// its schema; there is no external migration tool.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO users (id, username, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		user.ID,
		username,
		passwordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return User{}, ErrUsernameTaken
		}
		return User{}, err
	}
	return user, nil
}

func (s *Postgres) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return s.scanUser(s.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	))
}

func (s *Postgres) GetUser(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.pool.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`,
		id,
	))
}

func (s *Postgres) scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Postgres) CreateConversation(ctx context.Context, userID, sessionID, title string) (Conversation, error) {
	conv := Conversation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		UserID:    userID,
		Title:     title,
	}
	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO conversations (id, session_id, user_id, title)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, last_active`,
		conv.ID,
		sessionID,
		userID,
		title,
	).Scan(&conv.CreatedAt, &conv.LastActive)
	if err != nil {
		return Conversation{}, err
	}
	return conv, nil
}

func (s *Postgres) GetConversation(ctx context.Context, userID, sessionID string) (Conversation, error) {
	var conv Conversation
	err := s.pool.QueryRow(
		ctx,
		`SELECT id, session_id, user_id, title, created_at, last_active
		 FROM conversations
		 WHERE session_id = $1 AND user_id = $2`,
		sessionID,
		userID,
	).Scan(&conv.ID, &conv.SessionID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.LastActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, ErrConversationNotFound
	}
	if err != nil {
		return Conversation{}, err
	}
	return conv, nil
}

func (s *Postgres) ListConversations(ctx context.Context, userID string) ([]ConversationListItem, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT
			c.session_id,
			c.title,
			COALESCE(
				(
					SELECT e.message
					FROM conversation_entries e
					WHERE e.conversation_id = c.id
					ORDER BY e.seq DESC
					LIMIT 1
				),
				''
			) AS last_message,
			c.created_at,
			c.last_active,
			(
				SELECT COUNT(*)::int
				FROM conversation_entries e
				WHERE e.conversation_id = c.id
			) AS message_count
		 FROM conversations c
		 WHERE c.user_id = $1
		 ORDER BY c.last_active DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ConversationListItem, 0, 16)
	for rows.Next() {
		var item ConversationListItem
		if err := rows.Scan(
			&item.SessionID,
			&item.Title,
			&item.LastMessage,
			&item.CreatedAt,
			&item.LastActive,
			&item.MessageCount,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Postgres) UpdateConversationTitle(ctx context.Context, userID, sessionID, title string) error {
	tag, err := s.pool.Exec(
		ctx,
		`UPDATE conversations SET title = $3, last_active = NOW()
		 WHERE session_id = $1 AND user_id = $2`,
		sessionID,
		userID,
		title,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *Postgres) TouchConversation(ctx context.Context, userID, sessionID string) error {
	tag, err := s.pool.Exec(
		ctx,
		`UPDATE conversations SET last_active = NOW()
		 WHERE session_id = $1 AND user_id = $2`,
		sessionID,
		userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *Postgres) DeleteConversation(ctx context.Context, userID, sessionID string) error {
	tag, err := s.pool.Exec(
		ctx,
		`DELETE FROM conversations WHERE session_id = $1 AND user_id = $2`,
		sessionID,
		userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *Postgres) Load(ctx context.Context, userID, sessionID string) ([]bot.Entry, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT e.sender, e.message, e.created_at
		 FROM conversation_entries e
		 JOIN conversations c ON c.id = e.conversation_id
		 WHERE c.session_id = $1 AND c.user_id = $2
		 ORDER BY e.seq ASC`,
		sessionID,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]bot.Entry, 0, 32)
	for rows.Next() {
		var entry bot.Entry
		if err := rows.Scan(&entry.Sender, &entry.Message, &entry.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Postgres) Append(ctx context.Context, userID, sessionID string, entry bot.Entry) error {
	var conversationID string
	err := s.pool.QueryRow(
		ctx,
		`SELECT id FROM conversations WHERE session_id = $1 AND user_id = $2`,
		sessionID,
		userID,
	).Scan(&conversationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrConversationNotFound
	}
	if err != nil {
		return err
	}

	timestamp := entry.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	if _, err := s.pool.Exec(
		ctx,
		`INSERT INTO conversation_entries (id, conversation_id, sender, message, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(),
		conversationID,
		entry.Sender,
		entry.Message,
		timestamp,
	); err != nil {
		return err
	}

	_, err = s.pool.Exec(
		ctx,
		`UPDATE conversations SET last_active = NOW() WHERE id = $1`,
		conversationID,
	)
	return err
}

func (s *Postgres) GlobalStats(ctx context.Context) (GlobalStats, error) {
	var stats GlobalStats
	err := s.pool.QueryRow(
		ctx,
		`SELECT
			(SELECT COUNT(*)::int FROM users),
			(SELECT COUNT(*)::int FROM conversations),
			(SELECT COUNT(*)::int FROM conversation_entries)`,
	).Scan(&stats.Users, &stats.Conversations, &stats.Messages)
	if err != nil {
		return GlobalStats{}, err
	}
	return stats, nil
}
