package bot

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Entry senders. History entries carry exactly these two values.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Entry is one line of durable conversation history.
type Entry struct {
	Sender    string
	Message   string
	Timestamp time.Time
}

// HistoryStore is the durable history collaborator the engine needs.
// Load runs once at construction; Append runs once per processed message.
// An Append failure must never cost the caller the computed response.
type HistoryStore interface {
	Load(ctx context.Context, userID, sessionID string) ([]Entry, error)
	Append(ctx context.Context, userID, sessionID string, entry Entry) error
}

// Bot is one session's response engine: the pattern matcher, the contextual
// fallback, and the accumulated conversational state. It is not safe for
// concurrent use; the session registry serializes turns.
type Bot struct {
	userID    string
	sessionID string
	store     HistoryStore
	table     *PatternTable
	state     *State
	history   []Entry
	rng       *rand.Rand
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Bot)

// WithRand injects the randomness source driving response selection and the
// personalization coin flip. Tests pass a fixed seed for reproducibility.
func WithRand(rng *rand.Rand) Option {
	return func(b *Bot) { b.rng = rng }
}

func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Bot) { b.logger = logger }
}

// New builds the engine for one (user, session) pair, loading any persisted
// history and replaying it through the rehydration rules. A failed or
// malformed load degrades to an empty state rather than failing.
func New(ctx context.Context, userID, sessionID string, store HistoryStore, table *PatternTable, opts ...Option) *Bot {
	b := &Bot{
		userID:    userID,
		sessionID: sessionID,
		store:     store,
		table:     table,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.state = NewState(b.now())

	entries, err := store.Load(ctx, userID, sessionID)
	if err != nil {
		b.logger.Warn("history load failed, starting from empty state",
			zap.String("user_id", userID),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return b
	}
	b.history = entries
	b.rehydrate(entries)
	return b
}

// rehydrate rebuilds inferred context from persisted history. The message
// count deliberately counts every entry, both senders; the inference passes
// re-run only the name and feelings extractions over user turns. Name keeps
// the latest match, mood stops at the first non-neutral finding.
func (b *Bot) rehydrate(entries []Entry) {
	if len(entries) == 0 {
		return
	}
	b.state.ConversationStart = entries[0].Timestamp
	b.state.MessageCount = len(entries)

	for _, entry := range entries {
		if entry.Sender == SenderUser {
			lowered := strings.ToLower(entry.Message)
			if name, ok := b.table.extractName(lowered); ok {
				b.state.Name = name
			}
			if b.state.Mood == defaultMood {
				if mood, ok := b.table.extractMood(lowered); ok {
					b.state.Mood = mood
				}
			}
		}
		b.state.LastMessageAt = entry.Timestamp
	}
}

// extractName runs only the name-introduction patterns, as the rehydration
// scan does.
func (tbl *PatternTable) extractName(lowered string) (string, bool) {
	for _, category := range tbl.categories {
		if category.Name != categoryNameInquiry {
			continue
		}
		for _, pattern := range category.Patterns {
			if groups := pattern.FindStringSubmatch(lowered); len(groups) > 1 && groups[1] != "" {
				return titleCase(groups[1]), true
			}
		}
	}
	return "", false
}

// extractMood runs only the feelings patterns, positive before negative.
func (tbl *PatternTable) extractMood(lowered string) (string, bool) {
	for _, category := range tbl.categories {
		if category.Name != categoryFeelingsPos && category.Name != categoryFeelingsNeg {
			continue
		}
		for _, pattern := range category.Patterns {
			if groups := pattern.FindStringSubmatch(lowered); len(groups) > 1 && groups[1] != "" {
				return groups[1], true
			}
		}
	}
	return "", false
}

// Reply is what one processed turn hands back to the transport layer.
type Reply struct {
	Text         string
	MessageCount int
	Name         string
	Mood         string
}

// Process runs one full turn: count the message, persist it, match patterns
// (contextual fallback when nothing matches), persist the response, and fold
// the turn's keywords into the discussed topics. The returned error reports
// degraded persistence only; the reply itself is always valid.
func (b *Bot) Process(ctx context.Context, message string) (Reply, error) {
	lowered := strings.ToLower(strings.TrimSpace(message))
	b.state.MessageCount++

	now := b.now()
	b.state.LastMessageAt = now
	userEntry := Entry{Sender: SenderUser, Message: message, Timestamp: now}
	b.history = append(b.history, userEntry)
	storeErr := b.append(ctx, userEntry)

	response, matched := b.table.Match(lowered, b.state, b.rng, now)
	if !matched {
		response = contextualResponse(b.state, message, b.rng)
	}

	botEntry := Entry{Sender: SenderBot, Message: response, Timestamp: b.now()}
	b.history = append(b.history, botEntry)
	storeErr = errors.Join(storeErr, b.append(ctx, botEntry))

	for _, keyword := range ExtractKeywords(message) {
		b.state.Topics.Add(keyword)
	}

	return Reply{
		Text:         response,
		MessageCount: b.state.MessageCount,
		Name:         b.state.Name,
		Mood:         b.state.Mood,
	}, storeErr
}

func (b *Bot) append(ctx context.Context, entry Entry) error {
	if err := b.store.Append(ctx, b.userID, b.sessionID, entry); err != nil {
		b.logger.Warn("history append failed, continuing with in-memory state",
			zap.String("user_id", b.userID),
			zap.String("session_id", b.sessionID),
			zap.String("sender", entry.Sender),
			zap.Error(err))
		return err
	}
	return nil
}

// Snapshot returns the current inferred context.
func (b *Bot) Snapshot() StateSnapshot {
	return b.state.Snapshot()
}

// SummaryStats are the aggregate counters of one conversation.
type SummaryStats struct {
	TotalMessages       int
	UserMessages        int
	BotMessages         int
	TopicsCovered       int
	InterestsIdentified int
}

// Summary is the comprehensive conversation view: counts, wall-clock
// duration, the inferred-context snapshot, and the trailing history window.
type Summary struct {
	MessageCount    int
	DurationMinutes float64
	Context         StateSnapshot
	LastMessages    []Entry
	Stats           SummaryStats
}

const summaryHistoryWindow = 10

// Summary builds the conversation summary. persistedCreatedAt is the
// conversation's stored creation time; when zero the in-memory start is
// used instead.
func (b *Bot) Summary(persistedCreatedAt time.Time) Summary {
	start := persistedCreatedAt
	if start.IsZero() {
		start = b.state.ConversationStart
	}
	minutes := b.now().Sub(start).Minutes()
	minutes = math.Round(minutes*10) / 10

	stats := SummaryStats{
		TotalMessages:       len(b.history),
		TopicsCovered:       b.state.Topics.Len(),
		InterestsIdentified: b.state.Interests.Len(),
	}
	for _, entry := range b.history {
		switch entry.Sender {
		case SenderUser:
			stats.UserMessages++
		case SenderBot:
			stats.BotMessages++
		}
	}

	window := b.history
	if len(window) > summaryHistoryWindow {
		window = window[len(window)-summaryHistoryWindow:]
	}
	last := make([]Entry, len(window))
	copy(last, window)

	return Summary{
		MessageCount:    len(b.history),
		DurationMinutes: minutes,
		Context:         b.state.Snapshot(),
		LastMessages:    last,
		Stats:           stats,
	}
}
