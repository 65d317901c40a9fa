package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"maximas/backend/internal/bot"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type titleUpdateRequest struct {
	Title string `json:"title"`
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

const previewRuneLimit = 50

// previewOf shortens a message to the list-view preview length.
func previewOf(message string) string {
	if message == "" {
		return "No messages yet."
	}
	runes := []rune(message)
	if len(runes) <= previewRuneLimit {
		return message
	}
	return string(runes[:previewRuneLimit]) + "..."
}

func entriesJSON(entries []bot.Entry) []gin.H {
	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, gin.H{
			"sender":    entry.Sender,
			"message":   entry.Message,
			"timestamp": entry.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return items
}

func summaryJSON(summary bot.Summary) gin.H {
	return gin.H{
		"message_count":                 summary.MessageCount,
		"conversation_duration_minutes": summary.DurationMinutes,
		"user_context": gin.H{
			"name":               nameOrNil(summary.Context.Name),
			"interests":          summary.Context.Interests,
			"mood":               summary.Context.Mood,
			"topics_discussed":   summary.Context.Topics,
			"conversation_start": summary.Context.ConversationStart.UTC().Format(time.RFC3339),
			"message_count":      summary.Context.MessageCount,
		},
		"last_messages": entriesJSON(summary.LastMessages),
		"conversation_stats": gin.H{
			"total_messages":       summary.Stats.TotalMessages,
			"user_messages":        summary.Stats.UserMessages,
			"bot_messages":         summary.Stats.BotMessages,
			"topics_covered":       summary.Stats.TopicsCovered,
			"interests_identified": summary.Stats.InterestsIdentified,
		},
	}
}

func nameOrNil(name string) any {
	if name == "" {
		return nil
	}
	return name
}
