package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maximas/backend/internal/storage"
)

// chat runs one conversational turn. The conversation row is created on
// first contact for an unseen session_id; the engine itself is created (or
// rehydrated from history) by the session registry.
func (a *App) chat(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload chatRequest
	if !mustJSON(c, &payload) {
		return
	}
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		writeError(c, http.StatusBadRequest, "No message provided")
		return
	}
	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		writeError(c, http.StatusBadRequest, "Session ID is required for chat")
		return
	}

	ctx := c.Request.Context()
	conv, err := a.store.GetConversation(ctx, user.ID, sessionID)
	if errors.Is(err, storage.ErrConversationNotFound) {
		title := "Chat " + time.Now().Format("2006-01-02 15:04")
		conv, err = a.store.CreateConversation(ctx, user.ID, sessionID, title)
		if err == nil {
			a.logger.Info("created conversation",
				zap.String("user_id", user.ID),
				zap.String("session_id", sessionID))
		}
	}
	if err != nil {
		a.logger.Error("conversation lookup failed",
			zap.String("user_id", user.ID),
			zap.String("session_id", sessionID),
			zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Failed to prepare conversation")
		return
	}

	session := a.bots.Acquire(ctx, user.ID, sessionID)
	reply, storeErr := session.Process(ctx, message)

	if err := a.store.TouchConversation(ctx, user.ID, sessionID); err != nil {
		a.logger.Warn("failed to bump conversation activity",
			zap.String("session_id", sessionID), zap.Error(err))
	}

	userName := reply.Name
	if userName == "" {
		userName = user.Username
	}
	response := gin.H{
		"response":      reply.Text,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"message_count": reply.MessageCount,
		"user_name":     userName,
		"session_id":    conv.SessionID,
	}
	if storeErr != nil {
		// The reply survives a persistence failure; the caller just
		// learns that storage is degraded.
		response["storage_degraded"] = true
	}
	c.JSON(http.StatusOK, response)
}

func (a *App) getConversation(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	sessionID := strings.TrimSpace(c.Param("session_id"))
	if sessionID == "" {
		writeError(c, http.StatusBadRequest, "session_id is required")
		return
	}

	ctx := c.Request.Context()
	conv, err := a.store.GetConversation(ctx, user.ID, sessionID)
	if errors.Is(err, storage.ErrConversationNotFound) {
		writeError(c, http.StatusNotFound, "Conversation not found or not authorized for this user")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	entries, err := a.store.Load(ctx, user.ID, sessionID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to load conversation history")
		return
	}

	session := a.bots.Acquire(ctx, user.ID, sessionID)
	summary := session.Summary(conv.CreatedAt)

	c.JSON(http.StatusOK, gin.H{
		"messages":   entriesJSON(entries),
		"summary":    summaryJSON(summary),
		"session_id": sessionID,
		"title":      conv.Title,
	})
}

func (a *App) listConversations(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	items, err := a.store.ListConversations(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to load conversations")
		return
	}

	list := make([]gin.H, 0, len(items))
	for _, item := range items {
		list = append(list, gin.H{
			"session_id":            item.SessionID,
			"title":                 item.Title,
			"last_message_preview":  previewOf(item.LastMessage),
			"last_active_timestamp": item.LastActive.UTC().Format(time.RFC3339),
			"created_at":            item.CreatedAt.UTC().Format(time.RFC3339),
			"message_count":         item.MessageCount,
		})
	}
	c.JSON(http.StatusOK, list)
}

func (a *App) updateConversationTitle(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	sessionID := strings.TrimSpace(c.Param("session_id"))

	var payload titleUpdateRequest
	if !mustJSON(c, &payload) {
		return
	}
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		writeError(c, http.StatusBadRequest, "New title is required")
		return
	}

	err := a.store.UpdateConversationTitle(c.Request.Context(), user.ID, sessionID, title)
	if errors.Is(err, storage.ErrConversationNotFound) {
		writeError(c, http.StatusNotFound, "Conversation not found or not authorized")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to update title")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Conversation title updated successfully",
		"new_title": title,
	})
}

// resetConversation deletes a conversation and evicts its live engine.
func (a *App) resetConversation(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload resetRequest
	if !mustJSON(c, &payload) {
		return
	}
	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		writeError(c, http.StatusBadRequest, "Session ID required for deletion")
		return
	}

	err := a.store.DeleteConversation(c.Request.Context(), user.ID, sessionID)
	if errors.Is(err, storage.ErrConversationNotFound) {
		writeError(c, http.StatusNotFound, "Conversation not found or not authorized for this user")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to delete conversation")
		return
	}

	a.bots.Remove(user.ID, sessionID)
	a.logger.Info("conversation deleted",
		zap.String("user_id", user.ID),
		zap.String("session_id", sessionID))
	c.JSON(http.StatusOK, gin.H{
		"status":    "conversation deleted",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// stats serves global totals to anyone and per-session stats to the
// session's owner.
func (a *App) stats(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("session_id"))
	ctx := c.Request.Context()

	if sessionID == "" {
		global, err := a.store.GlobalStats(ctx)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "Failed to load stats")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"global_stats": gin.H{
				"total_users":         global.Users,
				"total_conversations": global.Conversations,
				"total_messages_across_all_conversations": global.Messages,
			},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	user, err := a.authenticate(c)
	if err != nil {
		writeError(c, http.StatusUnauthorized, err.Error())
		return
	}
	conv, err := a.store.GetConversation(ctx, user.ID, sessionID)
	if errors.Is(err, storage.ErrConversationNotFound) {
		writeError(c, http.StatusNotFound, "Conversation not found or not authorized for this user")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	session := a.bots.Acquire(ctx, user.ID, sessionID)
	snapshot := session.Snapshot()
	summary := session.Summary(conv.CreatedAt)

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"total_messages":       summary.Stats.TotalMessages,
			"user_messages":        summary.Stats.UserMessages,
			"bot_messages":         summary.Stats.BotMessages,
			"topics_covered":       summary.Stats.TopicsCovered,
			"interests_identified": summary.Stats.InterestsIdentified,
		},
		"user_context": gin.H{
			"name":            nameOrNil(snapshot.Name),
			"interests_count": len(snapshot.Interests),
			"current_mood":    snapshot.Mood,
			"topics_count":    len(snapshot.Topics),
			"db_user_name":    user.Username,
		},
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"session_id": sessionID,
	})
}
