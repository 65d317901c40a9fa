package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"maximas/backend/internal/storage"
)

func (a *App) register(c *gin.Context) {
	var payload credentialsRequest
	if !mustJSON(c, &payload) {
		return
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" {
		writeError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user, err := a.store.CreateUser(c.Request.Context(), username, string(hash))
	if errors.Is(err, storage.ErrUsernameTaken) {
		writeError(c, http.StatusConflict, "Username already exists. Please choose a different one.")
		return
	}
	if err != nil {
		a.logger.Error("user registration failed", zap.String("username", username), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Failed to register user")
		return
	}

	a.logger.Info("user registered", zap.String("username", user.Username), zap.String("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message":  "User registered successfully",
		"user_id":  user.ID,
		"username": user.Username,
	})
}

func (a *App) login(c *gin.Context) {
	var payload credentialsRequest
	if !mustJSON(c, &payload) {
		return
	}
	username := strings.TrimSpace(payload.Username)
	if username == "" || payload.Password == "" {
		writeError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := a.store.GetUserByUsername(c.Request.Context(), username)
	if errors.Is(err, storage.ErrUserNotFound) {
		writeError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		a.logger.Error("user lookup failed", zap.String("username", username), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Failed to log in")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)) != nil {
		writeError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := a.issueToken(user.ID, time.Now().UTC())
	if err != nil {
		a.logger.Error("token signing failed", zap.String("user_id", user.ID), zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Failed to log in")
		return
	}

	a.logger.Info("user logged in", zap.String("username", user.Username), zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"user_id":  user.ID,
		"username": user.Username,
		"token":    token,
	})
}

// logout reclaims the user's live engines. The token itself stays valid
// until it expires; there is no server-side token state to revoke.
func (a *App) logout(c *gin.Context) {
	user, ok := authUserFromContext(c)
	if !ok {
		writeError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	a.bots.RemoveUser(user.ID)
	a.logger.Info("user logged out", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
