package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"maximas/backend/internal/bot"
	"maximas/backend/internal/config"
	"maximas/backend/internal/storage"
)

type App struct {
	cfg    config.Config
	store  storage.Store
	bots   *bot.Registry
	logger *zap.Logger
}

type AuthUser struct {
	ID       string
	Username string
}

func New(cfg config.Config, store storage.Store, table *bot.PatternTable, logger *zap.Logger) *App {
	return &App{
		cfg:    cfg,
		store:  store,
		bots:   bot.NewRegistry(store, table, bot.WithLogger(logger)),
		logger: logger,
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)
	router.POST("/register", a.register)
	router.POST("/login", a.login)

	// Stats does its own auth: global totals are public, per-session
	// stats require a token.
	router.GET("/stats", a.stats)

	authed := router.Group("", a.authMiddleware())
	authed.POST("/logout", a.logout)
	authed.POST("/chat", a.chat)
	authed.GET("/conversation/:session_id", a.getConversation)
	authed.GET("/conversations/list", a.listConversations)
	authed.PUT("/conversation/title/:session_id", a.updateConversationTitle)
	authed.POST("/reset", a.resetConversation)

	return router
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"server":    a.cfg.AppName,
		"timestamp": time.Now().UTC(),
	})
}

func (a *App) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.authenticate(c)
		if err != nil {
			writeError(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set("authUser", user)
		c.Next()
	}
}

// authenticate resolves the bearer token to a stored user. Tokens are
// stateless HS256 JWTs; expiry is the only invalidation mechanism, nothing
// token-related survives in process memory across restarts.
func (a *App) authenticate(c *gin.Context) (AuthUser, error) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return AuthUser{}, errors.New("Bearer token required")
	}
	tokenString := strings.TrimSpace(authHeader[len("Bearer "):])
	if tokenString == "" {
		return AuthUser{}, errors.New("Bearer token required")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return AuthUser{}, errors.New("Invalid or expired token. Please log in again.")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthUser{}, errors.New("Invalid token payload")
	}
	if a.cfg.JWTIssuer != "" {
		issuer, _ := claims["iss"].(string)
		if issuer != a.cfg.JWTIssuer {
			return AuthUser{}, errors.New("Invalid token issuer")
		}
	}
	sub, _ := claims["sub"].(string)
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return AuthUser{}, errors.New("Token subject missing")
	}

	user, err := a.store.GetUser(c.Request.Context(), sub)
	if errors.Is(err, storage.ErrUserNotFound) {
		return AuthUser{}, errors.New("User not found")
	}
	if err != nil {
		return AuthUser{}, err
	}
	return AuthUser{ID: user.ID, Username: user.Username}, nil
}

func (a *App) issueToken(userID string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(a.cfg.TokenTTLHours) * time.Hour).Unix(),
	}
	if a.cfg.JWTIssuer != "" {
		claims["iss"] = a.cfg.JWTIssuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.cfg.JWTSecret))
}

func authUserFromContext(c *gin.Context) (AuthUser, bool) {
	raw, ok := c.Get("authUser")
	if !ok {
		return AuthUser{}, false
	}
	user, ok := raw.(AuthUser)
	return user, ok
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"error": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
