// Package router 组装 Gin 引擎并注册全部路由
package router

import (
	"github.com/gin-gonic/gin"

	"kindspeak-server/internal/cache"
	"kindspeak-server/internal/handler"
	"kindspeak-server/internal/logger"
	"kindspeak-server/internal/middleware"
	"kindspeak-server/pkg/jwt"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Chat       *handler.ChatHandler
	Session    *handler.SessionHandler
	Emotion    *handler.EmotionHandler
	Meditation *handler.MeditationHandler
	Health     *handler.HealthHandler
}

// Options 引擎选项
type Options struct {
	CORSOrigins []string
	JWT         *jwt.JWTService
	Cache       *cache.RedisCache // 可以为 nil
	Log         *logger.Logger
}

// New 创建 Gin 引擎
func New(opts Options, h Handlers) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RecoveryMiddleware(log))
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORSMiddleware(middleware.NewCORSConfig(opts.CORSOrigins)))

	r.GET("/health", h.Health.Health)

	auth := middleware.AuthMiddleware(opts.JWT, opts.Cache)
	v1 := r.Group("/api/v1")

	// 认证相关，登出以外无需登录
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/guest", h.Auth.Guest)
		authGroup.POST("/refresh", h.Auth.RefreshToken)
		authGroup.POST("/logout", auth, h.Auth.Logout)
	}

	users := v1.Group("/users", auth)
	{
		users.GET("/me", h.User.GetProfile)
		users.GET("/me/stats", h.User.GetStats)
	}

	chat := v1.Group("/chat", auth)
	{
		chat.POST("", h.Chat.Chat)
		chat.GET("/sessions", h.Session.ListSessions)
		chat.GET("/sessions/:id", h.Session.GetSession)
		chat.GET("/sessions/:id/messages", h.Session.GetMessages)
		chat.DELETE("/sessions/:id", h.Session.DeleteSession)
	}

	emotions := v1.Group("/emotions", auth)
	{
		emotions.POST("/analyze-image", h.Emotion.AnalyzeImage)
	}

	meditation := v1.Group("/meditation", auth)
	{
		meditation.POST("/start", h.Meditation.Start)
		meditation.POST("/complete/:id", h.Meditation.Complete)
	}

	return r
}
