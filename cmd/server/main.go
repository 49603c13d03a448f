// Package main 是服务端的入口点
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"kindspeak-server/internal/cache"
	"kindspeak-server/internal/config"
	"kindspeak-server/internal/emotion"
	"kindspeak-server/internal/handler"
	"kindspeak-server/internal/inference"
	"kindspeak-server/internal/llm"
	"kindspeak-server/internal/logger"
	"kindspeak-server/internal/repository"
	"kindspeak-server/internal/router"
	"kindspeak-server/internal/service"
	"kindspeak-server/pkg/jwt"
)

func main() {
	// .env 不存在时只使用环境变量和配置文件
	envErr := godotenv.Load()

	cfg, err := config.Load("./configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLog.Sync()
	if envErr != nil {
		appLog.Debug("no .env file loaded", "error", envErr)
	}

	db, err := repository.OpenDatabase(cfg.Database, cfg.Server.Mode)
	if err != nil {
		appLog.Fatal("failed to init database", "error", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		appLog.Fatal("failed to migrate database", "error", err)
	}
	appLog.Info("database ready", "driver", cfg.Database.Driver)

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		appLog.Fatal("failed to init redis", "error", err)
	}
	if !redisCache.Enabled() {
		appLog.Warn("redis disabled, token blacklist and rate limiting are off")
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpire, cfg.JWT.RefreshExpire)

	ctx := context.Background()
	textClassifier, imageClassifier, closeVision := initEmotion(ctx, cfg, appLog)
	defer closeVision()

	generator, err := llm.New(ctx, cfg.AI)
	if err != nil {
		appLog.Warn("generation model unavailable, using fallback replies", "error", err)
	} else if generator == nil {
		appLog.Info("no generation model configured, using fallback replies")
	}

	// Repository
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	meditationRepo := repository.NewMeditationRepository(db)

	// Service
	authService := service.NewAuthService(userRepo, redisCache, jwtService, appLog)
	userService := service.NewUserService(userRepo, sessionRepo, messageRepo, meditationRepo)
	sessionService := service.NewSessionService(sessionRepo, messageRepo, appLog)
	chatService := service.NewChatService(
		sessionService,
		textClassifier,
		emotion.FusionEngine{Window: cfg.Emotion.RecencyWindow},
		service.NewResponseGenerator(generator, cfg.AI.Timeout, appLog),
		appLog,
	)
	meditationService := service.NewMeditationService(meditationRepo, appLog)
	emotionService := service.NewEmotionService(imageClassifier, redisCache, cfg.Emotion.AnalyzePerMinute, appLog)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(router.Options{
		CORSOrigins: cfg.Server.CORS,
		JWT:         jwtService,
		Cache:       redisCache,
		Log:         appLog,
	}, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		User:       handler.NewUserHandler(userService),
		Chat:       handler.NewChatHandler(chatService),
		Session:    handler.NewSessionHandler(sessionService),
		Emotion:    handler.NewEmotionHandler(emotionService),
		Meditation: handler.NewMeditationHandler(meditationService),
		Health:     handler.NewHealthHandler(db, redisCache),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		// 模型生成可能较慢
		WriteTimeout: cfg.AI.Timeout + cfg.Emotion.RequestTimeout + 10*time.Second,
	}

	go func() {
		appLog.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("server failed", "error", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server forced to shutdown", "error", err)
	}
	if err := redisCache.Close(); err != nil {
		appLog.Warn("failed to close redis", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	appLog.Info("server exited")
}

// initEmotion 创建文本与图像情绪分类器
// 任一模型未配置时对应分类器返回 neutral，不影响启动
func initEmotion(ctx context.Context, cfg *config.Config, appLog *logger.Logger) (*emotion.TextClassifier, *emotion.ImageClassifier, func()) {
	ec := cfg.Emotion

	var textScorer emotion.TextScorer
	if ec.TextEndpoint != "" {
		textScorer = inference.NewTextScorer(ec.TextEndpoint, ec.HFAPIToken, ec.RequestTimeout)
	} else {
		appLog.Warn("text emotion model not configured")
	}

	var imageScorer emotion.ImageScorer
	if ec.ImageEndpoint != "" {
		imageScorer = inference.NewImageScorer(ec.ImageEndpoint, ec.HFAPIToken, ec.RequestTimeout)
	} else {
		appLog.Warn("image emotion model not configured")
	}

	closeFn := func() {}
	var detector emotion.FaceDetector
	if cfg.Vision.Enabled {
		d, err := inference.NewVisionFaceDetector(ctx, cfg.Vision.CredentialsFile, appLog)
		if err != nil {
			// 没有人脸检测时使用整张图像
			appLog.Warn("face detector unavailable", "error", err)
		} else {
			detector = d
			closeFn = func() {
				if err := d.Close(); err != nil {
					appLog.Warn("failed to close face detector", "error", err)
				}
			}
		}
	}

	text := emotion.NewTextClassifier(textScorer, ec.TextMinScore, appLog)
	locator := emotion.NewFaceLocator(detector, ec.FacePadding, appLog)
	image := emotion.NewImageClassifier(imageScorer, locator, appLog)
	return text, image, closeFn
}
