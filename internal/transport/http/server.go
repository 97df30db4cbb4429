package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "learnhub/internal/app"
	"learnhub/internal/bootstrap"
	"learnhub/internal/cache"
	"learnhub/internal/repository"
	"learnhub/internal/transport/http/handler"
	"learnhub/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.Static("/uploads", app.Config.Uploads.Root)

	userRepo := repository.NewUserRepository(app.MySQL)
	videoRepo := repository.NewVideoRepository(app.MySQL)
	documentRepo := repository.NewDocumentRepository(app.MySQL)
	watchRepo := repository.NewWatchHistoryRepository(app.MySQL)
	chatRepo := repository.NewChatHistoryRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
	)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	videoService := appsvc.NewVideoService(
		videoRepo,
		watchRepo,
		app.MediaTools,
		app.Transcriber,
		app.IndexPublisher,
		app.Config.Uploads.Root,
		app.Log,
	)
	documentService := appsvc.NewDocumentService(
		documentRepo,
		app.Extractor,
		app.IndexPublisher,
		app.Config.Uploads.Root,
		app.Log,
	)
	studyService := appsvc.NewStudyService(
		app.Embedder,
		app.ContextStore,
		app.Responder,
		chatRepo,
		historyCache,
		videoRepo,
		watchRepo,
		documentRepo,
		app.Log,
	)

	authHandler := handler.NewAuthHandler(authService)
	videoHandler := handler.NewVideoHandler(videoService)
	documentHandler := handler.NewDocumentHandler(documentService)
	studyHandler := handler.NewStudyHandler(studyService)
	transcribeHandler := handler.NewTranscribeHandler(app.JobRunner)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	transcribeGroup := v1.Group("/transcribe")
	transcribeGroup.POST("", transcribeHandler.Submit)
	transcribeGroup.GET("/:job_id", transcribeHandler.Status)
	transcribeGroup.GET("/:job_id/result", transcribeHandler.Result)

	videoGroup := v1.Group("/videos")
	videoGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	videoGroup.POST("/upload", videoHandler.Upload)
	videoGroup.GET("", videoHandler.List)
	videoGroup.GET("/my/uploaded", videoHandler.ListMine)
	videoGroup.GET("/my/history", videoHandler.WatchHistory)
	videoGroup.GET("/:id", videoHandler.Get)
	videoGroup.POST("/:id/watch", videoHandler.RecordWatch)
	videoGroup.DELETE("/:id", videoHandler.Delete)

	documentGroup := v1.Group("/documents")
	documentGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	documentGroup.POST("/upload", documentHandler.Upload)
	documentGroup.GET("", documentHandler.List)
	documentGroup.GET("/:id", documentHandler.Get)
	documentGroup.DELETE("/:id", documentHandler.Delete)

	studyGroup := v1.Group("/study")
	studyGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	studyGroup.POST("/chat", studyHandler.Chat)
	studyGroup.GET("/history", studyHandler.History)
	studyGroup.GET("/context", studyHandler.Context)

	return router
}
