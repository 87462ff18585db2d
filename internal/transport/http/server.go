package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "leadchat/internal/app"
	"leadchat/internal/bootstrap"
	"leadchat/internal/cache"
	rabbitmqClient "leadchat/internal/platform/rabbitmq"
	"leadchat/internal/repository"
	"leadchat/internal/transport/http/handler"
	"leadchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	conversationRepo := repository.NewConversationRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)
	prospectRepo := repository.NewProspectRepository(app.MySQL)
	fileRepo := repository.NewFileRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	intentEvents := rabbitmqClient.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.IntentQueue)
	leadEvents := rabbitmqClient.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.LeadEventQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	chatService := appsvc.NewChatService(
		conversationRepo,
		messageRepo,
		fileRepo,
		app.AIClient,
		intentEvents,
		historyCache,
		app.Store,
		app.Config.LLM.MaxContextMessage,
		app.Log,
	)
	prospectService := appsvc.NewProspectService(prospectRepo, leadEvents, app.Log)
	fileService := appsvc.NewFileService(app.Store, fileRepo, app.Log)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	prospectHandler := handler.NewProspectHandler(prospectService)
	fileHandler := handler.NewFileHandler(fileService)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	conversations := api.Group("/conversations")
	conversations.Use(middleware.OptionalAuthJWT(app.Config.Auth.JWTSecret))
	conversations.GET("", chatHandler.ListConversations)
	conversations.POST("", chatHandler.CreateConversation)
	conversations.GET("/:id", chatHandler.GetConversation)
	conversations.PATCH("/:id", chatHandler.UpdateConversation)
	conversations.DELETE("/:id", chatHandler.DeleteConversation)
	conversations.GET("/:id/messages", chatHandler.ListMessages)
	conversations.POST("/:id/messages", chatHandler.SendMessage)

	api.POST("/upload", fileHandler.Upload)
	api.GET("/files/:filename", fileHandler.Serve)

	api.POST("/prospects", prospectHandler.Create)
	api.GET("/prospects", prospectHandler.List)
	api.GET("/prospects/export", prospectHandler.Export)

	return router
}
