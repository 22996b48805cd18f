package routes

import (
	"time"

	"wconnect-service/internal/api/handlers"
	"wconnect-service/internal/api/middleware"
	"wconnect-service/internal/repositories/postgres"
	"wconnect-service/internal/services"
	"wconnect-service/internal/websocket"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Router struct {
	engine              *gin.Engine
	wsHandler           *handlers.WSHandler
	conversationHandler *handlers.ConversationHandler
	messageHandler      *handlers.MessageHandler
	userHandler         *handlers.UserHandler
	rateLimitMW         *middleware.RateLimitMiddleware
	authMW              *middleware.AuthMiddleware
}

func NewRouter(
	hub *websocket.Hub,
	redisService *services.RedisService,
	db *gorm.DB,
	producer services.EventProducer,
	jwtSecret string,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	userRepo := postgres.NewUserRepository(db)
	conversationRepo := postgres.NewConversationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	conversationService := services.NewConversationService(conversationRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, conversationRepo, userRepo, hub, producer)
	userService := services.NewUserService(userRepo)

	return &Router{
		engine:              engine,
		wsHandler:           handlers.NewWSHandler(hub),
		conversationHandler: handlers.NewConversationHandler(conversationService, messageService),
		messageHandler:      handlers.NewMessageHandler(messageService),
		userHandler:         handlers.NewUserHandler(userService, redisService),
		rateLimitMW:         middleware.NewRateLimitMiddleware(redisService),
		authMW:              middleware.NewAuthMiddleware(jwtSecret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	api.GET("/ws",
		r.authMW.RequireAuthQuery(),
		r.rateLimitMW.RateLimit(5, time.Minute), // 5 connections per minute
		r.wsHandler.HandleWebSocket,
	)

	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		users := auth.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("", r.userHandler.List)
			users.GET("/profile", r.userHandler.GetProfile)
			users.PUT("/profile", r.userHandler.UpdateProfile)
			users.GET("/search", r.userHandler.Search)
			users.GET("/online", r.userHandler.Online)
			users.POST("/contacts/:id", r.userHandler.AddContact)
			users.DELETE("/contacts/:id", r.userHandler.RemoveContact)
			users.POST("/block/:id", r.userHandler.Block)
		}

		conversations := auth.Group("/conversations")
		conversations.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			conversations.GET("", r.conversationHandler.List)
			conversations.POST("/direct", r.conversationHandler.GetOrCreateDirect)
			conversations.GET("/global", r.conversationHandler.GetGlobal)
			conversations.DELETE("/:id/messages", r.conversationHandler.Clear)
		}

		messages := auth.Group("/messages")
		messages.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			messages.POST("", r.messageHandler.Send)
			messages.GET("/conversation/:id", r.messageHandler.History)
			messages.POST("/conversation/:id/read", r.messageHandler.MarkRead)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
