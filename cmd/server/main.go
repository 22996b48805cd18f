package main

// @title           WConnect Chat Service API
// @version         1.0
// @description     Message delivery and read-receipt synchronization service
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wconnect-service/internal/api/routes"
	"wconnect-service/internal/config"
	"wconnect-service/internal/database"
	"wconnect-service/internal/services"
	"wconnect-service/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting wconnect server")

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to migrate schema", "error", err)
		os.Exit(1)
	}

	producer := newEventProducer(cfg)
	defer producer.Close()

	redisService := services.NewRedisService(redisClient)

	hub := websocket.NewHub(redisClient.GetClient(), redisService)
	go hub.Run()

	router := routes.NewRouter(
		hub,
		redisService,
		db,
		producer,
		cfg.JWT.Secret,
	)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}

func newEventProducer(cfg *config.Config) services.EventProducer {
	if cfg.Kafka.Brokers == "" {
		slog.Info("Kafka disabled, message events will not be produced")
		return services.NewNopEventProducer()
	}

	brokers := strings.Split(cfg.Kafka.Brokers, ",")
	producer, err := services.NewKafkaEventProducer(brokers, cfg.Kafka.Topic)
	if err != nil {
		slog.Error("Failed to connect to Kafka, continuing without events", "error", err)
		return services.NewNopEventProducer()
	}
	slog.Info("Kafka event producer ready", "brokers", brokers, "topic", cfg.Kafka.Topic)
	return producer
}
