package main

import (
	"log"
	"log/slog"

	"wconnect-service/internal/config"
	"wconnect-service/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting database migration...")

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	slog.Info("Database migration completed successfully!")
}
