package database

import (
	"fmt"
	"time"

	"wconnect-service/internal/config"
	"wconnect-service/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewPostgresConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		AllowGlobalUpdate:                        false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate applies the schema. The unique index on conversations.pair_key is
// declared on the model; it is what closes the duplicate-conversation race.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return addIndexes(db)
}

func addIndexes(db *gorm.DB) error {
	// Composite indexes for the hot query paths.
	indexes := []struct {
		name    string
		table   string
		columns string
	}{
		{"idx_messages_conversation_created", "messages", "conversation_id, created_at"},
		{"idx_messages_conversation_status", "messages", "conversation_id, status"},
	}

	for _, idx := range indexes {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
