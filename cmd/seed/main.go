package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"wconnect-service/internal/api/middleware"
	"wconnect-service/internal/config"
	"wconnect-service/internal/database"
	"wconnect-service/internal/models"
	"wconnect-service/internal/repositories/postgres"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting database seeding...")

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	ctx := context.Background()
	userRepo := postgres.NewUserRepository(db)
	conversationRepo := postgres.NewConversationRepository(db)

	seedUsers := []struct {
		username string
		email    string
	}{
		{"alice", "alice@wconnect.dev"},
		{"bob", "bob@wconnect.dev"},
		{"carol", "carol@wconnect.dev"},
	}

	users := make([]*models.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		password, _ := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
		user := &models.User{
			Username: su.username,
			Email:    su.email,
			Password: string(password),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			slog.Warn("User might already exist", "username", su.username, "error", err)
			continue
		}
		slog.Info("Created user", "id", user.ID, "username", su.username)
		users = append(users, user)
	}

	global := &models.Conversation{
		IsGlobal: true,
		PairKey:  models.GlobalPairKey,
	}
	if _, err := conversationRepo.GetOrCreate(ctx, global); err != nil {
		slog.Warn("Could not seed global conversation", "error", err)
	} else {
		slog.Info("Global conversation ready")
	}

	if len(users) >= 2 {
		a, b := users[0].ID, users[1].ID
		if a > b {
			a, b = b, a
		}
		direct := &models.Conversation{
			PairKey:        models.DirectPairKey(a, b),
			ParticipantAID: &a,
			ParticipantBID: &b,
		}
		if conv, err := conversationRepo.GetOrCreate(ctx, direct); err != nil {
			slog.Warn("Could not seed direct conversation", "error", err)
		} else {
			slog.Info("Direct conversation ready", "id", conv.ID)
		}
	}

	// Development tokens so seeded users can hit the API immediately.
	for _, user := range users {
		token, err := middleware.SignToken(cfg.JWT.Secret, user.ID, user.Email, cfg.JWT.ExpirationTime)
		if err != nil {
			slog.Warn("Could not sign token", "username", user.Username, "error", err)
			continue
		}
		fmt.Printf("%s: %s\n", user.Username, token)
	}

	slog.Info("Seeding completed")
}
