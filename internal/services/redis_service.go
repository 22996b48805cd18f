package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wconnect-service/internal/database"
)

// RedisService provides presence tracking and rate limiting on top of the
// shared Redis connection.
type RedisService struct {
	client *database.RedisClient
}

func NewRedisService(client *database.RedisClient) *RedisService {
	return &RedisService{client: client}
}

// =============================================================================
// Presence
// =============================================================================

func (r *RedisService) SetUserOnline(ctx context.Context, userID uint) error {
	pipe := r.client.GetClient().Pipeline()

	pipe.SAdd(ctx, "online_users", userID)
	pipe.HSet(ctx, fmt.Sprintf("user:%d:status", userID), map[string]interface{}{
		"status":    "online",
		"last_seen": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%d:status", userID), 5*time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("failed to set user online", "userID", userID, "error", err)
		return err
	}
	return nil
}

func (r *RedisService) SetUserOffline(ctx context.Context, userID uint) error {
	pipe := r.client.GetClient().Pipeline()

	pipe.SRem(ctx, "online_users", userID)
	pipe.HSet(ctx, fmt.Sprintf("user:%d:status", userID), map[string]interface{}{
		"status":    "offline",
		"last_seen": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%d:status", userID), 24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("failed to set user offline", "userID", userID, "error", err)
		return err
	}
	return nil
}

func (r *RedisService) IsUserOnline(ctx context.Context, userID uint) (bool, error) {
	return r.client.GetClient().SIsMember(ctx, "online_users", userID).Result()
}

func (r *RedisService) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return r.client.GetClient().SMembers(ctx, "online_users").Result()
}

// =============================================================================
// Rate limiting
// =============================================================================

// CheckRateLimit implements a fixed-window counter keyed by the caller.
func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	pipe := r.client.GetClient().Pipeline()

	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}
