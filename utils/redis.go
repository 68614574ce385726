package utils

import (
	"context"
	"log"
	"time"

	"github.com/arvindh25/college-event-backend/config"
	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedis connects the shared Redis client. Redis backs the rate
// limiter and the dashboard stats cache; both degrade gracefully when it
// is unavailable, so a failure here is reported but not fatal.
func InitRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}

	redisClient = client
	log.Println("✅ Redis connected:", cfg.RedisAddr)
	return nil
}

// GetRedis returns the shared client, or nil when Redis is not connected.
func GetRedis() *redis.Client {
	return redisClient
}
