package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sharkfund/sharkfund-backend/config"
	"github.com/sharkfund/sharkfund-backend/pkg/logger"
)

var client *redis.Client

// Init initializes the Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// OTPRateLimiter throttles OTP requests per email using a fixed window
// counter in Redis.
type OTPRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewOTPRateLimiter(client *redis.Client, limit int, window time.Duration) *OTPRateLimiter {
	return &OTPRateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow reports whether another OTP request is permitted for the key.
// Redis failures fail open with a warning; throttling is a guard, not a
// correctness requirement.
func (l *OTPRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("otp_requests:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		logger.Warn("Rate limiter unavailable, allowing request", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return true, nil
	}

	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			logger.Warn("Failed to set rate limit window", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	if count > int64(l.limit) {
		logger.Warn("OTP request rate limit exceeded", map[string]interface{}{
			"key":   key,
			"count": count,
			"limit": l.limit,
		})
		return false, nil
	}

	return true, nil
}
